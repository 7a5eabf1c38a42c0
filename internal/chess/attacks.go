package chess

var (
	knightJumps = [][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps   = [][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	rookRays    = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopRays  = [][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// InCheck reports whether side's king is attacked on p.
func InCheck(p Position, side Color) bool {
	king := NoSquare
	for sq := Square(0); sq < 64; sq++ {
		if pc, ok := p.PieceAt(sq); ok && pc.Kind == King && pc.Color == side {
			king = sq
			break
		}
	}
	if king == NoSquare {
		return false
	}
	return Attacked(p, king, side.Other())
}

// Attacked reports whether any piece of by attacks sq.
func Attacked(p Position, sq Square, by Color) bool {
	f, r := sq.File(), sq.Rank()
	is := func(file, rank int, kinds ...PieceKind) bool {
		pc, ok := p.PieceAt(NewSquare(file, rank))
		if !ok || pc.Color != by {
			return false
		}
		for _, k := range kinds {
			if pc.Kind == k {
				return true
			}
		}
		return false
	}

	dir := -1
	if by == Black {
		dir = 1
	}
	if is(f-1, r+dir, Pawn) || is(f+1, r+dir, Pawn) {
		return true
	}
	for _, d := range knightJumps {
		if is(f+d[0], r+d[1], Knight) {
			return true
		}
	}
	for _, d := range kingSteps {
		if is(f+d[0], r+d[1], King) {
			return true
		}
	}
	slide := func(rays [][2]int, kinds ...PieceKind) bool {
		for _, d := range rays {
			for file, rank := f+d[0], r+d[1]; NewSquare(file, rank) != NoSquare; file, rank = file+d[0], rank+d[1] {
				if _, ok := p.PieceAt(NewSquare(file, rank)); ok {
					if is(file, rank, kinds...) {
						return true
					}
					break
				}
			}
		}
		return false
	}
	return slide(rookRays, Rook, Queen) || slide(bishopRays, Bishop, Queen)
}
