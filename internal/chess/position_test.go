package chess

import (
	"errors"
	"testing"
)

func sq(t *testing.T, s string) Square {
	t.Helper()
	v, err := ParseSquare(s)
	if err != nil {
		t.Fatalf("ParseSquare(%q): %v", s, err)
	}
	return v
}

func play(t *testing.T, pos Position, moves ...string) (Position, MoveResult) {
	t.Helper()
	var res MoveResult
	for _, m := range moves {
		next, r, err := pos.Apply(Move{From: sq(t, m[:2]), To: sq(t, m[2:4])})
		if err != nil {
			t.Fatalf("Apply(%s): %v", m, err)
		}
		pos, res = next, r
	}
	return pos, res
}

func TestStartPosition(t *testing.T) {
	pos := NewEngine().NewPosition()
	if pos.SideToMove() != White {
		t.Fatalf("side to move = %v, want White", pos.SideToMove())
	}
	if pc, ok := pos.PieceAt(sq(t, "e1")); !ok || pc != (Piece{Kind: King, Color: White}) {
		t.Fatalf("e1 = %+v ok=%v", pc, ok)
	}
	if _, ok := pos.PieceAt(sq(t, "e4")); ok {
		t.Fatalf("e4 should be empty")
	}
	if n := len(pos.LegalMoves()); n != 20 {
		t.Fatalf("legal moves = %d, want 20", n)
	}
	if pos.IsCheck() || pos.IsCheckmate() || pos.IsDraw() {
		t.Fatalf("start position should not be terminal or in check")
	}
	if Material(pos) != 0 {
		t.Fatalf("material = %d, want 0", Material(pos))
	}
}

func TestLegalTargetsPawn(t *testing.T) {
	pos := NewEngine().NewPosition()
	got := map[Square]bool{}
	for _, s := range pos.LegalTargets(sq(t, "e2")) {
		got[s] = true
	}
	if len(got) != 2 || !got[sq(t, "e3")] || !got[sq(t, "e4")] {
		t.Fatalf("targets from e2 = %v", got)
	}
	if ts := pos.LegalTargets(sq(t, "e7")); len(ts) != 0 {
		t.Fatalf("black piece should have no targets on white's turn, got %v", ts)
	}
	if ts := pos.LegalTargets(NoSquare); ts != nil {
		t.Fatalf("invalid square targets = %v", ts)
	}
}

func TestApplyLeavesReceiverUntouched(t *testing.T) {
	pos := NewEngine().NewPosition()
	before := pos.Serialize()
	next, res := play(t, pos, "e2e4")
	if pos.Serialize() != before {
		t.Fatalf("receiver changed: %s", pos.Serialize())
	}
	if next.SideToMove() != Black || res.Mover != White || res.Capture() {
		t.Fatalf("unexpected result: side=%v res=%+v", next.SideToMove(), res)
	}
	if _, ok := next.PieceAt(sq(t, "e4")); !ok {
		t.Fatalf("e4 should hold the pawn")
	}
}

func TestApplyIllegal(t *testing.T) {
	pos := NewEngine().NewPosition()
	_, _, err := pos.Apply(Move{From: sq(t, "e2"), To: sq(t, "e5")})
	if !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("err = %v, want ErrIllegalMove", err)
	}
	_, _, err = pos.Apply(Move{From: sq(t, "e7"), To: sq(t, "e5")})
	if !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("moving out of turn: err = %v", err)
	}
}

func TestCaptureReported(t *testing.T) {
	pos := NewEngine().NewPosition()
	_, res := play(t, pos, "e2e4", "d7d5", "e4d5")
	if res.Captured != Pawn || res.Mover != White {
		t.Fatalf("capture result = %+v", res)
	}
}

func TestEnPassantCapture(t *testing.T) {
	pos := NewEngine().NewPosition()
	next, res := play(t, pos, "e2e4", "a7a6", "e4e5", "d7d5", "e5d6")
	if res.Captured != Pawn {
		t.Fatalf("en passant should capture a pawn, got %+v", res)
	}
	if _, ok := next.PieceAt(sq(t, "d5")); ok {
		t.Fatalf("captured pawn should be removed from d5")
	}
}

func TestFoolsMate(t *testing.T) {
	pos := NewEngine().NewPosition()
	next, res := play(t, pos, "f2f3", "e7e5", "g2g4", "d8h4")
	if !res.Check || !next.IsCheck() {
		t.Fatalf("Qh4 should give check")
	}
	if !next.IsCheckmate() {
		t.Fatalf("expected checkmate")
	}
	if next.IsDraw() {
		t.Fatalf("checkmate is not a draw")
	}
	if len(next.LegalMoves()) != 0 {
		t.Fatalf("mated side should have no legal moves")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	eng := NewEngine()
	pos, _ := play(t, eng.NewPosition(), "e2e4", "c7c5", "g1f3")
	again, err := eng.Deserialize(pos.Serialize())
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if again.Serialize() != pos.Serialize() {
		t.Fatalf("round trip: %s != %s", again.Serialize(), pos.Serialize())
	}
	if _, err := eng.Deserialize(""); !errors.Is(err, ErrInvalidFEN) {
		t.Fatalf("empty FEN err = %v", err)
	}
}

func TestCheckOnDeserializedPosition(t *testing.T) {
	pos, err := NewEngine().Deserialize("rnbqkbnr/ppp2ppp/3p4/1B2p3/4P3/8/PPPP1PPP/RNBQK1NR b KQkq - 1 3")
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if !pos.IsCheck() {
		t.Fatalf("bishop on b5 should check the black king")
	}
	if pos.IsCheckmate() {
		t.Fatalf("not mate")
	}
}

func TestPromotionDefaultsToQueen(t *testing.T) {
	pos, err := NewEngine().Deserialize("8/P7/8/8/8/8/8/k6K w - - 0 1")
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	next, res, err := pos.Apply(Move{From: sq(t, "a7"), To: sq(t, "a8")})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.Move.Promotion != Queen {
		t.Fatalf("promotion = %v, want queen", res.Move.Promotion)
	}
	if pc, _ := next.PieceAt(sq(t, "a8")); pc.Kind != Queen || pc.Color != White {
		t.Fatalf("a8 = %+v", pc)
	}
	if !res.Check {
		t.Fatalf("queen on a8 checks the king on a1")
	}
	if Material(next) != 9 {
		t.Fatalf("material = %d, want 9", Material(next))
	}
}

func TestSquareParsing(t *testing.T) {
	if s := sq(t, "a1"); s != 0 {
		t.Fatalf("a1 = %d", s)
	}
	if s := sq(t, "H8"); s != 63 || s.String() != "h8" {
		t.Fatalf("h8 = %d %s", s, s)
	}
	for _, bad := range []string{"", "i1", "a9", "e44"} {
		if _, err := ParseSquare(bad); err == nil {
			t.Fatalf("ParseSquare(%q) should fail", bad)
		}
	}
}

func TestThreefoldRepetitionIsDraw(t *testing.T) {
	pos := NewEngine().NewPosition()
	pos, _ = play(t, pos, "g1f3", "g8f6", "f3g1", "f6g8")
	if pos.IsDraw() {
		t.Fatalf("two occurrences should not be a draw")
	}
	pos, _ = play(t, pos, "g1f3", "g8f6", "f3g1", "f6g8")
	if !pos.IsDraw() {
		t.Fatalf("third occurrence of the start position should be a draw")
	}
	if pos.IsCheckmate() {
		t.Fatalf("repetition draw reported as checkmate")
	}
	if n := len(pos.LegalMoves()); n != 0 {
		t.Fatalf("legal moves after draw = %d, want 0", n)
	}
	if got := pos.LegalTargets(sq(t, "e2")); len(got) != 0 {
		t.Fatalf("targets after draw = %v", got)
	}
	if _, _, err := pos.Apply(Move{From: sq(t, "e2"), To: sq(t, "e4")}); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("Apply after draw err = %v, want ErrIllegalMove", err)
	}
}

func TestFiftyMoveRuleIsDraw(t *testing.T) {
	eng := NewEngine()
	pos, err := eng.Deserialize("8/8/4k3/8/8/4K3/4R3/8 w - - 100 80")
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if !pos.IsDraw() || len(pos.LegalMoves()) != 0 {
		t.Fatalf("halfmove clock 100: draw=%v moves=%d", pos.IsDraw(), len(pos.LegalMoves()))
	}

	pos, err = eng.Deserialize("8/8/4k3/8/8/4K3/4R3/8 w - - 99 80")
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if pos.IsDraw() {
		t.Fatalf("halfmove clock 99 should not be a draw")
	}
	pos, _ = play(t, pos, "e2a2")
	if !pos.IsDraw() {
		t.Fatalf("quiet move reaching halfmove clock 100 should be a draw")
	}
}

func TestMoveResultCheckFromMove(t *testing.T) {
	pos := NewEngine().NewPosition()
	_, res := play(t, pos, "e2e4", "d7d5")
	if res.Check {
		t.Fatalf("d7d5 should not give check")
	}
	_, res = play(t, pos, "e2e4", "d7d5", "f1b5")
	if !res.Check {
		t.Fatalf("Bb5+ should report check")
	}
}
