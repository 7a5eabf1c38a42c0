package matchdto

// SquareView is one board square in display order (rank 8 to 1, file a to h).
type SquareView struct {
	Square   string `json:"square"`
	Piece    string `json:"piece,omitempty"` // FEN letter, uppercase for white
	Light    bool   `json:"light"`
	Selected bool   `json:"selected,omitempty"`
	Target   bool   `json:"target,omitempty"`
}

type ClockView struct {
	White       string `json:"white"`
	Black       string `json:"black"`
	WhiteMillis int64  `json:"whiteMillis"`
	BlackMillis int64  `json:"blackMillis"`
	Active      string `json:"active,omitempty"`
}

// CapturedView lists piece kinds taken by each side and their material sum.
type CapturedView struct {
	ByWhite       []string `json:"byWhite"`
	ByBlack       []string `json:"byBlack"`
	WhiteMaterial int      `json:"whiteMaterial"`
	BlackMaterial int      `json:"blackMaterial"`
}

// Lead returns the capturer ahead on material and by how much.
func (c CapturedView) Lead() (side string, n int) {
	switch d := c.WhiteMaterial - c.BlackMaterial; {
	case d > 0:
		return "White", d
	case d < 0:
		return "Black", -d
	default:
		return "", 0
	}
}

type OutcomeView struct {
	Kind     string `json:"kind"` // checkmate | draw | timeout
	Winner   string `json:"winner,omitempty"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

type View struct {
	MatchID     string       `json:"matchId"`
	Mode        string       `json:"mode"`
	Budget      string       `json:"budget"`
	SideToMove  string       `json:"sideToMove"`
	FEN         string       `json:"fen"`
	Squares     []SquareView `json:"squares"`
	Selected    string       `json:"selected,omitempty"`
	Targets     []string     `json:"targets,omitempty"`
	Clock       ClockView    `json:"clock"`
	Captured    CapturedView `json:"captured"`
	Check       bool         `json:"check"`
	BotThinking bool         `json:"botThinking"`
	Ended       bool         `json:"ended"`
	Outcome     *OutcomeView `json:"outcome,omitempty"`
}
