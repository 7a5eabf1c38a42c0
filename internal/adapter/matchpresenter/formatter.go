package matchpresenter

import (
	"fmt"
	"strings"

	"github.com/park285/cheese-match/internal/msgcat"
	"github.com/park285/cheese-match/pkg/matchdto"
)

const (
	emptyMark  = "."
	targetMark = "*"
)

// Formatter renders a match view as plain text for terminals.
type Formatter struct {
	catalog *msgcat.Catalog
}

// NewFormatter accepts a nil catalog; built-in English strings are used then.
func NewFormatter(cat *msgcat.Catalog) *Formatter {
	return &Formatter{catalog: cat}
}

func (f *Formatter) text(key string, data any, fallback string) string {
	if f == nil {
		return fallback
	}
	return f.catalog.Text(key, data, fallback)
}

// Board draws ranks 8 to 1. The selected origin is bracketed and legal
// targets are starred.
func (f *Formatter) Board(v matchdto.View) string {
	var sb strings.Builder
	for i, sq := range v.Squares {
		if i%8 == 0 {
			sb.WriteString(string(sq.Square[1]))
			sb.WriteString(" ")
		}
		cell := sq.Piece
		if cell == "" {
			cell = emptyMark
			if sq.Target {
				cell = targetMark
			}
		} else if sq.Target {
			cell = targetMark + cell
		}
		switch {
		case sq.Selected:
			sb.WriteString(fmt.Sprintf("[%s]", cell))
		case len(cell) == 2:
			sb.WriteString(cell + " ")
		default:
			sb.WriteString(" " + cell + " ")
		}
		if i%8 == 7 {
			sb.WriteString("\n")
		}
	}
	sb.WriteString("   a  b  c  d  e  f  g  h\n")
	return sb.String()
}

func (f *Formatter) Clocks(v matchdto.View) string {
	line := func(side, t string) string {
		data := map[string]any{"Side": side, "Time": t, "Active": v.Clock.Active == side}
		fallback := side + " " + t
		if v.Clock.Active == side {
			fallback += " *"
		}
		return f.text("clock.line", data, fallback)
	}
	return line("Black", v.Clock.Black) + "\n" + line("White", v.Clock.White) + "\n"
}

func (f *Formatter) Captured(v matchdto.View) string {
	lead, n := v.Captured.Lead()
	line := func(side string, pieces []string) string {
		shown := 0
		if lead == side {
			shown = n
		}
		list := strings.Join(pieces, " ")
		if list == "" {
			list = "-"
		}
		data := map[string]any{"Side": side, "Pieces": list, "Lead": shown}
		fallback := fmt.Sprintf("%s captured: %s", side, list)
		if shown > 0 {
			fallback += fmt.Sprintf(" +%d", shown)
		}
		return f.text("captured.line", data, fallback)
	}
	return line("White", v.Captured.ByWhite) + "\n" + line("Black", v.Captured.ByBlack) + "\n"
}

// Status is the one-line banner: overlay when ended, otherwise turn, check and
// bot activity.
func (f *Formatter) Status(v matchdto.View) string {
	if v.Ended && v.Outcome != nil {
		return fmt.Sprintf("%s - %s | %s", v.Outcome.Title, v.Outcome.Subtitle, f.text("overlay.action.again", nil, "Play again"))
	}
	parts := []string{f.text("status.mode."+v.Mode, nil, v.Mode), v.Budget}
	if v.BotThinking {
		parts = append(parts, f.text("status.thinking", nil, "Bot is thinking..."))
	} else {
		parts = append(parts, f.text("status.turn", map[string]any{"Side": v.SideToMove}, v.SideToMove+" to move"))
	}
	if v.Check {
		parts = append(parts, f.text("toast.check", nil, "CHECK"))
	}
	return strings.Join(parts, " | ")
}

// Full is everything the CLI prints after a change.
func (f *Formatter) Full(v matchdto.View) string {
	var sb strings.Builder
	sb.WriteString(f.Clocks(v))
	sb.WriteString(f.Board(v))
	sb.WriteString(f.Captured(v))
	sb.WriteString(f.Status(v))
	sb.WriteString("\n")
	return sb.String()
}
