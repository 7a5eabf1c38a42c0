package matchpresenter

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/park285/cheese-match/internal/chess"
	"github.com/park285/cheese-match/internal/match"
	"github.com/park285/cheese-match/internal/msgcat"
	"github.com/park285/cheese-match/pkg/matchdto"
)

type idleScheduler struct{}

func (idleScheduler) Every(time.Duration, func()) match.Cancel { return func() {} }
func (idleScheduler) After(time.Duration, func()) match.Cancel { return func() {} }

func newView(t *testing.T, clicks ...string) matchdto.View {
	t.Helper()
	cat, err := msgcat.New("")
	if err != nil {
		t.Fatalf("msgcat.New: %v", err)
	}
	c, err := match.New(chess.NewEngine(), match.ModePvP, time.Minute,
		match.WithScheduler(idleScheduler{}), match.WithCatalog(cat))
	if err != nil {
		t.Fatalf("match.New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	for _, s := range clicks {
		sq, _ := chess.ParseSquare(s)
		if err := c.SelectOrMove(sq); err != nil {
			t.Fatalf("SelectOrMove: %v", err)
		}
	}
	return c.View()
}

func TestBoardLayout(t *testing.T) {
	f := NewFormatter(nil)
	lines := strings.Split(strings.TrimRight(f.Board(newView(t)), "\n"), "\n")
	if len(lines) != 9 {
		t.Fatalf("lines = %d", len(lines))
	}
	if lines[0] != "8  r  n  b  q  k  b  n  r " {
		t.Fatalf("rank 8 = %q", lines[0])
	}
	if lines[7] != "1  R  N  B  Q  K  B  N  R " {
		t.Fatalf("rank 1 = %q", lines[7])
	}
}

func TestBoardMarksSelection(t *testing.T) {
	f := NewFormatter(nil)
	board := f.Board(newView(t, "e2"))
	if !strings.Contains(board, "[P]") {
		t.Fatalf("selected pawn not bracketed:\n%s", board)
	}
	if strings.Count(board, targetMark) != 2 {
		t.Fatalf("expected two targets:\n%s", board)
	}
}

func TestStatusAndClocks(t *testing.T) {
	cat, _ := msgcat.New("")
	f := NewFormatter(cat)
	v := newView(t, "e2", "e4")
	if got := f.Status(v); got != "2 Players | 1:00 | Black to move" {
		t.Fatalf("status = %q", got)
	}
	if clocks := f.Clocks(v); !strings.Contains(clocks, "Black 01:00 *") {
		t.Fatalf("clocks = %q", clocks)
	}

	v.Ended = true
	v.Outcome = &matchdto.OutcomeView{Kind: "timeout", Winner: "White", Title: "Time", Subtitle: "White wins"}
	if got := f.Status(v); got != "Time - White wins | Play again" {
		t.Fatalf("ended status = %q", got)
	}
}

func TestCapturedLead(t *testing.T) {
	f := NewFormatter(nil)
	v := matchdto.View{Captured: matchdto.CapturedView{ByWhite: []string{"q"}, WhiteMaterial: 9}}
	got := f.Captured(v)
	if !strings.Contains(got, "White captured: q +9") || !strings.Contains(got, "Black captured: -") {
		t.Fatalf("captured = %q", got)
	}
}

func TestPresenterSkipsRepeats(t *testing.T) {
	var buf bytes.Buffer
	p := NewPresenter(&buf, nil)
	v := newView(t)
	if err := p.Show(v); err != nil {
		t.Fatalf("Show: %v", err)
	}
	n := buf.Len()
	_ = p.Show(v)
	if buf.Len() != n {
		t.Fatalf("identical view printed twice")
	}
	_ = p.Line("hello")
	if !strings.HasSuffix(buf.String(), "hello\n") {
		t.Fatalf("line not written")
	}
}
