package matchpresenter

import (
	"io"
	"sync"

	"github.com/park285/cheese-match/pkg/matchdto"
)

// Presenter writes formatted views to an output stream.
type Presenter struct {
	mu        sync.Mutex
	out       io.Writer
	formatter *Formatter
	lastText  string
}

func NewPresenter(out io.Writer, f *Formatter) *Presenter {
	if f == nil {
		f = NewFormatter(nil)
	}
	return &Presenter{out: out, formatter: f}
}

// Show prints v unless it renders identically to the last printed view.
func (p *Presenter) Show(v matchdto.View) error {
	if p == nil || p.out == nil {
		return nil
	}
	text := p.formatter.Full(v)
	p.mu.Lock()
	defer p.mu.Unlock()
	if text == p.lastText {
		return nil
	}
	p.lastText = text
	_, err := io.WriteString(p.out, text)
	return err
}

// Line writes a free-form message such as a command error.
func (p *Presenter) Line(msg string) error {
	if p == nil || p.out == nil || msg == "" {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := io.WriteString(p.out, msg+"\n")
	return err
}
