package main

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/park285/cheese-match/internal/adapter/matchpresenter"
	"github.com/park285/cheese-match/internal/chess"
	"github.com/park285/cheese-match/internal/match"
	"github.com/park285/cheese-match/internal/msgcat"
)

var errQuit = errors.New("quit")

// runREPL reads one command per line until EOF or quit.
func runREPL(in io.Reader, ctrl *match.Controller, p *matchpresenter.Presenter, cat *msgcat.Catalog) error {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		err := execLine(sc.Text(), ctrl, p, cat)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			_ = p.Line(err.Error())
		}
	}
	return sc.Err()
}

func execLine(line string, ctrl *match.Controller, p *matchpresenter.Presenter, cat *msgcat.Catalog) error {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return nil
	}
	switch fields[0] {
	case "quit", "exit", "q":
		return errQuit
	case "help", "?":
		return p.Line(cat.Text("cli.help", nil, "commands: <square> | mode pvp|bot | reset [budget] | show | quit"))
	case "show":
		return p.Line(matchpresenter.NewFormatter(cat).Full(ctrl.View()))
	case "mode":
		if len(fields) < 2 {
			return errors.New("usage: mode pvp|bot")
		}
		mode, err := match.ParseMode(fields[1])
		if err != nil {
			return err
		}
		return ctrl.SetMode(mode)
	case "reset", "again":
		if len(fields) < 2 {
			return ctrl.Reset(0)
		}
		budget, err := match.ParseBudget(fields[1])
		if err != nil {
			return errors.New(cat.Text("cli.bad_budget",
				map[string]any{"Input": fields[1], "Presets": strings.Join(match.PresetLabels(), ", ")},
				err.Error()))
		}
		return ctrl.Reset(budget)
	}
	sq, err := chess.ParseSquare(fields[0])
	if err != nil {
		return errors.New(cat.Text("cli.unknown", map[string]any{"Input": line}, "unknown command: "+line))
	}
	return ctrl.SelectOrMove(sq)
}
