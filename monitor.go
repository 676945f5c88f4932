package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/retroenv/retrogolib/log"
	"github.com/rivo/tview"

	"github.com/nf/c8/chip8"
	"github.com/nf/c8/vip"
)

// controller is the part of a vip.Runner driven by monitor commands.
type controller interface {
	Pause()
	Resume()
	SetSpeed(cycles int) error
}

// monitor is the dev mode terminal UI: a log pane, the machine state and
// a command line.
type monitor struct {
	ctl    controller
	reload func()
	logger *log.Logger // writes to pane

	pane  *tview.TextView
	state *tview.TextView
	input *tview.InputField
	rows  *tview.Flex
	app   *tview.Application
}

func newMonitor(ctl controller, reload func()) *monitor {
	d := &monitor{
		ctl:    ctl,
		reload: reload,
		pane: tview.NewTextView().
			SetMaxLines(1000),
		state: tview.NewTextView().
			SetWrap(false),
		input: tview.NewInputField(),
		rows: tview.NewFlex().
			SetDirection(tview.FlexRow),
		app: tview.NewApplication(),
	}
	d.pane.SetChangedFunc(func() { d.app.Draw() })
	d.logger = newLogger(d.pane, false)
	d.state.SetBackgroundColor(tcell.ColorDarkGrey)
	d.rows.
		AddItem(d.pane, 0, 1, false).
		AddItem(d.state, 3, 0, false).
		AddItem(d.input, 1, 0, true)
	d.app.SetRoot(d.rows, true)

	d.input.SetAutocompleteFunc(func(t string) (entries []string) {
		if t == "" {
			return
		}
		for _, c := range commands {
			if strings.HasPrefix(c, t) {
				entries = append(entries, c)
			}
		}
		return
	})
	d.input.SetAutocompletedFunc(func(t string, index, src int) bool {
		if src != tview.AutocompletedNavigate {
			d.input.SetText(t)
		}
		return src == tview.AutocompletedEnter || src == tview.AutocompletedClick
	})
	d.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		cmd := d.input.GetText()
		if cmd == "" {
			return
		}
		d.input.SetText("")
		if cmd == "exit" {
			d.app.Stop()
			return
		}
		if err := d.command(cmd); err != nil {
			d.logger.Error("Command failed", err)
		}
	})
	return d
}

var commands = []string{"pause", "resume", "reset", "speed ", "exit"}

// command runs a monitor command other than exit.
func (d *monitor) command(cmd string) error {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(cmd), " ")
	switch cmd {
	case "pause":
		d.ctl.Pause()
	case "resume":
		d.ctl.Resume()
	case "reset":
		d.reload()
	case "speed":
		n, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil {
			return fmt.Errorf("speed: %q is not a number", arg)
		}
		if err := d.ctl.SetSpeed(n); err != nil {
			return err
		}
		d.logger.Info("Speed changed", log.Int("cycles", n))
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func (d *monitor) Run() error { return d.app.Run() }

func (d *monitor) StateFunc(m *chip8.Machine, k vip.StateKind) {
	state := stateMsg(m, k)
	d.app.QueueUpdateDraw(func() {
		switch k {
		case vip.ClearState, vip.RunState:
			d.state.SetTextColor(tcell.ColorBlack)
			d.state.SetBackgroundColor(tcell.ColorDarkGrey)
		case vip.PauseState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case vip.HaltState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkRed)
		}
		d.state.SetText(state)
	})
}

func stateMsg(m *chip8.Machine, k vip.StateKind) string {
	instr := "?"
	if op, ok := m.OpAt(m.PC); ok {
		instr = chip8.Decode(op).String()
	}
	kind := "       "
	switch k {
	case vip.PauseState:
		kind = "[pause]"
	case vip.HaltState:
		kind = "[HALT!]"
	}
	var v strings.Builder
	for i, r := range m.V {
		if i > 0 {
			v.WriteByte(' ')
		}
		fmt.Fprintf(&v, "%.2x", r)
	}
	return fmt.Sprintf("%.4x %-14s %s\nv: %s\ni: %.4x sp: %d dt: %.2x st: %.2x\n",
		m.PC, instr, kind, v.String(), m.I, m.SP, m.DT, m.ST)
}
