package main

import (
	"context"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"gantry/host/mcu"
)

const jogHistory = 12

var (
	styleTitle = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleHelp  = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleLine  = tcell.StyleDefault
)

// jogView is a full-screen jog pad. Keys go to the firmware as typed and the
// console output scrolls underneath.
type jogView struct {
	screen tcell.Screen
	m      *mcu.MCU
	lines  []string
}

func jogAction(c *cli.Context, logger *zap.SugaredLogger) (err error) {
	m, err := connect(c, logger)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Combine(err, m.Close()) }()

	screen, err := tcell.NewScreen()
	if err != nil {
		return errors.Wrap(err, "open terminal")
	}
	if err := screen.Init(); err != nil {
		return errors.Wrap(err, "initialize terminal")
	}
	defer screen.Fini()

	return (&jogView{screen: screen, m: m}).run(c.Context)
}

func isJogKey(r rune) bool {
	return strings.ContainsRune("wsadqeWSADQE123", r)
}

func (v *jogView) run(ctx context.Context) error {
	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	go v.screen.ChannelEvents(events, quit)
	defer close(quit)

	v.draw()
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
					return nil
				}
				if ev.Key() == tcell.KeyRune && isJogKey(ev.Rune()) {
					if err := v.m.Key(byte(ev.Rune())); err != nil {
						return err
					}
				}
			case *tcell.EventResize:
				v.screen.Sync()
			case *tcell.EventInterrupt:
				// Posted work that must run on the drawing goroutine.
				if fn, ok := ev.Data().(func()); ok {
					fn()
				}
			}

		case line, ok := <-v.m.Lines():
			if !ok {
				return mcu.ErrClosed
			}
			v.push(line)
		}
		v.draw()
	}
}

func (v *jogView) push(line string) {
	v.lines = append(v.lines, line)
	if len(v.lines) > jogHistory {
		v.lines = v.lines[len(v.lines)-jogHistory:]
	}
}

func (v *jogView) draw() {
	v.screen.Clear()
	putString(v.screen, 0, 0, "Gantry jog pad", styleTitle)
	putString(v.screen, 0, 1, "[W/S] Y  [A/D] X  [Q/E] Z  [1-3] speed  [Esc] quit", styleHelp)
	for i, line := range v.lines {
		putString(v.screen, 0, 3+i, line, styleLine)
	}
	v.screen.Show()
}

func putString(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
