package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"gantry/host/mcu"
)

const defaultFeed = 2000

// jogKeys maps "<axis><sign>" to the console's single-key jog commands.
var jogKeys = map[string]byte{
	"x+": 'd', "x-": 'a',
	"y+": 'w', "y-": 's',
	"z+": 'q', "z-": 'e',
}

type shell struct {
	m       *mcu.MCU
	out     io.Writer
	timeout time.Duration
}

func shellAction(c *cli.Context, logger *zap.SugaredLogger) (err error) {
	m, err := connect(c, logger)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Combine(err, m.Close()) }()

	sh := &shell{m: m, out: c.App.Writer, timeout: c.Duration(flagTimeout)}
	fmt.Fprintln(sh.out, "Gantry shell. Type 'help' for commands, 'quit' to exit.")

	scanner := bufio.NewScanner(c.App.Reader)
	for {
		fmt.Fprint(sh.out, "> ")
		if !scanner.Scan() {
			break
		}
		quit, err := sh.exec(c.Context, scanner.Text())
		if err != nil {
			fmt.Fprintln(sh.out, "error:", err)
		}
		if quit {
			return nil
		}
	}
	return errors.Wrap(scanner.Err(), "read shell input")
}

// exec runs one shell line and reports whether the shell should exit.
func (s *shell) exec(ctx context.Context, line string) (bool, error) {
	args, err := shlex.Split(line)
	if err != nil {
		return false, errors.Wrap(err, "parse line")
	}
	if len(args) == 0 {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	switch strings.ToLower(args[0]) {
	case "quit", "exit", "q":
		return true, nil

	case "help", "?":
		s.help()

	case "where":
		pos, err := s.m.Position(ctx)
		if err != nil {
			return false, err
		}
		fmt.Fprintln(s.out, pos)

	case "move":
		from, err := s.m.Position(ctx)
		if err != nil {
			return false, err
		}
		target, feed, err := parseMoveArgs(args[1:], from)
		if err != nil {
			return false, err
		}
		if err := s.m.Move(ctx, target, feed); err != nil {
			if errors.Is(err, mcu.ErrBusy) {
				fmt.Fprintln(s.out, "busy")
				return false, nil
			}
			return false, err
		}
		fmt.Fprintf(s.out, "moving to %s at %d steps/s\n", target, feed)

	case "wait":
		pos, err := s.m.WaitIdle(ctx)
		if err != nil {
			return false, err
		}
		fmt.Fprintln(s.out, "idle at", pos)

	case "speed":
		if len(args) != 2 || len(args[1]) != 1 || args[1][0] < '1' || args[1][0] > '3' {
			return false, errors.New("usage: speed 1|2|3")
		}
		if err := s.m.Key(args[1][0]); err != nil {
			return false, err
		}
		reply, err := s.m.Expect(ctx, func(l string) bool { return strings.HasPrefix(l, "Speed:") })
		if err != nil {
			return false, err
		}
		fmt.Fprintln(s.out, reply)

	case "jog":
		if len(args) != 2 {
			return false, errors.New("usage: jog x+|x-|y+|y-|z+|z-")
		}
		key, ok := jogKeys[strings.ToLower(args[1])]
		if !ok {
			return false, errors.Errorf("unknown jog direction %q", args[1])
		}
		if err := s.m.Key(key); err != nil {
			return false, err
		}
		reply, err := s.m.Expect(ctx, func(l string) bool { return strings.HasPrefix(l, "Man -> Pos:") })
		if err != nil {
			return false, err
		}
		fmt.Fprintln(s.out, reply)

	case "raw":
		return false, s.m.Send(strings.Join(args[1:], " "))

	default:
		// Anything else is a console line, e.g. "G1 X10" or "M114".
		return false, s.m.Send(strings.TrimSpace(line))
	}
	return false, nil
}

func (s *shell) help() {
	fmt.Fprintln(s.out, `Commands:
  move x=N y=N z=N f=N  absolute move, omitted axes stay put
  where                 print the current position
  wait                  wait for the running move to finish
  speed 1|2|3           select the jog speed preset
  jog x+|x-|y+|y-|z+|z- jog one increment
  raw LINE              send LINE to the console unchanged
  quit                  exit
Other lines go to the console as typed.`)
}

// parseMoveArgs reads key=value move arguments on top of the current position.
func parseMoveArgs(args []string, from mcu.Position) (mcu.Position, uint32, error) {
	target := from
	feed := uint32(defaultFeed)
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return target, 0, errors.Errorf("expected key=value, got %q", arg)
		}
		switch strings.ToLower(key) {
		case "x", "y", "z":
			n, err := strconv.ParseInt(value, 10, 32)
			if err != nil {
				return target, 0, errors.Wrapf(err, "axis %s", key)
			}
			switch strings.ToLower(key) {
			case "x":
				target.X = int32(n)
			case "y":
				target.Y = int32(n)
			default:
				target.Z = int32(n)
			}
		case "f":
			n, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return target, 0, errors.Wrap(err, "feed")
			}
			feed = uint32(n)
		default:
			return target, 0, errors.Errorf("unknown move argument %q", key)
		}
	}
	return target, feed, nil
}
