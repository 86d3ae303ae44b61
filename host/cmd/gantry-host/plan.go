package main

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"gantry/motion"
)

func planAction(c *cli.Context) error {
	if c.NArg() < 3 || c.NArg() > 4 {
		return errors.New("usage: plan DX DY DZ [FEED]")
	}
	var delta [motion.NumAxes]int32
	for i := range delta {
		n, err := strconv.ParseInt(c.Args().Get(i), 10, 32)
		if err != nil {
			return errors.Wrapf(err, "%s displacement", motion.Axis(i))
		}
		delta[i] = int32(n)
	}
	feed := uint64(defaultFeed)
	if c.NArg() == 4 {
		var err error
		if feed, err = strconv.ParseUint(c.Args().Get(3), 10, 32); err != nil {
			return errors.Wrap(err, "feed")
		}
	}

	m, ok := motion.PlanMove(delta, uint32(feed), c.Float64(flagStartFreq))
	if !ok {
		fmt.Fprintln(c.App.Writer, "zero move, nothing to plan")
		return nil
	}
	fmt.Fprintln(c.App.Writer, planTable(m, uint32(c.Uint(flagMinPeriod))))
	return nil
}

func planTable(m motion.Move, minIntervalUS uint32) string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("%d steps, ramps %d/%d, %.0f..%.0f steps/s",
		m.TotalSteps, m.AccelSteps, m.DecelSteps, m.MinFreq, m.MaxFreq))
	t.AppendHeader(table.Row{"Phase", "Steps", "First", "Last", "Start Hz", "End Hz", "Time ms"})

	var total uint64
	for _, seg := range m.Segments(minIntervalUS) {
		t.AppendRow(table.Row{
			seg.Phase, seg.Steps(), seg.First, seg.Last,
			fmt.Sprintf("%.1f", seg.StartFreq),
			fmt.Sprintf("%.1f", seg.EndFreq),
			fmt.Sprintf("%.2f", float64(seg.DurationUS)/1000),
		})
		total += seg.DurationUS
	}
	t.AppendFooter(table.Row{"total", m.TotalSteps, "", "", "", "", fmt.Sprintf("%.2f", float64(total)/1000)})
	return t.Render()
}
