package motion

import "testing"

func TestSegmentsCoverEveryStep(t *testing.T) {
	m, ok := PlanMove([NumAxes]int32{100, -40, 7}, 4000, 500)
	if !ok {
		t.Fatal("PlanMove rejected a nonzero move")
	}

	segs := m.Segments(100)
	if len(segs) != 3 {
		t.Fatalf("expected accel, cruise and decel, got %d segments", len(segs))
	}
	want := []struct {
		phase       Phase
		first, last uint32
	}{
		{PhaseAccel, 1, 20},
		{PhaseCruise, 21, 80},
		{PhaseDecel, 81, 100},
	}
	var steps uint32
	for i, w := range want {
		if segs[i].Phase != w.phase || segs[i].First != w.first || segs[i].Last != w.last {
			t.Errorf("segment %d = %v %d..%d, want %v %d..%d", i,
				segs[i].Phase, segs[i].First, segs[i].Last, w.phase, w.first, w.last)
		}
		steps += segs[i].Steps()
	}
	if steps != m.TotalSteps {
		t.Errorf("segments cover %d steps, want %d", steps, m.TotalSteps)
	}

	if segs[1].StartFreq != 4000 || segs[1].EndFreq != 4000 {
		t.Errorf("cruise should run at 4000, got %v..%v", segs[1].StartFreq, segs[1].EndFreq)
	}
	// 60 cruise steps, each preceded by a 250us period.
	if segs[1].DurationUS != 60*250 {
		t.Errorf("cruise duration = %d, want %d", segs[1].DurationUS, 60*250)
	}
}

func TestSegmentsShortMove(t *testing.T) {
	m, _ := PlanMove([NumAxes]int32{0, 0, 3}, 2000, 500)
	segs := m.Segments(100)
	// Too short for a ramp: the whole move cruises.
	if len(segs) != 1 || segs[0].Phase != PhaseCruise {
		t.Fatalf("3-step move should be a single cruise segment, got %+v", segs)
	}
	// First wait is the arming period at the start rate.
	if segs[0].DurationUS < 2000 {
		t.Errorf("duration %d shorter than the arming period", segs[0].DurationUS)
	}
}

func TestDurationHonorsMinimumInterval(t *testing.T) {
	m, _ := PlanMove([NumAxes]int32{1000, 0, 0}, 50000, 500)
	fast := m.DurationUS(100)
	if fast < uint64(m.TotalSteps)*100 {
		t.Errorf("duration %d beats the 100us floor", fast)
	}
	if slow := m.DurationUS(400); slow <= fast {
		t.Errorf("a longer floor should slow the move: %d <= %d", slow, fast)
	}
}
