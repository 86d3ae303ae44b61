package motion

// Segment summarizes one phase of a planned move.
type Segment struct {
	Phase       Phase
	First, Last uint32 // step numbers, inclusive
	StartFreq   float64
	EndFreq     float64
	DurationUS  uint64
}

func (s Segment) Steps() uint32 {
	return s.Last - s.First + 1
}

// Segments walks m the way the tick handler does and groups its steps by
// phase. The wait before step k is the period programmed after step k-1,
// and it is charged to the phase of step k.
func (m *Move) Segments(minIntervalUS uint32) []Segment {
	var out []Segment
	for step := uint32(1); step <= m.TotalSteps; step++ {
		phase := m.PhaseAt(step)
		wait := uint64(IntervalFor(m.FrequencyAt(step-1), minIntervalUS))
		freq := m.FrequencyAt(step)

		if n := len(out); n == 0 || out[n-1].Phase != phase {
			out = append(out, Segment{Phase: phase, First: step, StartFreq: freq})
		}
		seg := &out[len(out)-1]
		seg.Last = step
		seg.EndFreq = freq
		seg.DurationUS += wait
	}
	return out
}

// DurationUS is the planned time from arming to the last step pulse.
func (m *Move) DurationUS(minIntervalUS uint32) uint64 {
	var total uint64
	for _, seg := range m.Segments(minIntervalUS) {
		total += seg.DurationUS
	}
	return total
}
