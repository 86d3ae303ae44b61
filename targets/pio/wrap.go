package pio

// pulseProgramLen is the instruction count of the one-shot pulse program.
const pulseProgramLen = 5

// wrapBounds returns the (wrapTarget, wrap) pair for a program of length n
// loaded at offset, in the argument order of StateMachineConfig.SetWrap:
// execution runs to wrap, the last instruction, then resumes at wrapTarget,
// the first.
func wrapBounds(offset, n uint8) (wrapTarget, wrap uint8) {
	return offset, offset + n - 1
}
