package standalone

import (
	"strconv"

	"gantry/core"
	"gantry/motion"
	"gantry/protocol"
	"gantry/standalone/config"
	"gantry/standalone/gcode"
)

const outputBufferSize = 1024

// Manager is the serial console of the machine. It takes input one byte at a
// time, handles single-key jogging, and runs G1/M114 lines against the
// motion controller. It lives on the foreground loop.
type Manager struct {
	config *config.MachineConfig
	motion *motion.Controller
	parser *gcode.Parser

	line   *protocol.LineBuffer
	output *protocol.FifoBuffer

	// reportPending is set when a move starts and cleared once its
	// completion has been reported by Poll.
	reportPending bool
}

// NewManager creates a console for an already wired controller
func NewManager(cfg *config.MachineConfig, ctl *motion.Controller) *Manager {
	return &Manager{
		config: cfg,
		motion: ctl,
		parser: gcode.NewParser(),
		line:   protocol.NewLineBuffer(cfg.LineBufferSize),
		output: protocol.NewFifoBuffer(outputBufferSize),
	}
}

// Controller returns the motion controller the console drives
func (m *Manager) Controller() *motion.Controller {
	return m.motion
}

// Start queues the startup banner
func (m *Manager) Start() {
	m.SendResponse("\r\n=== Gantry S-Curve Motion ===\r\n")
	m.SendResponse("Controls: [W/S] Y, [A/D] X, [Q/E] Z, [1-3] Speed\r\n")
}

// ProcessByte processes a single byte of input (for serial streaming)
func (m *Manager) ProcessByte(b byte) {
	// Jog keys only count at the start of a line.
	if m.line.Len() == 0 && m.handleKey(b) {
		return
	}

	m.echo(b)
	if b == '\n' || b == '\r' {
		if m.line.Len() > 0 {
			m.echo('\r')
			m.echo('\n')
			m.ProcessLine(m.line.Take())
		}
		return
	}
	m.line.Append(b)
}

// ProcessLine runs one command line. Unknown lines are ignored.
func (m *Manager) ProcessLine(line string) {
	cmd := m.parser.ParseLine(upper(line))
	if cmd == nil {
		return
	}

	switch {
	case cmd.Is('G', 1):
		m.linearMove(cmd)
	case cmd.Is('M', 114):
		m.SendResponse(positionLine("X:", " Y:", " Z:", m.motion.Position()))
	}
}

// Poll reports a finished move. Call it from the foreground loop.
func (m *Manager) Poll() {
	if m.reportPending && !m.motion.IsMoving() {
		m.reportPending = false
		m.SendResponse("ok: Pos " + positionLine("X", " Y", " Z", m.motion.Position()))
	}
}

// SendResponse queues a response to be sent to the host
func (m *Manager) SendResponse(response string) {
	if n := m.output.WriteString(response); n < len(response) {
		core.DebugPrintln("[CONSOLE] output full, dropped " + strconv.Itoa(len(response)-n) + " bytes")
	}
}

// GetOutput returns any pending output and clears the buffer
func (m *Manager) GetOutput() []byte {
	n := m.output.Available()
	if n == 0 {
		return nil
	}
	out := make([]byte, n)
	m.output.Read(out)
	return out
}

// ReadOutput drains pending output into p without allocating
func (m *Manager) ReadOutput(p []byte) int {
	return m.output.Read(p)
}

func (m *Manager) linearMove(cmd *gcode.Command) {
	pos := m.motion.Position()
	tx := cmd.GetParameter('X', pos.X)
	ty := cmd.GetParameter('Y', pos.Y)
	tz := cmd.GetParameter('Z', pos.Z)
	feed := cmd.GetParameter('F', int32(m.config.DefaultFeed))
	if feed < 0 {
		feed = 0
	}

	if m.motion.IsMoving() {
		m.SendResponse("busy\r\n")
		return
	}

	m.SendResponse("S-Curve Move: X" + itoa(tx) + " Y" + itoa(ty) + " Z" + itoa(tz) +
		" F" + itoa(feed) + "\r\n")
	if m.motion.Start(tx-pos.X, ty-pos.Y, tz-pos.Z, uint32(feed)) == motion.Accepted {
		m.reportPending = true
	}
}

// handleKey runs a single-key command and reports whether b was one.
func (m *Manager) handleKey(b byte) bool {
	var (
		axis motion.Axis
		dir  int
	)
	switch b {
	case 'w', 'W':
		axis, dir = motion.AxisY, 1
	case 's', 'S':
		axis, dir = motion.AxisY, -1
	case 'a', 'A':
		axis, dir = motion.AxisX, -1
	case 'd', 'D':
		axis, dir = motion.AxisX, 1
	case 'q', 'Q':
		axis, dir = motion.AxisZ, 1
	case 'e', 'E':
		axis, dir = motion.AxisZ, -1
	case '1', '2', '3':
		speed, _ := m.motion.SelectSpeed(int(b - '0'))
		m.SendResponse("Speed: " + strconv.FormatUint(uint64(speed), 10) + "\r\n")
		return true
	default:
		return false
	}

	if m.motion.Jog(axis, dir) == motion.Accepted {
		m.reportPending = true
	}
	m.SendResponse("Man -> Pos: " + positionLine("", " ", " ", m.motion.Position()))
	return true
}

func (m *Manager) echo(b byte) {
	if !m.config.NoEcho {
		m.output.PutByte(b)
	}
}

func positionLine(x, y, z string, p motion.Position) string {
	return x + itoa(p.X) + y + itoa(p.Y) + z + itoa(p.Z) + "\r\n"
}

func itoa(v int32) string {
	return strconv.FormatInt(int64(v), 10)
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}
