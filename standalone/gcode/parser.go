package gcode

// Command is one parsed line: a command word and integer parameters.
type Command struct {
	Type    byte  // 'G', 'M' or 'T'; 0 when the line has no command word
	Number  int32 // -1 when the command word has no digits
	Comment string

	present uint32 // bit per parameter letter
	values  [26]int32
}

// Is reports whether the command is exactly the given word, e.g. Is('G', 1).
func (c *Command) Is(kind byte, number int32) bool {
	return c.Type == kind && c.Number == number
}

// HasParameter checks if a parameter letter appeared in the line
func (c *Command) HasParameter(letter byte) bool {
	idx, ok := letterIndex(letter)
	return ok && c.present&(1<<idx) != 0
}

// GetParameter returns the parameter value or def when absent
func (c *Command) GetParameter(letter byte, def int32) int32 {
	idx, ok := letterIndex(letter)
	if !ok || c.present&(1<<idx) == 0 {
		return def
	}
	return c.values[idx]
}

func (c *Command) set(letter byte, v int32) {
	idx, ok := letterIndex(letter)
	if !ok {
		return
	}
	c.present |= 1 << idx
	c.values[idx] = v
}

// Parser handles G-code parsing. Numbers are read the way strtol does:
// optional blanks, an optional sign, then digits. A letter followed by no
// digits still counts as present with value 0, and anything that is not a
// parameter letter is skipped.
type Parser struct {
	cmd Command
}

// NewParser creates a new G-code parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseLine parses a single line of G-code. It returns nil for a blank line.
// The returned command is reused by the next call.
func (p *Parser) ParseLine(line string) *Command {
	cmd := &p.cmd
	*cmd = Command{Number: -1}

	i := skipBlanks(line, 0)
	if i >= len(line) {
		return nil
	}

	if line[i] == ';' || line[i] == '(' {
		cmd.Comment = line[i:]
		return cmd
	}

	switch c := toUpper(line[i]); c {
	case 'G', 'M', 'T':
		cmd.Type = c
		i++
		if num, next, ok := parseInt(line, i); ok {
			cmd.Number = num
			i = next
		}
	}

	for i < len(line) {
		c := line[i]
		if c == ';' || c == '(' {
			cmd.Comment = line[i:]
			break
		}
		if !isLetter(c) {
			i++
			continue
		}
		num, next, _ := parseInt(line, i+1)
		cmd.set(toUpper(c), num)
		i = next
	}

	return cmd
}

// parseInt parses an integer starting at pos. Without digits it returns 0 and
// pos unchanged. Values saturate at the int32 range.
func parseInt(s string, pos int) (int32, int, bool) {
	i := skipBlanks(s, pos)
	negative := false
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		negative = s[i] == '-'
		i++
	}

	start := i
	var value int64
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		if value <= 1<<31 {
			value = value*10 + int64(s[i]-'0')
		}
		i++
	}
	if i == start {
		return 0, pos, false
	}

	if negative {
		value = -value
	}
	if value > 1<<31-1 {
		value = 1<<31 - 1
	} else if value < -1<<31 {
		value = -1 << 31
	}
	return int32(value), i, true
}

func skipBlanks(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

// isLetter checks if a byte is a letter
func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// toUpper converts a byte to uppercase
func toUpper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}

func letterIndex(c byte) (uint, bool) {
	c = toUpper(c)
	if c < 'A' || c > 'Z' {
		return 0, false
	}
	return uint(c - 'A'), true
}
