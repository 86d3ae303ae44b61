// Package protocol holds the byte queues between the serial link and the
// console: a ring for bytes in flight and a bounded line accumulator.
package protocol

// FifoBuffer is a single-producer single-consumer byte ring. One slot stays
// empty so head == tail always means empty.
type FifoBuffer struct {
	buf        []byte
	head, tail int // next read, next write
}

// NewFifoBuffer holds up to capacity-1 bytes.
func NewFifoBuffer(capacity int) *FifoBuffer {
	if capacity < 2 {
		capacity = 2
	}
	return &FifoBuffer{buf: make([]byte, capacity)}
}

func (f *FifoBuffer) next(i int) int {
	if i++; i == len(f.buf) {
		return 0
	}
	return i
}

// PutByte appends b and reports false when the ring is full.
func (f *FifoBuffer) PutByte(b byte) bool {
	n := f.next(f.tail)
	if n == f.head {
		return false
	}
	f.buf[f.tail] = b
	f.tail = n
	return true
}

// PopByte removes the oldest byte.
func (f *FifoBuffer) PopByte() (byte, bool) {
	if f.head == f.tail {
		return 0, false
	}
	b := f.buf[f.head]
	f.head = f.next(f.head)
	return b, true
}

// Write appends as much of data as fits and returns the count. It never
// returns an error; a short count means the ring filled.
func (f *FifoBuffer) Write(data []byte) int {
	for i, b := range data {
		if !f.PutByte(b) {
			return i
		}
	}
	return len(data)
}

// WriteString is Write for a string
func (f *FifoBuffer) WriteString(s string) int {
	for i := 0; i < len(s); i++ {
		if !f.PutByte(s[i]) {
			return i
		}
	}
	return len(s)
}

// Read moves up to len(data) bytes out of the ring.
func (f *FifoBuffer) Read(data []byte) int {
	for i := range data {
		b, ok := f.PopByte()
		if !ok {
			return i
		}
		data[i] = b
	}
	return len(data)
}

// Available is the number of buffered bytes.
func (f *FifoBuffer) Available() int {
	n := f.tail - f.head
	if n < 0 {
		n += len(f.buf)
	}
	return n
}

// Free is the number of bytes that can still be written.
func (f *FifoBuffer) Free() int {
	return len(f.buf) - 1 - f.Available()
}

func (f *FifoBuffer) IsEmpty() bool {
	return f.head == f.tail
}

func (f *FifoBuffer) Reset() {
	f.head, f.tail = 0, 0
}

// LineBuffer accumulates one input line of bounded length. Bytes past the
// limit are dropped; the line is still terminated normally.
type LineBuffer struct {
	buf []byte
}

// NewLineBuffer holds at most limit-1 bytes, the payload of a NUL-terminated
// receive buffer of limit bytes.
func NewLineBuffer(limit int) *LineBuffer {
	if limit < 2 {
		limit = 2
	}
	return &LineBuffer{buf: make([]byte, 0, limit-1)}
}

// Append adds b and reports false if it was dropped
func (l *LineBuffer) Append(b byte) bool {
	if len(l.buf) == cap(l.buf) {
		return false
	}
	l.buf = append(l.buf, b)
	return true
}

func (l *LineBuffer) Len() int {
	return len(l.buf)
}

// Take returns the line and clears the buffer
func (l *LineBuffer) Take() string {
	s := string(l.buf)
	l.buf = l.buf[:0]
	return s
}

func (l *LineBuffer) Reset() {
	l.buf = l.buf[:0]
}
