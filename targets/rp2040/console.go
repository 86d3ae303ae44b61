//go:build rp2040

package main

import (
	"machine"
	"time"

	"gantry/protocol"
	"gantry/standalone"
)

// usbLink moves bytes between machine.Serial (USB CDC) and the console. A
// reader goroutine fills rx; the foreground drains it and writes tx.
type usbLink struct {
	rx *protocol.FifoBuffer
	tx [64]byte

	received uint32
	dropped  uint32
}

func newUSBLink(baud, rxSize int) *usbLink {
	// CDC ignores the rate; the UART fallback uses it.
	_ = machine.Serial.Configure(machine.UARTConfig{BaudRate: uint32(baud)})
	return &usbLink{rx: protocol.NewFifoBuffer(rxSize)}
}

func (l *usbLink) readLoop() {
	for {
		for machine.Serial.Buffered() > 0 {
			b, err := machine.Serial.ReadByte()
			if err != nil {
				l.dropped++
				break
			}
			l.received++
			if !l.rx.PutByte(b) {
				l.dropped++
			}
		}
		time.Sleep(100 * time.Microsecond)
	}
}

// feed hands every buffered input byte to the console.
func (l *usbLink) feed(m *standalone.Manager) {
	for {
		b, ok := l.rx.PopByte()
		if !ok {
			return
		}
		m.ProcessByte(b)
	}
}

// flush drains console output to the host. A chunk the host will not take
// is dropped.
func (l *usbLink) flush(m *standalone.Manager) {
	for n := m.ReadOutput(l.tx[:]); n > 0; n = m.ReadOutput(l.tx[:]) {
		for off := 0; off < n; {
			w, err := machine.Serial.Write(l.tx[off:n])
			if err != nil || w == 0 {
				l.dropped++
				break
			}
			off += w
		}
	}
}
