package sim

import (
	"context"
	"io"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"gantry/standalone"
)

const (
	readChunk    = 64
	pollInterval = time.Millisecond
)

// Console runs the foreground loop of a simulated machine: input bytes go
// to the manager one at a time and queued responses are written out.
type Console struct {
	manager *standalone.Manager
	clk     clock.Clock
	logger  *zap.SugaredLogger
}

func NewConsole(manager *standalone.Manager, clk clock.Clock, logger *zap.SugaredLogger) *Console {
	return &Console{manager: manager, clk: clk, logger: logger}
}

// Run serves the console until ctx is done. When in reaches EOF, Run waits
// for the current move to finish, writes its report and returns nil.
func (c *Console) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	chunks := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		buf := make([]byte, readChunk)
		for {
			n, err := in.Read(buf)
			if n > 0 {
				chunk := append([]byte(nil), buf[:n]...)
				select {
				case chunks <- chunk:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	ticker := c.clk.Ticker(pollInterval)
	defer ticker.Stop()

	c.manager.Start()
	outBuf := make([]byte, 256)
	eof := false

	for {
		if err := c.flush(out, outBuf); err != nil {
			return err
		}
		if eof && !c.manager.Controller().IsMoving() {
			c.manager.Poll()
			return c.flush(out, outBuf)
		}

		select {
		case <-ctx.Done():
			return nil
		case chunk := <-chunks:
			for _, b := range chunk {
				c.manager.ProcessByte(b)
			}
		case err := <-readErr:
			if err != io.EOF {
				return errors.Wrap(err, "read console input")
			}
			c.logger.Debug("console input closed")
			eof = true
			readErr = nil
		case <-ticker.C:
		}
		c.manager.Poll()
	}
}

func (c *Console) flush(out io.Writer, buf []byte) error {
	for {
		n := c.manager.ReadOutput(buf)
		if n == 0 {
			return nil
		}
		if _, err := out.Write(buf[:n]); err != nil {
			return errors.Wrap(err, "write console output")
		}
	}
}
