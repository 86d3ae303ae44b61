package serial

import (
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/dev/ttyACM0")
	test.That(t, cfg.Device, test.ShouldEqual, "/dev/ttyACM0")
	test.That(t, cfg.Baud, test.ShouldEqual, DefaultBaud)
	test.That(t, cfg.ReadTimeout, test.ShouldBeZeroValue)
}

func TestOpenRejectsBadConfig(t *testing.T) {
	_, err := Open(nil)
	test.That(t, err, test.ShouldBeError, "serial: no device given")

	_, err = Open(&Config{Device: "/dev/null", Baud: 0})
	test.That(t, err, test.ShouldBeError, "serial: bad baud rate 0")
}

func TestOpenMissingDevice(t *testing.T) {
	dev := filepath.Join(t.TempDir(), "ttyNONE")
	_, err := Open(DefaultConfig(dev))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldStartWith, "open "+dev)
}
