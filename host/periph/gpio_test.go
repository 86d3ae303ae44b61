package periph

import (
	"testing"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.viam.com/test"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/gpio/gpiotest"

	"gantry/core"
)

func TestGPIODriverMapsPins(t *testing.T) {
	step := &gpiotest.Pin{N: "9002", Num: 9002, L: gpio.High}
	test.That(t, gpioreg.Register(step), test.ShouldBeNil)
	t.Cleanup(func() { gpioreg.Unregister("9002") })

	d := newGPIODriver(9000, zap.NewNop().Sugar())

	test.That(t, d.SetPin(2, true), test.ShouldBeError, core.ErrInvalidPin)
	test.That(t, d.ConfigureOutput(2), test.ShouldBeNil)
	test.That(t, step.Read(), test.ShouldEqual, gpio.Low)

	test.That(t, d.SetPin(2, true), test.ShouldBeNil)
	test.That(t, step.Read(), test.ShouldEqual, gpio.High)
	level, err := d.GetPin(2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, level, test.ShouldBeTrue)

	err = d.ConfigureOutput(3)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, core.ErrInvalidPin), test.ShouldBeTrue)
}
