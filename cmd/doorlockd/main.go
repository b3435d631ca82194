//go:build tamago && arm

// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Command doorlockd is the device entrypoint for the networked door-lock
// controller, grounded on board/usbarmory/mk2.Init's bring-up pattern and
// example/example.go's log-setup/banner idiom (both cited for grounding,
// not imported).
package main

import (
	"fmt"
	"log"
	"net"
	"os"
	"time"

	"github.com/usbarmory/doorlock/board/usbarmory/mk2"
	"github.com/usbarmory/doorlock/internal/auth"
	"github.com/usbarmory/doorlock/internal/config"
	"github.com/usbarmory/doorlock/internal/control"
	"github.com/usbarmory/doorlock/internal/display"
	"github.com/usbarmory/doorlock/internal/httpfe"
	"github.com/usbarmory/doorlock/internal/lockfsm"
	"github.com/usbarmory/doorlock/internal/motor"
	"github.com/usbarmory/doorlock/internal/noncestore"
	"github.com/usbarmory/doorlock/internal/position"
	"github.com/usbarmory/doorlock/soc/nxp/gpio"
	"github.com/usbarmory/doorlock/soc/nxp/imx6ul"

	"gvisor.dev/gvisor/pkg/tcpip"
)

const banner = "doorlockd for USB armory Mk II"

// noncePath is the fixed path of the persistent nonce store file, read and
// written through package os. Nothing in this repository mounts a
// filesystem at this path: board/usbarmory/mk2/usdhc.go only brings up the
// SD/eMMC controllers.
const noncePath = "/var/doorlock/nonce"

// deviceAddr is the static IP the controller listens on; the HTTP control
// surface has no DHCP requirement of its own.
const deviceAddr = "10.0.0.1"
const httpPort = 80

// Motor and display GPIO assignments, on pins the board package leaves
// unused (board/usbarmory/mk2/led.go and pmic.go claim GPIO4_IO21/22 and
// the WDOG pad respectively; these are disjoint from them).
const (
	motorSupplyGPIO    = 16
	motorDirectionGPIO = 17

	rowGPIOBase = 0
	colGPIOBase = 5

	// calibBtnIRQ is the GPIO1 bank edge interrupt line the calibration
	// button is wired to, enabled on the GIC below.
	calibBtnIRQ = 32 + 58
)

func init() {
	log.SetFlags(0)
	log.SetOutput(os.Stdout)
}

func main() {
	fmt.Println(banner)

	if config.ResetTimestamp {
		if err := noncestore.Reset(noncestore.NewFile(noncePath)); err != nil {
			log.Printf("warning: nonce slot reset failed: %v", err)
		}
	}

	verifier := buildVerifier()
	actuator := buildActuator()
	sensor := buildSensor(actuator)
	disp := buildDisplay()
	calib := &control.HardwareCalibFlag{CPU: imx6ul.ARM}

	imx6ul.GIC.Init(true, false)
	imx6ul.GIC.EnableInterrupt(calibBtnIRQ, true)
	go watchCalibrationButton(calib)

	addr := tcpip.Address(net.ParseIP(deviceAddr)).To4()
	stack := configureNetworkStack(addr)
	ln := listen(stack, addr, httpPort)

	loop := &control.Loop{
		FSM:      lockfsm.New(),
		Sensor:   sensor,
		Actuator: actuator,
		Auth:     verifier,
		Server:   httpfe.New(ln),
		Watchdog: imx6ul.WDOG2,
		Calib:    calib,
		Display:  disp,
		Now:      nowMS,
	}

	imx6ul.WDOG2.Init()
	imx6ul.WDOG2.EnableTimeout(control.WatchdogTimeoutMS)

	for {
		loop.Tick()
	}
}

var bootTime = time.Now()

func nowMS() uint32 {
	return uint32(time.Since(bootTime).Milliseconds())
}

func buildVerifier() httpfe.Verifier {
	if config.SkipAuth {
		return auth.AlwaysAccept{}
	}
	store := noncestore.NewFile(noncePath)
	return auth.New([]byte(config.RemoteLockSecret), store)
}

func buildSensor(actuator *motor.Actuator) *position.Sensor {
	sampler := &position.I2CSampler{Bus: mk2.I2C1, Target: 0x48}

	sensor := position.New(sampler, actuator.Attached)

	sensor.Powered = position.Anchors{MinRaw: 90, MaxRaw: 920, MinDeg: 0, MaxDeg: 180}
	sensor.Unpowered = position.Anchors{MinRaw: 110, MaxRaw: 900, MinDeg: 0, MaxDeg: 180}

	return sensor
}

func buildActuator() *motor.Actuator {
	supply, err := imx6ul.GPIO1.Init(motorSupplyGPIO)
	if err != nil {
		panic(err)
	}

	direction, err := imx6ul.GPIO1.Init(motorDirectionGPIO)
	if err != nil {
		panic(err)
	}

	drv := motor.NewGPIODriver(supply, direction)
	return motor.New(drv)
}

func buildDisplay() *display.Display {
	rowSelect := initGPIORange(rowGPIOBase, 5)
	colData := initGPIORange(colGPIOBase, 5)

	panel := display.NewGPIOPanel(rowSelect, colData)
	return display.New(panel)
}

// initGPIORange initialises count consecutive GPIO1 pins starting at base,
// panicking on the first failure since a misconfigured display pin is a
// boot-time fault, not a runtime condition to recover from.
func initGPIORange(base, count int) []*gpio.Pin {
	pins := make([]*gpio.Pin, count)
	for i := 0; i < count; i++ {
		pin, err := imx6ul.GPIO1.Init(base + i)
		if err != nil {
			panic(err)
		}
		pins[i] = pin
	}
	return pins
}

// watchCalibrationButton polls the GIC for the calibration-button edge
// interrupt. arm/gic.GIC.GetInterrupt does not block: it acknowledges one
// pending interrupt and returns a channel whose closing ends it, or a nil
// channel when none is pending, in which case the loop sleeps for a
// millisecond and polls again. The button line is enabled as a Secure
// (Group 0) interrupt, so it is acknowledged through the Secure interface.
// Each firing sets the flag the control loop consumes once per tick.
func watchCalibrationButton(flag *control.HardwareCalibFlag) {
	for {
		id, done := imx6ul.GIC.GetInterrupt(true)
		if done == nil {
			time.Sleep(time.Millisecond)
			continue
		}
		if id == calibBtnIRQ {
			flag.SetFromISR()
		}
		close(done)
	}
}
