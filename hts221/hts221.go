// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hts221

import (
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Address is the 7-bit I²C address of the HTS221. The address is fixed; the
// chip has no address-select pin. Note that the datasheet prints the 8-bit
// read (0xBF) and write (0xBE) addresses instead.
const Address i2c.Addr = 0x5F

// ChipID is the value WHO_AM_I reports on a working part. The driver does
// not check it; identity verification is up to the caller.
const ChipID byte = 0xBC

// Register sub-addresses.
const (
	regWhoAmI      byte = 0x0F
	regAvConf      byte = 0x10
	regCtrl1       byte = 0x20
	regCtrl2       byte = 0x21
	regCtrl3       byte = 0x22
	regStatus      byte = 0x27
	regHumidityOut byte = 0x28 // HUMIDITY_OUT_L; HUMIDITY_OUT_H is 0x29.
	regTempOut     byte = 0x2A // TEMP_OUT_L; TEMP_OUT_H is 0x2B.
	regCalibration byte = 0x30 // First of the 16 calibration registers.

	// autoIncrement, ORed into a sub-address, makes the chip advance the
	// register pointer after every byte so consecutive registers come back
	// in a single transfer.
	autoIncrement byte = 0x80
)

// Bitfield layout of the individual registers.
const (
	avgMask              byte = 0b111
	avgHumidityOffset    byte = 0
	avgTemperatureOffset byte = 3

	ctrl1Power       byte = 1 << 7
	ctrl1BlockUpdate byte = 1 << 2
	ctrl1RateMask    byte = 0b11
	ctrl1RateOffset  byte = 0

	ctrl2Boot    byte = 1 << 7
	ctrl2Heater  byte = 1 << 1
	ctrl2OneShot byte = 1 << 0

	ctrl3ActiveLow byte = 1 << 7
	ctrl3OpenDrain byte = 1 << 6
	ctrl3DataReady byte = 1 << 2

	statusHumidity    byte = 1 << 1
	statusTemperature byte = 1 << 0
)

// HumidityAverage selects how many internal humidity samples the chip
// averages into one output sample.
type HumidityAverage byte

const (
	HumidityAverage4 HumidityAverage = iota
	HumidityAverage8
	HumidityAverage16
	HumidityAverage32
	HumidityAverage64
	HumidityAverage128
	HumidityAverage256
	HumidityAverage512
)

// Samples returns the number of internal samples the selector stands for.
func (a HumidityAverage) Samples() int {
	return 4 << (byte(a) & avgMask)
}

// TemperatureAverage selects how many internal temperature samples the chip
// averages into one output sample.
type TemperatureAverage byte

const (
	TemperatureAverage2 TemperatureAverage = iota
	TemperatureAverage4
	TemperatureAverage8
	TemperatureAverage16
	TemperatureAverage32
	TemperatureAverage64
	TemperatureAverage128
	TemperatureAverage256
)

// Samples returns the number of internal samples the selector stands for.
func (a TemperatureAverage) Samples() int {
	return 2 << (byte(a) & avgMask)
}

// DataRate selects the output data rate in CTRL_REG1. RateOneShot disables
// continuous conversion; a sample is then triggered through
// (*CtrlReg2).SetOneShot.
type DataRate byte

const (
	RateOneShot DataRate = iota
	RateOneHertz
	RateSevenHertz
	RateTwelveAndHalfHertz
)

// Frequency returns the continuous sampling frequency, or 0 for one-shot
// mode.
func (r DataRate) Frequency() physic.Frequency {
	switch r & DataRate(ctrl1RateMask) {
	case RateOneHertz:
		return physic.Hertz
	case RateSevenHertz:
		return 7 * physic.Hertz
	case RateTwelveAndHalfHertz:
		return 12500 * physic.MilliHertz
	default:
		return 0
	}
}

// Dev is a handle to an HTS221 on an I²C bus. Every exported method that
// touches the chip blocks for exactly one bus transaction.
type Dev struct {
	d *i2c.Dev
}

// NewI2C returns a handle to an HTS221 on the given bus. No bus traffic is
// generated; the first transaction happens when a register is read.
func NewI2C(b i2c.Bus) (*Dev, error) {
	return &Dev{d: &i2c.Dev{Bus: b, Addr: uint16(Address)}}, nil
}

func (d *Dev) readRegister(addr byte) (byte, error) {
	var r [1]byte
	if err := d.d.Tx([]byte{addr}, r[:]); err != nil {
		return 0, err
	}
	return r[0], nil
}

func (d *Dev) writeRegister(addr, bits byte) error {
	return d.d.Tx([]byte{addr, bits}, nil)
}

// readRegisterPair reads two consecutive registers in one transaction and
// combines them low byte first. addr must already carry the auto-increment
// bit; issuing two single reads instead could tear a sample.
func (d *Dev) readRegisterPair(addr byte) (int16, error) {
	var r [2]byte
	if err := d.d.Tx([]byte{addr}, r[:]); err != nil {
		return 0, err
	}
	return int16(uint16(r[1])<<8 | uint16(r[0])), nil
}

// WhoAmI is a snapshot of the WHO_AM_I identification register.
type WhoAmI struct {
	bits byte
}

// WhoAmI reads the WHO_AM_I register.
func (d *Dev) WhoAmI() (WhoAmI, error) {
	bits, err := d.readRegister(regWhoAmI)
	return WhoAmI{bits}, err
}

// DeviceID returns the identification byte, ChipID on a working part.
func (w WhoAmI) DeviceID() byte {
	return w.bits
}

// AvConf is a snapshot of the AV_CONF register, which configures how many
// internal samples are averaged into each humidity and temperature output.
type AvConf struct {
	bits byte
}

// AvConf reads the AV_CONF register.
func (d *Dev) AvConf() (AvConf, error) {
	bits, err := d.readRegister(regAvConf)
	return AvConf{bits}, err
}

// Modify applies f to the snapshot and writes the whole resulting byte back
// to the chip. Setters called outside Modify change only the snapshot, never
// the chip.
func (c *AvConf) Modify(d *Dev, f func(*AvConf)) error {
	f(c)
	return d.writeRegister(regAvConf, c.bits)
}

// HumidityAverage returns the configured humidity averaging selector.
func (c AvConf) HumidityAverage() HumidityAverage {
	return HumidityAverage((c.bits >> avgHumidityOffset) & avgMask)
}

// HumiditySamplesAveraged returns the number of internal humidity samples
// averaged into one output sample.
func (c AvConf) HumiditySamplesAveraged() int {
	return c.HumidityAverage().Samples()
}

// SetHumidityAverage sets the humidity averaging selector.
func (c *AvConf) SetHumidityAverage(a HumidityAverage) {
	c.bits &^= avgMask << avgHumidityOffset
	c.bits |= (byte(a) & avgMask) << avgHumidityOffset
}

// TemperatureAverage returns the configured temperature averaging selector.
func (c AvConf) TemperatureAverage() TemperatureAverage {
	return TemperatureAverage((c.bits >> avgTemperatureOffset) & avgMask)
}

// TemperatureSamplesAveraged returns the number of internal temperature
// samples averaged into one output sample.
func (c AvConf) TemperatureSamplesAveraged() int {
	return c.TemperatureAverage().Samples()
}

// SetTemperatureAverage sets the temperature averaging selector.
func (c *AvConf) SetTemperatureAverage(a TemperatureAverage) {
	c.bits &^= avgMask << avgTemperatureOffset
	c.bits |= (byte(a) & avgMask) << avgTemperatureOffset
}

// CtrlReg1 is a snapshot of CTRL_REG1: power, block data update and output
// data rate.
type CtrlReg1 struct {
	bits byte
}

// CtrlReg1 reads the CTRL_REG1 register.
func (d *Dev) CtrlReg1() (CtrlReg1, error) {
	bits, err := d.readRegister(regCtrl1)
	return CtrlReg1{bits}, err
}

// Modify applies f to the snapshot and writes the whole resulting byte back
// to the chip.
func (c *CtrlReg1) Modify(d *Dev, f func(*CtrlReg1)) error {
	f(c)
	return d.writeRegister(regCtrl1, c.bits)
}

// IsPoweredUp returns true if the chip is active. The chip starts in
// power-down mode.
func (c CtrlReg1) IsPoweredUp() bool {
	return c.bits&ctrl1Power != 0
}

// PowerUp takes the chip out of power-down mode.
func (c *CtrlReg1) PowerUp() {
	c.bits |= ctrl1Power
}

// PowerDown puts the chip into power-down mode.
func (c *CtrlReg1) PowerDown() {
	c.bits &^= ctrl1Power
}

// IsBlockUpdate returns true if block data update mode is enabled.
func (c CtrlReg1) IsBlockUpdate() bool {
	return c.bits&ctrl1BlockUpdate != 0
}

// SetBlockUpdate enables block data update mode: after one half of an output
// pair is read, the other half is held until it too is read, so the two
// bytes always belong to the same sample. Recommended unless reads are known
// to outpace the output data rate.
func (c *CtrlReg1) SetBlockUpdate() {
	c.bits |= ctrl1BlockUpdate
}

// SetContinuousUpdate disables block data update mode; output registers
// refresh continuously.
func (c *CtrlReg1) SetContinuousUpdate() {
	c.bits &^= ctrl1BlockUpdate
}

// DataRate returns the configured output data rate.
func (c CtrlReg1) DataRate() DataRate {
	return DataRate((c.bits >> ctrl1RateOffset) & ctrl1RateMask)
}

// SetDataRate sets the output data rate for both humidity and temperature.
func (c *CtrlReg1) SetDataRate(r DataRate) {
	c.bits &^= ctrl1RateMask << ctrl1RateOffset
	c.bits |= (byte(r) & ctrl1RateMask) << ctrl1RateOffset
}

// CtrlReg2 is a snapshot of CTRL_REG2: boot, heater and one-shot trigger.
type CtrlReg2 struct {
	bits byte
}

// CtrlReg2 reads the CTRL_REG2 register.
func (d *Dev) CtrlReg2() (CtrlReg2, error) {
	bits, err := d.readRegister(regCtrl2)
	return CtrlReg2{bits}, err
}

// Modify applies f to the snapshot and writes the whole resulting byte back
// to the chip.
func (c *CtrlReg2) Modify(d *Dev, f func(*CtrlReg2)) error {
	f(c)
	return d.writeRegister(regCtrl2, c.bits)
}

// IsBooting returns true if a reload of the factory trim registers is still
// in progress.
func (c CtrlReg2) IsBooting() bool {
	return c.bits&ctrl2Boot != 0
}

// Boot requests a reload of the factory calibration trim from flash into the
// working registers. Hardware clears the bit when the reload completes;
// poll a fresh CtrlReg2 snapshot rather than this one.
func (c *CtrlReg2) Boot() {
	c.bits |= ctrl2Boot
}

// IsHeaterOn returns true if the internal heating element is enabled.
func (c CtrlReg2) IsHeaterOn() bool {
	return c.bits&ctrl2Heater != 0
}

// HeaterOn enables the internal heating element, used to recover the sensor
// after condensation.
func (c *CtrlReg2) HeaterOn() {
	c.bits |= ctrl2Heater
}

// HeaterOff disables the internal heating element.
func (c *CtrlReg2) HeaterOff() {
	c.bits &^= ctrl2Heater
}

// IsOneShot returns true if a one-shot conversion is still pending.
func (c CtrlReg2) IsOneShot() bool {
	return c.bits&ctrl2OneShot != 0
}

// SetOneShot triggers a single conversion when the data rate is RateOneShot.
// Hardware clears the bit when the conversion completes.
func (c *CtrlReg2) SetOneShot() {
	c.bits |= ctrl2OneShot
}

// CtrlReg3 is a snapshot of CTRL_REG3, which routes the data-ready signal to
// the DRDY pin.
type CtrlReg3 struct {
	bits byte
}

// CtrlReg3 reads the CTRL_REG3 register.
func (d *Dev) CtrlReg3() (CtrlReg3, error) {
	bits, err := d.readRegister(regCtrl3)
	return CtrlReg3{bits}, err
}

// Modify applies f to the snapshot and writes the whole resulting byte back
// to the chip.
func (c *CtrlReg3) Modify(d *Dev, f func(*CtrlReg3)) error {
	f(c)
	return d.writeRegister(regCtrl3, c.bits)
}

// IsDataReadyActiveLow returns true if the data-ready signal is active low.
func (c CtrlReg3) IsDataReadyActiveLow() bool {
	return c.bits&ctrl3ActiveLow != 0
}

// DataReadyActiveHigh makes the data-ready signal active high.
func (c *CtrlReg3) DataReadyActiveHigh() {
	c.bits &^= ctrl3ActiveLow
}

// DataReadyActiveLow makes the data-ready signal active low.
func (c *CtrlReg3) DataReadyActiveLow() {
	c.bits |= ctrl3ActiveLow
}

// IsDataReadyOpenDrain returns true if the DRDY pin is in open-drain mode.
func (c CtrlReg3) IsDataReadyOpenDrain() bool {
	return c.bits&ctrl3OpenDrain != 0
}

// DataReadyPushPull puts the DRDY pin in push-pull mode.
func (c *CtrlReg3) DataReadyPushPull() {
	c.bits &^= ctrl3OpenDrain
}

// DataReadyOpenDrain puts the DRDY pin in open-drain mode.
func (c *CtrlReg3) DataReadyOpenDrain() {
	c.bits |= ctrl3OpenDrain
}

// IsDataReadyEnabled returns true if the data-ready signal is routed to the
// DRDY pin.
func (c CtrlReg3) IsDataReadyEnabled() bool {
	return c.bits&ctrl3DataReady != 0
}

// EnableDataReady routes the data-ready signal to the DRDY pin.
func (c *CtrlReg3) EnableDataReady() {
	c.bits |= ctrl3DataReady
}

// DisableDataReady stops driving the data-ready signal on the DRDY pin.
func (c *CtrlReg3) DisableDataReady() {
	c.bits &^= ctrl3DataReady
}

// Status is a snapshot of the STATUS register. Read a fresh snapshot each
// time current readiness is needed.
type Status struct {
	bits byte
}

// Status reads the STATUS register.
func (d *Dev) Status() (Status, error) {
	bits, err := d.readRegister(regStatus)
	return Status{bits}, err
}

// HumidityAvailable returns true if a new humidity sample is ready.
func (s Status) HumidityAvailable() bool {
	return s.bits&statusHumidity != 0
}

// TemperatureAvailable returns true if a new temperature sample is ready.
func (s Status) TemperatureAvailable() bool {
	return s.bits&statusTemperature != 0
}

// HumidityOut is a snapshot of the HUMIDITY_OUT_L/_H register pair.
type HumidityOut struct {
	value int16
}

// HumidityOut reads both humidity output registers in one transaction.
func (d *Dev) HumidityOut() (HumidityOut, error) {
	v, err := d.readRegisterPair(autoIncrement | regHumidityOut)
	return HumidityOut{v}, err
}

// Value returns the raw humidity sample.
func (h HumidityOut) Value() int16 {
	return h.value
}

// TemperatureOut is a snapshot of the TEMP_OUT_L/_H register pair.
type TemperatureOut struct {
	value int16
}

// TemperatureOut reads both temperature output registers in one transaction.
func (d *Dev) TemperatureOut() (TemperatureOut, error) {
	v, err := d.readRegisterPair(autoIncrement | regTempOut)
	return TemperatureOut{v}, err
}

// Value returns the raw temperature sample.
func (t TemperatureOut) Value() int16 {
	return t.value
}

// Calibration holds the factory calibration block. Each part is trimmed in
// production; no user calibration is needed. The values are exposed verbatim
// so the caller can interpolate raw samples into %RH and °C.
type Calibration struct {
	// Relative humidity of calibration point 0, in half percent.
	H0RHx2 uint8
	// Relative humidity of calibration point 1, in half percent.
	H1RHx2 uint8
	// Temperature of calibration point 0, in eighths of a degree Celsius.
	T0DegCx8 uint16
	// Temperature of calibration point 1, in eighths of a degree Celsius.
	T1DegCx8 uint16
	// Raw humidity reading at calibration point 0.
	H0T0Out int16
	// Raw humidity reading at calibration point 1.
	H1T0Out int16
	// Raw temperature reading at calibration point 0.
	T0Out int16
	// Raw temperature reading at calibration point 1.
	T1Out int16
}

// Calibration reads the 16-byte calibration block in one transaction. The
// two 10-bit temperature points are split across the block: bits 0-1 and 2-3
// of the shared byte at offset 5 extend the low bytes at offsets 2 and 3.
func (d *Dev) Calibration() (Calibration, error) {
	var r [16]byte
	if err := d.d.Tx([]byte{autoIncrement | regCalibration}, r[:]); err != nil {
		return Calibration{}, err
	}
	return Calibration{
		H0RHx2:   r[0],
		H1RHx2:   r[1],
		T0DegCx8: uint16(r[5]&0b11)<<8 | uint16(r[2]),
		T1DegCx8: uint16((r[5]&0b1100)>>2)<<8 | uint16(r[3]),
		H0T0Out:  int16(uint16(r[7])<<8 | uint16(r[6])),
		H1T0Out:  int16(uint16(r[11])<<8 | uint16(r[10])),
		T0Out:    int16(uint16(r[13])<<8 | uint16(r[12])),
		T1Out:    int16(uint16(r[15])<<8 | uint16(r[14])),
	}, nil
}

// Halt powers the chip down through the usual read-modify-write cycle.
// Implements conn.Resource.
func (d *Dev) Halt() error {
	c, err := d.CtrlReg1()
	if err != nil {
		return err
	}
	return c.Modify(d, func(c *CtrlReg1) { c.PowerDown() })
}

func (d *Dev) String() string {
	return fmt.Sprintf("hts221: %s", d.d.String())
}

var _ conn.Resource = &Dev{}
