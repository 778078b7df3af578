// Copyright 2013 Lawrence Kesteloot

package fdc

// Delays inside the controller are counted in cycles of the WD1772's 8 MHz
// clock and converted to CPU cycles when they're handed to the scheduler.

const (
	// Clock of the WD1772 on the ST.
	fdcHz = 8000000

	// CPUHz is the 68000 clock of a PAL ST, which the scheduler counts in.
	CPUHz = 8021247

	// 4 us per bit, 8 bits per byte, 8 MHz clock.
	mfmByteCycles = 4 * 8 * 8

	// Double density disk speed.
	bitRate = 250000
	diskRpm = 300

	// One revolution, in FDC cycles.
	rotationCycles = fdcHz * 60 / diskRpm

	// Bytes on a standard double density track at 250 kbit/s and 300 RPM.
	trackBytes = 6268

	// How long the index pulse stays active.
	indexPulseCycles = 3710 * 8

	// Index pulses to wait before the motor is considered spun up, before
	// it's switched off after a command, and before a missing ID field
	// gives Record Not Found.
	spinUpPulses   = 6
	motorOffPulses = 9
	searchPulses   = 5

	// Head settle delay (Type I verify, Type II/III "E" bit).
	headSettleCycles = 15000 * 8

	// Time between a command being written and its first phase.
	typeIPrepareCycles   = 90 * 8
	typeIIPrepareCycles  = 1 * 8
	typeIIIPrepareCycles = 1 * 8
	typeIVPrepareCycles  = 100 * 8

	// Time between the last phase of a command and its completion.
	completeCycles = 1 * 8

	// All delays are divided by this when fast floppy is enabled.
	fastFactor = 10
)

// Step rates in ms for the two low bits of a Type I command.
var stepRateMs = [4]int{6, 12, 2, 3}

// FDC cycles to move n bytes to or from the disk.
func transferCycles(n int) int {
	return n * mfmByteCycles
}

// FDC cycles between two steps for a Type I command byte.
func stepCycles(cmd byte) int {
	return stepRateMs[cmd&BitStepRate] * 1000 * 8
}

// Convert an FDC delay to CPU cycles.
func (c *Controller) cpuCycles(fdcCycles int) uint64 {
	if fdcCycles <= 0 {
		return 0
	}

	n := uint64(fdcCycles)
	if c.config.FastFloppy && n > fastFactor {
		n /= fastFactor
	}

	return n * CPUHz / fdcHz
}

// FDC cycles elapsed between a past CPU clock and now, undoing the fast
// floppy speed-up so that the disk position agrees with the scheduled
// delays.
func (c *Controller) fdcCyclesBetween(from, to uint64) uint64 {
	if to <= from {
		return 0
	}

	n := (to - from) * fdcHz / CPUHz
	if c.config.FastFloppy {
		n *= fastFactor
	}

	return n
}

// Bytes in one revolution of a track holding spt standard sectors. Tracks
// with more sectors than fit at the nominal speed are stretched.
func trackLength(spt int) int {
	n := gap1Bytes + spt*rawSectorBytes
	if n < trackBytes {
		return trackBytes
	}

	return n
}

// Whether the drive's index pulse is active at clock.
func (c *Controller) indexPulseActive(d *drive, clock uint64) bool {
	if !d.spinning {
		return false
	}

	return c.fdcCyclesBetween(d.indexClock, clock)%rotationCycles < indexPulseCycles
}

// FDC cycles from now until the n-th next index pulse. A drive that isn't
// turning (no drive, no disk) never gives an index pulse, so we count full
// revolutions from now to keep the command from hanging.
func (c *Controller) untilIndexPulses(n int) int {
	d := c.commandDrive()
	if d == nil || !d.spinning {
		return n * rotationCycles
	}

	pos := c.fdcCyclesBetween(d.indexClock, c.phaseClock) % rotationCycles

	return int(rotationCycles-pos) + (n-1)*rotationCycles
}

// Byte under the head for the command's drive, counted from the index pulse.
func (c *Controller) headBytePosition(spt int) int {
	d := c.commandDrive()
	if d == nil || !d.spinning {
		return 0
	}

	return int(c.fdcCyclesBetween(d.indexClock, c.phaseClock)/mfmByteCycles) % trackLength(spt)
}

// FDC cycles until the ID field of sector has passed under the head, in the
// standard track layout.
func (c *Controller) untilIDField(sector, spt int) int {
	length := trackLength(spt)
	target := idFieldOffset(sector) + idFieldBytes
	distance := (target - c.headBytePosition(spt) + length) % length

	return transferCycles(distance)
}
