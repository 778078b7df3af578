// Copyright 2012 Lawrence Kesteloot

// Package machine is just enough of an Atari ST around the floppy controller
// to drive it the way TOS does: RAM for the DMA, the I/O registers at
// $FF8600, the PSG port that selects the drive and side, and the MFP input
// the controller's interrupt is wired to.
package machine

import (
	"stfloppy/fdc"
	"stfloppy/floppy"
	"stfloppy/sched"

	log "github.com/sirupsen/logrus"
)

// Owners of events on the queue.
const (
	fdcEvent sched.Kind = iota
)

// Config is the machine configuration.
type Config struct {
	// Bytes of RAM, starting at address zero.
	RAMSize int

	FDC fdc.Config
}

// DefaultConfig returns a 1 MB ST with both drives connected.
func DefaultConfig() Config {
	return Config{
		RAMSize: 1024 * 1024,
		FDC:     fdc.DefaultConfig(),
	}
}

// Machine represents the emulated hardware around the floppy controller.
type Machine struct {
	config Config

	// Queued up events, and the clock in CPU cycles.
	events sched.Queue

	// All of RAM.
	ram []byte

	// Floppy disk controller and DMA chip.
	FDC *fdc.Controller

	// Disks in the two drives.
	Drives *floppy.Drives

	psg psg
	mfp mfp

	// Track TOS thinks each drive's head is on, or -1 if it doesn't know.
	tosTrack [floppy.DriveCount]int

	// DMA direction bit of the mode register for the current operation.
	dmaDirection uint16
}

// New makes a machine and does a cold reset.
func New(config Config) *Machine {
	m := &Machine{
		config: config,
		ram:    make([]byte, config.RAMSize),
		Drives: floppy.NewDrives(),
	}
	log.Debugf("Memory has %d bytes", len(m.ram))

	m.FDC = fdc.New(config.FDC, m.events.Timer(fdcEvent), m, m.Drives, m)
	m.Drives.OnChange(m.FDC.DiskChanged)

	m.Reset(true)

	return m
}

// Reset the machine, optionally to power-on state.
func (m *Machine) Reset(powerOn bool) {
	m.FDC.Reset(powerOn)
	m.resetPSG()
	m.resetMFP()

	for i := range m.tosTrack {
		m.tosTrack[i] = -1
	}

	if powerOn {
		for i := range m.ram {
			m.ram[i] = 0
		}
	}
}

// Insert puts a disk image in a drive.
func (m *Machine) Insert(drive int, img *floppy.Image) error {
	if err := m.Drives.Insert(drive, img); err != nil {
		return err
	}
	m.tosTrack[drive] = -1

	return nil
}

// Clock returns the number of CPU cycles since boot.
func (m *Machine) Clock() uint64 {
	return m.events.Clock()
}

// Run lets cycles of CPU time pass.
func (m *Machine) Run(cycles uint64) {
	m.events.Run(cycles)
}

// Runs until done returns true or limit cycles have passed. Returns whether
// done returned true.
func (m *Machine) runUntil(done func() bool, limit uint64) bool {
	return m.events.RunUntil(done, limit)
}
