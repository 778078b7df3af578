// Copyright 2013 Lawrence Kesteloot

// Package fdc emulates the Atari ST's floppy disk controller, a WD1772, and
// the DMA chip that moves its data to and from memory.
//
// Commands don't complete when they're written. Each one is a small state
// machine that moves to its next phase every time its timer fires, the way
// the real chip only gets to a sector once the disk has turned far enough.
// The host drives time through the Timer it passes to New.
package fdc

import (
	log "github.com/sirupsen/logrus"
)

// Number of floppy drives on the ST.
const driveCount = 2

// MaxTrack is the highest cylinder the head can be stepped to.
const MaxTrack = 90

// Registers, as selected by bits 1 and 2 of the DMA mode register.
const (
	RegCommand = 0 // Status when read.
	RegTrack   = 1
	RegSector  = 2
	RegData    = 3
)

// Status register bits. Bits 1, 2 and 5 mean something different after a
// Type I command than after a Type II or III command.
const (
	StatusBusy         = 0x01
	StatusIndex        = 0x02 // Type I.
	StatusDRQ          = 0x02 // Type II/III.
	StatusTrack0       = 0x04 // Type I.
	StatusLostData     = 0x04 // Type II/III.
	StatusCRCError     = 0x08
	StatusRNF          = 0x10
	StatusSpinUp       = 0x20 // Type I.
	StatusRecordType   = 0x20 // Type II/III.
	StatusWriteProtect = 0x40
	StatusMotorOn      = 0x80
)

// Command bytes, with their modifier bits cleared.
const (
	CmdRestore        = 0x00
	CmdSeek           = 0x10
	CmdStep           = 0x20
	CmdStepIn         = 0x40
	CmdStepOut        = 0x60
	CmdReadSector     = 0x80
	CmdWriteSector    = 0xA0
	CmdReadAddress    = 0xC0
	CmdForceInterrupt = 0xD0
	CmdReadTrack      = 0xE0
	CmdWriteTrack     = 0xF0
)

// Command modifier bits.
const (
	BitStepRate    = 0x03 // Type I.
	BitVerify      = 0x04 // Type I.
	BitHeadLoad    = 0x04 // Type II/III: wait for the head to settle.
	BitSpinUpOff   = 0x08 // Don't wait for the motor to spin up.
	BitUpdateTrack = 0x10 // Step commands: update the track register.
	BitMultiple    = 0x10 // Type II: read or write up to the end of the track.
	BitDeletedMark = 0x01 // Write sector: write a deleted data mark.

	IntImmediate  = 0x08 // Force interrupt: raise the IRQ now.
	IntIndexPulse = 0x04 // Force interrupt: raise the IRQ at each index pulse.
)

// Timer is the scheduler the controller runs its phases on. The controller
// never needs more than one callback pending, so scheduling a new one
// replaces the previous one.
type Timer interface {
	Clock() uint64
	ScheduleAfter(cycles uint64, callback func())
	Cancel()
}

// Interrupts receives the controller's INTRQ line. On the ST it's wired to
// the MFP's GPIP bit 5.
type Interrupts interface {
	FDCInterrupt(active bool)
}

// Disks is the disk image side of the drives. Drives are 0 (A) and 1 (B),
// sectors are numbered from 1.
type Disks interface {
	Inserted(drive int) bool
	WriteProtected(drive int) bool
	SectorsPerTrack(drive int) int
	ReadSector(drive, track, side, sector int) ([]byte, error)
	WriteSector(drive, track, side, sector int, data []byte) error
}

// Memory is where the DMA chip reads and writes.
type Memory interface {
	ReadBlock(addr uint32, data []byte)
	WriteBlock(addr uint32, data []byte)
}

// Config is the controller's part of the machine configuration.
type Config struct {
	// Divide all delays by 10.
	FastFloppy bool

	// Which drives are connected.
	DriveEnabled [driveCount]bool
}

// DefaultConfig returns a configuration with both drives connected and real
// timings.
func DefaultConfig() Config {
	return Config{
		DriveEnabled: [driveCount]bool{true, true},
	}
}

type drive struct {
	// Cylinder the head is on.
	headTrack int

	// Whether the disk is turning, and the clock of one of its index pulses.
	spinning   bool
	indexClock uint64

	// Counts ID fields returned by Read Address.
	nextID int
}

// Controller is the WD1772 and the DMA chip in front of it.
type Controller struct {
	config Config
	timer  Timer
	irq    Interrupts
	disks  Disks
	memory Memory

	// Registers.
	status        byte
	track         byte
	sector        byte
	data          byte
	command       byte
	stepDirection int

	// Whether status reads show the Type I meaning of the bits.
	statusTypeI bool

	// Force interrupt condition bits of the last Type IV command.
	interruptCond byte

	// INTRQ, and whether it was forced by a Type IV command.
	irqActive bool
	irqForced bool

	// Drive and side selected through the PSG. Drive is -1 when none is.
	selectedDrive int
	selectedSide  int

	// The command being run, and the clock its current phase is due at.
	cmd        execution
	phaseClock uint64

	drives [driveCount]drive
	dma    dma
}

// New makes a controller and does a cold reset.
func New(config Config, timer Timer, irq Interrupts, disks Disks, memory Memory) *Controller {
	c := &Controller{
		config:        config,
		timer:         timer,
		irq:           irq,
		disks:         disks,
		memory:        memory,
		selectedDrive: -1,
	}

	c.Reset(true)

	return c
}

// Reset puts the controller and the DMA chip in their power-up state. A warm
// reset keeps the track and data registers.
func (c *Controller) Reset(cold bool) {
	c.timer.Cancel()

	c.command = 0
	c.status = 0
	c.sector = 1
	c.statusTypeI = false
	c.stepDirection = 1
	c.cmd = execution{}
	c.interruptCond = 0

	if cold {
		c.track = 0
		c.data = 0
		c.dma.recent = 0
		for i := range c.drives {
			c.drives[i] = drive{}
		}
	}

	for i := range c.drives {
		c.drives[i].spinning = false
		c.drives[i].indexClock = 0
	}

	c.irqForced = false
	c.irqActive = false
	c.irq.FDCInterrupt(false)

	c.dma.status = dmaStatusOK
	c.dma.mode = 0
	c.dma.reset()

	log.WithField("cold", cold).Debug("fdc reset")
}

// SelectDrive latches the drive and side lines. Drive is -1 when neither
// drive is selected.
func (c *Controller) SelectDrive(drive, side int) {
	if drive != c.selectedDrive || side != c.selectedSide {
		log.WithFields(log.Fields{
			"drive": drive,
			"side":  side,
		}).Trace("fdc select")
	}

	c.selectedDrive = drive
	c.selectedSide = side
}

// DiskChanged tells the controller that the disk in drive was inserted or
// ejected.
func (c *Controller) DiskChanged(drive int) {
	if drive >= 0 && drive < driveCount {
		c.drives[drive].nextID = 0
		c.drives[drive].spinning = false
	}
}

// HeadTrack returns the cylinder the drive's head is on.
func (c *Controller) HeadTrack(drive int) int {
	return c.drives[drive].headTrack
}

// SetHeadTrack moves the drive's head without stepping, as if the drive had
// been left there.
func (c *Controller) SetHeadTrack(drive, track int) {
	c.drives[drive].headTrack = track
}

// Busy returns whether a command is running.
func (c *Controller) Busy() bool {
	return c.status&StatusBusy != 0
}

// Idle returns whether no timer is needed anymore, including the motor
// cooldown after a command.
func (c *Controller) Idle() bool {
	return c.cmd.kind == cmdNone
}

// IRQ returns the state of the INTRQ line.
func (c *Controller) IRQ() bool {
	return c.irqActive
}

// ReadRegister reads a register the way the CPU does through $FF8604.
func (c *Controller) ReadRegister(reg int) byte {
	switch reg {
	case RegCommand:
		return c.ReadStatus()
	case RegTrack:
		return c.track
	case RegSector:
		return c.sector
	default:
		return c.data
	}
}

// WriteRegister writes a register the way the CPU does through $FF8604.
// The track and sector registers can't be written while a command runs.
func (c *Controller) WriteRegister(reg int, value byte) {
	switch reg {
	case RegCommand:
		c.WriteCommand(value)
	case RegTrack:
		if c.Busy() {
			log.Debugf("fdc track register write %d ignored while busy", value)
			return
		}
		c.track = value
	case RegSector:
		if c.Busy() {
			log.Debugf("fdc sector register write %d ignored while busy", value)
			return
		}
		c.sector = value
	default:
		c.data = value
	}
}

// ReadStatus returns the status register. After a Type I command the index,
// track 0 and write protect bits show the drive's live signals. Reading the
// status clears the IRQ unless it was forced by an immediate interrupt.
func (c *Controller) ReadStatus() byte {
	if c.statusTypeI {
		c.updateTypeIStatus()
	}

	status := c.status

	c.releaseForcedIRQ()
	c.clearIRQ()

	return status
}

func (c *Controller) updateTypeIStatus() {
	d := c.selected()
	if d == nil {
		c.status &^= StatusTrack0 | StatusIndex | StatusWriteProtect
		return
	}

	if d.headTrack == 0 {
		c.status |= StatusTrack0
	} else {
		c.status &^= StatusTrack0
	}

	if c.indexPulseActive(d, c.timer.Clock()) {
		c.status |= StatusIndex
	} else {
		c.status &^= StatusIndex
	}

	c.status &^= StatusCRCError

	if !c.disks.Inserted(c.selectedDrive) || c.disks.WriteProtected(c.selectedDrive) {
		c.status |= StatusWriteProtect
	} else {
		c.status &^= StatusWriteProtect
	}
}

// Selected drive, or nil if none is selected or it's not connected.
func (c *Controller) selected() *drive {
	return c.driveAt(c.selectedDrive)
}

// Drive the running command was started on.
func (c *Controller) commandDrive() *drive {
	return c.driveAt(c.cmd.drive)
}

func (c *Controller) driveAt(n int) *drive {
	if n < 0 || n >= driveCount || !c.config.DriveEnabled[n] {
		return nil
	}

	return &c.drives[n]
}

// Whether the command's drive is connected and has a disk in it.
func (c *Controller) diskReady() bool {
	return c.commandDrive() != nil && c.disks.Inserted(c.cmd.drive)
}

func (c *Controller) setIRQ(forced bool) {
	if forced {
		c.irqForced = true
	}

	if !c.irqActive {
		c.irqActive = true
		c.irq.FDCInterrupt(true)
	}
}

// A forced IRQ stays up until its condition is cleared.
func (c *Controller) clearIRQ() {
	if c.irqForced || !c.irqActive {
		return
	}

	c.irqActive = false
	c.irq.FDCInterrupt(false)
}

func (c *Controller) releaseForcedIRQ() {
	if c.irqForced && c.interruptCond&IntImmediate == 0 {
		c.irqForced = false
	}
}
