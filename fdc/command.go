// Copyright 2013 Lawrence Kesteloot

package fdc

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

type commandKind int

const (
	cmdNone commandKind = iota
	cmdRestore
	cmdSeek
	cmdStep
	cmdStepIn
	cmdStepOut
	cmdReadSectors
	cmdReadMultipleSectors
	cmdWriteSectors
	cmdWriteMultipleSectors
	cmdReadAddress
	cmdReadTrack
	cmdWriteTrack

	// Not a real command: runs after every command to switch the motor off.
	cmdMotorStop
)

var commandNames = [...]string{
	"none",
	"restore",
	"seek",
	"step",
	"step in",
	"step out",
	"read sectors",
	"read multiple sectors",
	"write sectors",
	"write multiple sectors",
	"read address",
	"read track",
	"write track",
	"motor stop",
}

func (k commandKind) String() string {
	if int(k) < len(commandNames) {
		return commandNames[k]
	}

	return fmt.Sprintf("command %d", int(k))
}

type phase int

const (
	phaseNone phase = iota

	// Common start of Type I, II and III commands.
	phaseMotorOn
	phaseSpinUp
	phaseHeadLoad

	// Type I.
	phaseRestoreStart
	phaseRestoreStep
	phaseSeekStep
	phaseStepOnce
	phaseVerifySettle
	phaseVerifyID

	// Type II.
	phaseFindSector
	phaseTransferData
	phaseTransferDMA
	phaseCRC

	// Type III.
	phaseReadAddressID
	phaseReadTrackIndex
	phaseReadTrackBuild
	phaseWriteTrackIndex

	// Common end.
	phaseRecordNotFound
	phaseComplete
	phaseMotorStopWait
	phaseMotorStopDone
)

// State of the running command. Drive and side are latched when the command
// starts, so reselecting through the PSG doesn't move a running command.
type execution struct {
	kind  commandKind
	phase phase

	// 1 to 4.
	class int

	drive int
	side  int

	// Whether the first phase has to wait for the motor to spin up.
	spinUp bool

	// Bytes of the sector being written still to come from memory.
	remaining int

	// Sector of the ID field Read Address is waiting for.
	idSector int

	// Clock the pending phase is due at.
	due uint64
}

// Class and kind of a command byte.
func decodeCommand(cmd byte) (int, commandKind) {
	switch {
	case cmd&0xF0 == CmdRestore:
		return 1, cmdRestore
	case cmd&0xF0 == CmdSeek:
		return 1, cmdSeek
	case cmd&0xE0 == CmdStep:
		return 1, cmdStep
	case cmd&0xE0 == CmdStepIn:
		return 1, cmdStepIn
	case cmd&0xE0 == CmdStepOut:
		return 1, cmdStepOut
	case cmd&0xE0 == CmdReadSector && cmd&BitMultiple != 0:
		return 2, cmdReadMultipleSectors
	case cmd&0xE0 == CmdReadSector:
		return 2, cmdReadSectors
	case cmd&0xE0 == CmdWriteSector && cmd&BitMultiple != 0:
		return 2, cmdWriteMultipleSectors
	case cmd&0xE0 == CmdWriteSector:
		return 2, cmdWriteSectors
	case cmd&0xF0 == CmdReadAddress:
		return 3, cmdReadAddress
	case cmd&0xF0 == CmdForceInterrupt:
		return 4, cmdNone
	case cmd&0xF0 == CmdReadTrack:
		return 3, cmdReadTrack
	default:
		return 3, cmdWriteTrack
	}
}

// WriteCommand starts a command. Only Force Interrupt is accepted while
// another command is running.
func (c *Controller) WriteCommand(cmd byte) {
	class, kind := decodeCommand(cmd)

	if c.Busy() && class != 4 {
		log.Debugf("fdc command %02X ignored, %s is running", cmd, c.cmd.kind)
		return
	}

	c.command = cmd
	c.phaseClock = c.timer.Clock()

	// The first command after a forced interrupt clears its condition, the
	// second one clears the IRQ.
	c.releaseForcedIRQ()
	if class != 4 {
		c.clearIRQ()
	}
	c.interruptCond = 0

	var delay int
	switch class {
	case 1:
		delay = c.startTypeI(kind)
	case 2:
		delay = c.startTypeII(kind)
	case 3:
		delay = c.startTypeIII(kind)
	default:
		delay = c.forceInterrupt()
	}

	name := kind.String()
	if class == 4 {
		name = "force interrupt"
	}
	log.WithFields(log.Fields{
		"drive":  c.cmd.drive,
		"side":   c.cmd.side,
		"track":  c.track,
		"sector": c.sector,
		"head":   c.headTrackOf(c.cmd.drive),
	}).Debugf("fdc command %02X (%s)", cmd, name)

	c.startTimer(delay)
}

func (c *Controller) headTrackOf(drive int) int {
	if d := c.driveAt(drive); d != nil {
		return d.headTrack
	}

	return -1
}

// Set up the execution for a Type I, II or III command and start the motor.
func (c *Controller) begin(kind commandKind, class int) {
	c.cmd = execution{
		kind:  kind,
		phase: phaseMotorOn,
		class: class,
		drive: c.selectedDrive,
		side:  c.selectedSide,
	}

	c.cmd.spinUp = c.startMotor()
}

// Schedule the next phase fdcCycles after the current one was due. A phase
// that ran late is caught up by shortening the wait.
func (c *Controller) startTimer(fdcCycles int) {
	due := c.phaseClock + c.cpuCycles(fdcCycles)
	c.cmd.due = due

	var after uint64
	if now := c.timer.Clock(); due > now {
		after = due - now
	}

	c.timer.ScheduleAfter(after, c.update)
}

// Timer callback: run the next phase of the command.
func (c *Controller) update() {
	c.phaseClock = c.cmd.due

	delay := c.advance()
	if c.cmd.kind == cmdNone {
		return
	}

	c.startTimer(delay)
}

// Run the current phase of the command and return the delay to the next one,
// in FDC cycles.
func (c *Controller) advance() int {
	log.WithFields(log.Fields{
		"command": c.cmd.kind,
		"phase":   c.cmd.phase,
	}).Trace("fdc phase")

	switch c.cmd.kind {
	case cmdRestore, cmdSeek, cmdStep, cmdStepIn, cmdStepOut:
		return c.advanceTypeI()
	case cmdReadSectors, cmdReadMultipleSectors:
		return c.advanceReadSectors()
	case cmdWriteSectors, cmdWriteMultipleSectors:
		return c.advanceWriteSectors()
	case cmdReadAddress:
		return c.advanceReadAddress()
	case cmdReadTrack:
		return c.advanceReadTrack()
	case cmdWriteTrack:
		return c.advanceWriteTrack()
	case cmdMotorStop:
		return c.advanceMotorStop()
	}

	return 0
}

// End of every command: clear busy, maybe raise the IRQ, and start the motor
// cooldown.
func (c *Controller) completeCommon(raiseIRQ bool) int {
	log.WithFields(log.Fields{
		"command": c.cmd.kind,
		"status":  fmt.Sprintf("%02X", c.status),
		"track":   c.track,
		"sector":  c.sector,
	}).Debug("fdc command complete")

	c.status &^= StatusBusy
	if raiseIRQ {
		c.setIRQ(false)
	}

	c.cmd.kind = cmdMotorStop
	c.cmd.phase = phaseMotorStopWait

	return 0
}

// Type IV: stop whatever is running. With no command running the status
// switches to its Type I meaning.
func (c *Controller) forceInterrupt() int {
	c.timer.Cancel()

	// Bytes the head never reached don't exist yet.
	if c.Busy() && (c.cmd.class == 2 || c.cmd.class == 3) {
		c.dma.discard()
	}

	c.status &^= StatusLostData
	if !c.Busy() {
		c.statusTypeI = true
		c.status &^= StatusSpinUp
		c.status |= StatusMotorOn

		if c.cmd.kind == cmdNone {
			c.cmd.drive = c.selectedDrive
			c.cmd.side = c.selectedSide
		}
		c.spinDrive()
	}

	c.interruptCond = c.command & 0x0F
	if c.interruptCond&IntImmediate != 0 {
		c.setIRQ(true)
	} else {
		c.clearIRQ()
	}

	if c.interruptCond&IntIndexPulse != 0 {
		log.Debug("fdc index pulse interrupt not emulated")
	}

	c.completeCommon(false)
	c.cmd.class = 4

	return typeIVPrepareCycles
}
