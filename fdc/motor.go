// Copyright 2013 Lawrence Kesteloot

package fdc

import (
	log "github.com/sirupsen/logrus"
)

// Switch the motor on for a new command. Returns whether the command has to
// wait for the motor to spin up, which it does unless the motor was already
// on or the command disabled spin-up.
func (c *Controller) startMotor() bool {
	spinUp := false
	if c.command&BitSpinUpOff == 0 && c.status&StatusMotorOn == 0 {
		c.status &^= StatusSpinUp
		spinUp = true
	}

	c.status |= StatusMotorOn
	c.spinDrive()

	return spinUp
}

// Start the command drive's disk turning. Index pulses start from now.
func (c *Controller) spinDrive() {
	d := c.commandDrive()
	if d == nil || d.spinning || !c.disks.Inserted(c.cmd.drive) {
		return
	}

	d.spinning = true
	d.indexClock = c.phaseClock
}

// Motor cooldown that runs after every command.
func (c *Controller) advanceMotorStop() int {
	switch c.cmd.phase {
	case phaseMotorStopWait:
		c.cmd.phase = phaseMotorStopDone
		return c.untilIndexPulses(motorOffPulses)

	default:
		c.status &^= StatusMotorOn | StatusSpinUp
		for i := range c.drives {
			c.drives[i].spinning = false
			c.drives[i].indexClock = 0
		}
		c.cmd.kind = cmdNone
		c.cmd.phase = phaseNone

		log.Trace("fdc motor off")
		return 0
	}
}
