// Copyright 2013 Lawrence Kesteloot

package fdc

// Type I commands move the head: Restore, Seek, Step, Step In, Step Out.

func (c *Controller) startTypeI(kind commandKind) int {
	c.statusTypeI = true
	c.status &^= StatusIndex | StatusCRCError | StatusRNF
	c.status |= StatusBusy

	c.begin(kind, 1)

	return typeIPrepareCycles
}

func (c *Controller) advanceTypeI() int {
	for {
		switch c.cmd.phase {
		case phaseMotorOn:
			c.cmd.phase = phaseSpinUp
			if c.cmd.spinUp {
				return c.untilIndexPulses(spinUpPulses)
			}

		case phaseSpinUp:
			if c.cmd.spinUp {
				c.status |= StatusSpinUp
			}
			switch c.cmd.kind {
			case cmdRestore:
				c.cmd.phase = phaseRestoreStart
			case cmdSeek:
				c.cmd.phase = phaseSeekStep
			default:
				c.cmd.phase = phaseStepOnce
			}

		case phaseRestoreStart:
			c.track = 0xFF
			c.cmd.phase = phaseRestoreStep

		case phaseRestoreStep:
			d := c.commandDrive()
			if d != nil && d.headTrack == 0 {
				c.track = 0
				c.cmd.phase = phaseVerifySettle
				break
			}
			if c.track == 0 {
				// 255 steps and still no track 0.
				c.cmd.phase = phaseRecordNotFound
				break
			}
			c.stepDirection = -1
			c.track--
			c.stepHead(-1)
			return stepCycles(c.command)

		case phaseSeekStep:
			if c.track == c.data {
				c.cmd.phase = phaseVerifySettle
				break
			}
			if c.data > c.track {
				c.stepDirection = 1
			} else {
				c.stepDirection = -1
			}
			c.track = byte(int(c.track) + c.stepDirection)
			c.stepHead(c.stepDirection)
			return stepCycles(c.command)

		case phaseStepOnce:
			switch c.cmd.kind {
			case cmdStepIn:
				c.stepDirection = 1
			case cmdStepOut:
				c.stepDirection = -1
			}
			if c.command&BitUpdateTrack != 0 {
				c.track = byte(int(c.track) + c.stepDirection)
			}
			c.cmd.phase = phaseVerifySettle
			if c.stepHead(c.stepDirection) {
				return stepCycles(c.command)
			}

		case phaseVerifySettle:
			c.updateTrack0()
			if c.command&BitVerify == 0 {
				c.cmd.phase = phaseComplete
				break
			}
			c.cmd.phase = phaseVerifyID
			return headSettleCycles

		case phaseVerifyID:
			// An ST image has an ID field for every sector of every track
			// it holds, so verify only fails without a disk.
			if !c.diskReady() {
				c.cmd.phase = phaseRecordNotFound
				return c.untilIndexPulses(searchPulses)
			}
			c.cmd.phase = phaseComplete
			return c.untilIDField(c.nextIDSector(), c.sectorsPerTrack())

		case phaseRecordNotFound:
			c.status |= StatusRNF
			c.cmd.phase = phaseComplete

		default:
			return c.completeCommon(true)
		}
	}
}

// Send one step pulse to the command's drive. Returns false if the head was
// already at the end of its travel and didn't move, in which case the step
// takes no time.
func (c *Controller) stepHead(direction int) bool {
	d := c.commandDrive()
	if d == nil {
		return true
	}

	if direction < 0 && d.headTrack == 0 {
		return false
	}
	if direction > 0 && d.headTrack >= MaxTrack {
		return false
	}

	d.headTrack += direction
	c.updateTrack0()

	return true
}

func (c *Controller) updateTrack0() {
	if d := c.commandDrive(); d != nil && d.headTrack == 0 {
		c.status |= StatusTrack0
	} else {
		c.status &^= StatusTrack0
	}
}
