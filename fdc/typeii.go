// Copyright 2013 Lawrence Kesteloot

package fdc

import (
	log "github.com/sirupsen/logrus"
)

// Type II commands read and write sectors. Sector data goes through the DMA
// in 16 byte bursts, one burst for every 16 bytes that pass under the head.

func (c *Controller) startTypeII(kind commandKind) int {
	c.statusTypeI = false
	c.status &^= StatusDRQ | StatusLostData | StatusCRCError | StatusRNF |
		StatusRecordType | StatusWriteProtect
	c.status |= StatusBusy

	c.begin(kind, 2)

	return typeIIPrepareCycles
}

// Motor, spin-up and head settle, common to Type II and III. Returns whether
// the caller should wait delay cycles before going on.
func (c *Controller) advanceStart(next phase) (int, bool) {
	switch c.cmd.phase {
	case phaseMotorOn:
		c.cmd.phase = phaseSpinUp
		if c.cmd.spinUp {
			return c.untilIndexPulses(spinUpPulses), true
		}

	case phaseSpinUp:
		c.cmd.phase = phaseHeadLoad

	case phaseHeadLoad:
		c.cmd.phase = next
		if c.command&BitHeadLoad != 0 {
			return headSettleCycles, true
		}
	}

	return 0, false
}

func (c *Controller) advanceReadSectors() int {
	for {
		switch c.cmd.phase {
		case phaseMotorOn, phaseSpinUp, phaseHeadLoad:
			if delay, wait := c.advanceStart(phaseFindSector); wait {
				return delay
			}

		case phaseFindSector:
			if !c.sectorOnTrack() {
				c.cmd.phase = phaseRecordNotFound
				return c.untilIndexPulses(searchPulses)
			}
			c.cmd.phase = phaseTransferData
			return c.untilIDField(int(c.sector), c.sectorsPerTrack()) + transferCycles(dataGapBytes)

		case phaseTransferData:
			buf, err := c.disks.ReadSector(c.cmd.drive, c.headTrack(), c.cmd.side, int(c.sector))
			if err != nil {
				log.WithError(err).Debug("fdc read sector")
				c.cmd.phase = phaseRecordNotFound
				return c.untilIndexPulses(searchPulses)
			}
			c.dma.beginTransferWindow()
			c.dma.append(buf)
			c.status &^= StatusRecordType
			c.cmd.phase = phaseTransferDMA
			return transferCycles(dmaBurstBytes)

		case phaseTransferDMA:
			if c.dma.drainOneBurst(c.memory) == burstMore {
				return transferCycles(dmaBurstBytes)
			}
			c.cmd.phase = phaseCRC
			return transferCycles(2)

		case phaseCRC:
			// Sectors from an image never have a CRC error.
			if c.cmd.kind == cmdReadMultipleSectors {
				c.sector++
				c.cmd.phase = phaseFindSector
				break
			}
			c.cmd.phase = phaseComplete
			return completeCycles

		case phaseRecordNotFound:
			c.status |= StatusRNF
			c.cmd.phase = phaseComplete

		default:
			return c.completeCommon(true)
		}
	}
}

func (c *Controller) advanceWriteSectors() int {
	for {
		switch c.cmd.phase {
		case phaseMotorOn:
			if c.diskReady() && c.disks.WriteProtected(c.cmd.drive) {
				c.status |= StatusWriteProtect
				c.cmd.phase = phaseComplete
				return completeCycles
			}
			if delay, wait := c.advanceStart(phaseFindSector); wait {
				return delay
			}

		case phaseSpinUp, phaseHeadLoad:
			if delay, wait := c.advanceStart(phaseFindSector); wait {
				return delay
			}

		case phaseFindSector:
			if !c.sectorOnTrack() {
				c.cmd.phase = phaseRecordNotFound
				return c.untilIndexPulses(searchPulses)
			}
			if c.command&BitDeletedMark != 0 {
				log.Debug("fdc deleted data mark written as a normal one")
			}
			c.dma.discard()
			c.cmd.remaining = dmaSectorBytes
			c.cmd.phase = phaseTransferDMA
			return c.untilIDField(int(c.sector), c.sectorsPerTrack()) + transferCycles(dataGapBytes)

		case phaseTransferDMA:
			c.dma.fillOneBurst(c.memory)
			c.cmd.remaining -= dmaBurstBytes
			if c.cmd.remaining <= 0 {
				c.cmd.phase = phaseTransferData
			}
			return transferCycles(dmaBurstBytes)

		case phaseTransferData:
			buf := c.dma.take(dmaSectorBytes)
			err := c.disks.WriteSector(c.cmd.drive, c.headTrack(), c.cmd.side, int(c.sector), buf)
			if err != nil {
				log.WithError(err).Debug("fdc write sector")
				c.cmd.phase = phaseRecordNotFound
				return c.untilIndexPulses(searchPulses)
			}
			c.status &^= StatusRecordType
			c.cmd.phase = phaseCRC
			return transferCycles(2)

		case phaseCRC:
			if c.cmd.kind == cmdWriteMultipleSectors {
				c.sector++
				c.cmd.phase = phaseFindSector
				break
			}
			c.cmd.phase = phaseComplete
			return completeCycles

		case phaseRecordNotFound:
			c.status |= StatusRNF
			c.cmd.phase = phaseComplete

		default:
			return c.completeCommon(true)
		}
	}
}

// Whether an ID field on the track under the head matches the track and
// sector registers.
func (c *Controller) sectorOnTrack() bool {
	if !c.diskReady() || int(c.track) != c.headTrack() {
		return false
	}

	return c.sector >= 1 && int(c.sector) <= c.sectorsPerTrack()
}

// Cylinder the command's drive head is on. Images are indexed by it, not by
// the track register.
func (c *Controller) headTrack() int {
	if d := c.commandDrive(); d != nil {
		return d.headTrack
	}

	return 0
}

func (c *Controller) sectorsPerTrack() int {
	if !c.diskReady() {
		return 0
	}

	return c.disks.SectorsPerTrack(c.cmd.drive)
}
