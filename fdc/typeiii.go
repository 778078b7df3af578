// Copyright 2013 Lawrence Kesteloot

package fdc

// Type III commands work on whole tracks: Read Address, Read Track and
// Write Track. Images don't store the track layout, so it's rebuilt from the
// standard layout TOS formats with.

// Standard track layout, in bytes.
const (
	gap1Bytes  = 60 // After the index pulse.
	gap2Bytes  = 12 // Zeros before each ID field.
	gap3aBytes = 22 // Between ID field and data field.
	gap3bBytes = 12
	gap4Bytes  = 40 // After each data field.

	// 3 x A1, FE, track, side, sector, length, CRC.
	idFieldBytes = 10

	// Bytes from the end of an ID field to the start of its data.
	dataGapBytes = gap3aBytes + gap3bBytes + 4

	rawSectorBytes = gap2Bytes + idFieldBytes + dataGapBytes + dmaSectorBytes + 2 + gap4Bytes

	// Length code for 512 byte sectors.
	sectorLengthCode = 2
)

// Offset from the index pulse of the first A1 of a sector's ID field.
func idFieldOffset(sector int) int {
	return gap1Bytes + (sector-1)*rawSectorBytes + gap2Bytes
}

// The six bytes Read Address returns for an ID field: track, side, sector,
// length and the CRC, which covers the A1 sync bytes and the FE mark too.
func idField(track, side, sector int) []byte {
	id := []byte{0xA1, 0xA1, 0xA1, 0xFE, byte(track), byte(side), byte(sector), sectorLengthCode}
	crc := CRC16(id)

	return append(id[4:], byte(crc>>8), byte(crc))
}

func (c *Controller) startTypeIII(kind commandKind) int {
	c.statusTypeI = false
	c.status &^= StatusDRQ | StatusLostData | StatusCRCError | StatusRNF |
		StatusRecordType | StatusWriteProtect
	c.status |= StatusBusy

	c.begin(kind, 3)

	return typeIIIPrepareCycles
}

// Sector whose ID field the next Read Address will find.
func (c *Controller) nextIDSector() int {
	d := c.commandDrive()
	spt := c.sectorsPerTrack()
	if d == nil || spt == 0 {
		return 1
	}

	return d.nextID%spt + 1
}

func (c *Controller) advanceReadAddress() int {
	for {
		switch c.cmd.phase {
		case phaseMotorOn, phaseSpinUp, phaseHeadLoad:
			if delay, wait := c.advanceStart(phaseReadAddressID); wait {
				return delay
			}

		case phaseReadAddressID:
			if !c.diskReady() || c.sectorsPerTrack() == 0 {
				c.cmd.phase = phaseRecordNotFound
				return c.untilIndexPulses(searchPulses)
			}
			c.cmd.idSector = c.nextIDSector()
			c.commandDrive().nextID++
			c.cmd.phase = phaseTransferData
			return c.untilIDField(c.cmd.idSector, c.sectorsPerTrack())

		case phaseTransferData:
			c.dma.beginTransferWindow()
			c.dma.append(idField(c.headTrack(), c.cmd.side, c.cmd.idSector))

			// The WD1772 copies the track number of the ID field into
			// the sector register.
			c.sector = byte(c.headTrack())

			c.cmd.phase = phaseTransferDMA
			return 0

		case phaseTransferDMA:
			if c.dma.drainOneBurst(c.memory) == burstMore {
				return transferCycles(dmaBurstBytes)
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

func (c *Controller) advanceReadTrack() int {
	for {
		switch c.cmd.phase {
		case phaseMotorOn, phaseSpinUp, phaseHeadLoad:
			if delay, wait := c.advanceStart(phaseReadTrackIndex); wait {
				return delay
			}

		case phaseReadTrackIndex:
			if !c.diskReady() {
				c.cmd.phase = phaseRecordNotFound
				break
			}
			// The track starts at the index pulse.
			c.cmd.phase = phaseReadTrackBuild
			return c.untilIndexPulses(1)

		case phaseReadTrackBuild:
			c.dma.beginTransferWindow()
			c.dma.append(c.buildTrack())
			c.cmd.phase = phaseTransferDMA
			return transferCycles(dmaBurstBytes)

		case phaseTransferDMA:
			if c.dma.drainOneBurst(c.memory) == burstMore {
				return transferCycles(dmaBurstBytes)
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

// Formatting isn't supported: images have no way to store a track written
// with a non-standard layout.
func (c *Controller) advanceWriteTrack() int {
	for {
		switch c.cmd.phase {
		case phaseMotorOn:
			if c.diskReady() && c.disks.WriteProtected(c.cmd.drive) {
				c.status |= StatusWriteProtect | StatusRNF
				c.cmd.phase = phaseComplete
				return completeCycles
			}
			if delay, wait := c.advanceStart(phaseWriteTrackIndex); wait {
				return delay
			}

		case phaseSpinUp, phaseHeadLoad:
			if delay, wait := c.advanceStart(phaseWriteTrackIndex); wait {
				return delay
			}

		case phaseWriteTrackIndex:
			c.cmd.phase = phaseRecordNotFound
			return c.untilIndexPulses(1)

		case phaseRecordNotFound:
			c.status |= StatusRNF
			c.cmd.phase = phaseComplete

		default:
			return c.completeCommon(true)
		}
	}
}

// The bytes of the track under the head, from one index pulse to the next.
// Sectors the image can't provide are filled with zeros.
func (c *Controller) buildTrack() []byte {
	spt := c.sectorsPerTrack()
	track := c.headTrack()
	side := c.cmd.side

	buf := make([]byte, 0, trackLength(spt))
	fill := func(b byte, n int) {
		for i := 0; i < n; i++ {
			buf = append(buf, b)
		}
	}

	fill(0x4E, gap1Bytes)

	for sector := 1; sector <= spt; sector++ {
		fill(0x00, gap2Bytes)
		fill(0xA1, 3)
		buf = append(buf, 0xFE)
		buf = append(buf, idField(track, side, sector)...)

		fill(0x4E, gap3aBytes)
		fill(0x00, gap3bBytes)

		data, err := c.disks.ReadSector(c.cmd.drive, track, side, sector)
		if err != nil || len(data) != dmaSectorBytes {
			data = make([]byte, dmaSectorBytes)
		}

		crc := uint16(0xFFFF)
		for _, b := range []byte{0xA1, 0xA1, 0xA1, 0xFB} {
			crc = crcAdd(crc, b)
		}
		for _, b := range data {
			crc = crcAdd(crc, b)
		}

		fill(0xA1, 3)
		buf = append(buf, 0xFB)
		buf = append(buf, data...)
		buf = append(buf, byte(crc>>8), byte(crc))

		fill(0x4E, gap4Bytes)
	}

	fill(0x4E, trackBytes-len(buf))

	return buf
}
