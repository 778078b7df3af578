// Copyright 2012 Lawrence Kesteloot

package machine

// Floppy operations done the way the TOS XBIOS does them: poke the DMA and
// FDC registers, then poll the MFP until the controller interrupts.

import (
	"fmt"
	"strings"

	"stfloppy/fdc"
	"stfloppy/floppy"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// DMA mode register values.
const (
	modeCommand     = 0x080
	modeTrack       = 0x082
	modeSector      = 0x084
	modeData        = 0x086
	modeSectorCount = 0x090
	modeWrite       = 0x100
)

const (
	// Step rate bits TOS uses: 3 ms.
	tosStepRate = 3

	// Give up on a command after this many CPU cycles.
	commandTimeout = 3 * fdc.CPUHz

	// DMA sectors to allow for a Read Track.
	trackDMASectors = 16
)

// ErrTimeout is returned when the controller never interrupts.
var ErrTimeout = errors.New("floppy controller timed out")

// StatusError is a command that finished with error bits in the status
// register.
type StatusError struct {
	Op     string
	Drive  int
	Track  int
	Side   int
	Sector int
	Status byte
}

func (e *StatusError) Error() string {
	var problems []string
	if e.Status&fdc.StatusWriteProtect != 0 {
		problems = append(problems, "write protected")
	}
	if e.Status&fdc.StatusRNF != 0 {
		problems = append(problems, "record not found")
	}
	if e.Status&fdc.StatusCRCError != 0 {
		problems = append(problems, "CRC error")
	}
	if e.Status&fdc.StatusLostData != 0 {
		problems = append(problems, "lost data")
	}

	return fmt.Sprintf("%s drive %c track %d side %d sector %d: %s (status %02X)",
		e.Op, 'A'+e.Drive, e.Track, e.Side, e.Sector, strings.Join(problems, ", "), e.Status)
}

// Status bits that mean a Type II or III command failed.
const typeIIErrors = fdc.StatusWriteProtect | fdc.StatusRNF | fdc.StatusCRCError | fdc.StatusLostData

// Floprd reads count sectors starting at sector into RAM at buf, like
// XBIOS 8.
func (m *Machine) Floprd(buf uint32, drive, track, side, sector, count int) error {
	if err := m.checkBuffer(buf, count*floppy.SectorSize); err != nil {
		return err
	}

	for i := 0; i < count; i++ {
		addr := buf + uint32(i*floppy.SectorSize)
		if err := m.transferSector(addr, drive, track, side, sector+i, false); err != nil {
			return err
		}
	}

	return nil
}

// Flopwr writes count sectors starting at sector from RAM at buf, like
// XBIOS 9.
func (m *Machine) Flopwr(buf uint32, drive, track, side, sector, count int) error {
	if err := m.checkBuffer(buf, count*floppy.SectorSize); err != nil {
		return err
	}

	for i := 0; i < count; i++ {
		addr := buf + uint32(i*floppy.SectorSize)
		if err := m.transferSector(addr, drive, track, side, sector+i, true); err != nil {
			return err
		}
	}

	return nil
}

// Flopver reads count sectors starting at sector and returns the ones that
// couldn't be read, like XBIOS 19. The sectors go through the top of RAM.
func (m *Machine) Flopver(drive, track, side, sector, count int) ([]int, error) {
	scratch := uint32(len(m.ram) - floppy.SectorSize)

	var bad []int
	for s := sector; s < sector+count; s++ {
		err := m.transferSector(scratch, drive, track, side, s, false)
		if _, ok := err.(*StatusError); ok {
			bad = append(bad, s)
		} else if err != nil {
			return bad, err
		}
	}

	return bad, nil
}

// ReadTrack reads a whole raw track into RAM at buf and returns it.
func (m *Machine) ReadTrack(buf uint32, drive, track, side int) ([]byte, error) {
	if err := m.checkBuffer(buf, trackDMASectors*floppy.SectorSize); err != nil {
		return nil, err
	}
	if err := m.prepare(drive, track, side); err != nil {
		return nil, err
	}

	m.setDMAAddress(buf)
	m.startDMA(false, trackDMASectors)

	status, err := m.command(fdc.CmdReadTrack)
	if err != nil {
		return nil, err
	}
	if status&typeIIErrors != 0 {
		return nil, &StatusError{"read track", drive, track, side, 0, status}
	}

	return m.dmaResult(buf), nil
}

// ReadAddress runs n Read Address commands, DMAing the ID fields to RAM at
// buf, and returns what reached memory. The DMA only writes whole 16 byte
// bursts, so the last ID fields may still be in its buffer.
func (m *Machine) ReadAddress(buf uint32, drive, track, side, n int) ([]byte, error) {
	sectors := (n*6 + floppy.SectorSize - 1) / floppy.SectorSize
	if err := m.checkBuffer(buf, sectors*floppy.SectorSize); err != nil {
		return nil, err
	}
	if err := m.prepare(drive, track, side); err != nil {
		return nil, err
	}

	m.setDMAAddress(buf)
	m.startDMA(false, sectors)

	for i := 0; i < n; i++ {
		status, err := m.command(fdc.CmdReadAddress)
		if err != nil {
			return nil, err
		}
		if status&typeIIErrors != 0 {
			return nil, &StatusError{"read address", drive, track, side, 0, status}
		}
		log.Debugf("read address %d: sector register %d", i, m.fdcRead(modeSector))
	}

	return m.dmaResult(buf), nil
}

func (m *Machine) transferSector(addr uint32, drive, track, side, sector int, write bool) error {
	if err := m.prepare(drive, track, side); err != nil {
		return err
	}

	m.setDMAAddress(addr)
	m.startDMA(write, 1)
	m.fdcWrite(modeSector, byte(sector))

	op, cmd := "read", byte(fdc.CmdReadSector)
	if write {
		op, cmd = "write", fdc.CmdWriteSector
	}

	status, err := m.command(cmd)
	if err != nil {
		return err
	}
	if status&typeIIErrors != 0 {
		return &StatusError{op, drive, track, side, sector, status}
	}

	return nil
}

func (m *Machine) checkBuffer(buf uint32, size int) error {
	if int(buf)+size > len(m.ram) {
		return errors.Errorf("buffer %06X of %d bytes is past the end of RAM", buf, size)
	}
	return nil
}

// Select the drive and side, and get the head to the track.
func (m *Machine) prepare(drive, track, side int) error {
	if drive < 0 || drive >= floppy.DriveCount {
		return errors.Errorf("no drive %d", drive)
	}
	if track < 0 || track > fdc.MaxTrack {
		return errors.Errorf("no track %d", track)
	}

	m.WriteByte(ioPSGSelect, psgRegPortA)
	m.WriteByte(ioPSGWrite, portASelect(drive, side))
	m.dmaDirection = 0

	if m.tosTrack[drive] < 0 {
		if _, err := m.command(fdc.CmdRestore | tosStepRate); err != nil {
			return err
		}
		m.tosTrack[drive] = 0
	}

	if m.tosTrack[drive] != track {
		m.fdcWrite(modeTrack, byte(m.tosTrack[drive]))
		m.fdcWrite(modeData, byte(track))

		status, err := m.command(fdc.CmdSeek | fdc.BitVerify | tosStepRate)
		if err != nil {
			return err
		}
		if status&fdc.StatusRNF != 0 {
			m.tosTrack[drive] = -1
			return &StatusError{"seek", drive, track, side, 0, status}
		}
		m.tosTrack[drive] = track
	}

	// The track register is shared between the drives.
	m.fdcWrite(modeTrack, byte(track))

	return nil
}

func (m *Machine) setDMAAddress(addr uint32) {
	m.WriteByte(ioDMALow, byte(addr))
	m.WriteByte(ioDMAMid, byte(addr>>8))
	m.WriteByte(ioDMAHigh, byte(addr>>16))
}

// Reset the DMA by toggling the direction bit, and load the sector count.
func (m *Machine) startDMA(write bool, sectors int) {
	if write {
		m.dmaDirection = modeWrite
	} else {
		m.dmaDirection = 0
	}

	m.WriteWord(ioDMAMode, modeSectorCount|m.dmaDirection^modeWrite)
	m.fdcWrite(modeSectorCount, byte(sectors))
}

func (m *Machine) fdcWrite(mode uint16, value byte) {
	m.WriteWord(ioDMAMode, mode|m.dmaDirection)
	m.WriteWord(ioDiskController, uint16(value))
}

func (m *Machine) fdcRead(mode uint16) byte {
	m.WriteWord(ioDMAMode, mode|m.dmaDirection)
	return byte(m.ReadWord(ioDiskController))
}

// Write a command and wait for the interrupt. Returns the status, whose read
// clears the interrupt.
func (m *Machine) command(cmd byte) (byte, error) {
	m.fdcWrite(modeCommand, cmd)

	if !m.runUntil(m.fdcInterrupting, commandTimeout) {
		m.fdcWrite(modeCommand, fdc.CmdForceInterrupt)
		m.fdcRead(modeCommand)
		return 0, errors.Wrapf(ErrTimeout, "command %02X", cmd)
	}

	return m.fdcRead(modeCommand), nil
}

// Bytes the DMA has written since buf.
func (m *Machine) dmaResult(buf uint32) []byte {
	end := m.FDC.DMAAddress()
	if end < buf {
		return nil
	}

	data := make([]byte, end-buf)
	m.ReadBlock(buf, data)

	return data
}
