// Copyright 2012 Lawrence Kesteloot

package machine

// Memory simulator. This includes RAM and the memory-mapped I/O registers
// the floppy code uses.

import (
	"stfloppy/fdc"

	log "github.com/sirupsen/logrus"
)

// I/O addresses.
const (
	ioDiskController = 0xFF8604 // Word.
	ioDMAMode        = 0xFF8606 // Word. DMA status when read.
	ioDMAHigh        = 0xFF8609
	ioDMAMid         = 0xFF860B
	ioDMALow         = 0xFF860D
	ioPSGSelect      = 0xFF8800 // PSG register data when read.
	ioPSGWrite       = 0xFF8802
	ioMFPGPIP        = 0xFFFA01
	ioMFPIERB        = 0xFFFA09
	ioMFPIPRB        = 0xFFFA0D
	ioMFPIMRB        = 0xFFFA15

	// The 68000 only has 24 address lines.
	addressMask = 0xFFFFFF
)

// ReadByte reads a byte from memory or an I/O register.
func (m *Machine) ReadByte(addr uint32) (b byte) {
	addr &= addressMask

	switch addr {
	case ioDMAHigh:
		b = m.FDC.ReadDMAAddressByte(fdc.DMAAddressHigh)
	case ioDMAMid:
		b = m.FDC.ReadDMAAddressByte(fdc.DMAAddressMid)
	case ioDMALow:
		b = m.FDC.ReadDMAAddressByte(fdc.DMAAddressLow)
	case ioPSGSelect:
		b = m.readPSG()
	case ioMFPGPIP:
		b = m.mfp.gpip
	case ioMFPIERB:
		b = m.mfp.ierb
	case ioMFPIPRB:
		b = m.mfp.iprb
	case ioMFPIMRB:
		b = m.mfp.imrb
	default:
		if int(addr) < len(m.ram) {
			b = m.ram[addr]
		} else {
			// Unmapped memory.
			b = 0xFF
		}
	}

	return
}

// WriteByte writes a byte to memory or an I/O register.
func (m *Machine) WriteByte(addr uint32, b byte) {
	addr &= addressMask

	switch addr {
	case ioDMAHigh:
		m.FDC.WriteDMAAddressByte(fdc.DMAAddressHigh, b)
	case ioDMAMid:
		m.FDC.WriteDMAAddressByte(fdc.DMAAddressMid, b)
	case ioDMALow:
		m.FDC.WriteDMAAddressByte(fdc.DMAAddressLow, b)
	case ioPSGSelect:
		m.psg.selected = b
	case ioPSGWrite:
		m.writePSG(m.psg.selected, b)
	case ioMFPIERB:
		m.setIERB(b)
	case ioMFPIPRB:
		m.clearIPRB(b)
	case ioMFPIMRB:
		m.mfp.imrb = b
	default:
		if int(addr) < len(m.ram) {
			m.ram[addr] = b
		} else {
			log.Tracef("write of %02X to unmapped %06X ignored", b, addr)
		}
	}
}

// ReadWord reads a big endian word.
func (m *Machine) ReadWord(addr uint32) uint16 {
	addr &= addressMask

	switch addr {
	case ioDiskController:
		return m.FDC.ReadDiskController()
	case ioDMAMode:
		return m.FDC.ReadDMAStatus()
	}

	return uint16(m.ReadByte(addr))<<8 | uint16(m.ReadByte(addr+1))
}

// WriteWord writes a big endian word.
func (m *Machine) WriteWord(addr uint32, w uint16) {
	addr &= addressMask

	switch addr {
	case ioDiskController:
		m.FDC.WriteDiskController(w)
	case ioDMAMode:
		m.FDC.WriteDMAMode(w)
	default:
		m.WriteByte(addr, byte(w>>8))
		m.WriteByte(addr+1, byte(w))
	}
}

// ReadBlock copies RAM into data. Bytes past the end of RAM read as 0xFF.
func (m *Machine) ReadBlock(addr uint32, data []byte) {
	n := 0
	if int(addr) < len(m.ram) {
		n = copy(data, m.ram[addr:])
	}
	for i := n; i < len(data); i++ {
		data[i] = 0xFF
	}
}

// WriteBlock copies data into RAM. Bytes past the end of RAM are dropped.
func (m *Machine) WriteBlock(addr uint32, data []byte) {
	if int(addr) < len(m.ram) {
		copy(m.ram[addr:], data)
	}
}
