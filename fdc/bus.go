// Copyright 2013 Lawrence Kesteloot

package fdc

import (
	log "github.com/sirupsen/logrus"
)

// The CPU never sees the WD1772 directly. It goes through the DMA chip:
// $FF8604 is the data word (an FDC register or the sector count), $FF8606
// is the mode register when written and the DMA status when read, and
// $FF8609/$FF860B/$FF860D are the high, middle and low bytes of the DMA
// address.

// DMA address bytes, in register order.
const (
	DMAAddressHigh = 0
	DMAAddressMid  = 1
	DMAAddressLow  = 2
)

// WriteDiskController handles a word write to $FF8604.
func (c *Controller) WriteDiskController(value uint16) {
	if c.dma.mode&dmaModeSectorCount != 0 {
		c.dma.sectorCount = int(value & 0xFF)
		log.Tracef("dma sector count %d", c.dma.sectorCount)
		return
	}

	c.dma.recent = c.dma.recent&0xFF00 | value&0xFF

	if c.dma.mode&dmaModeHDC != 0 {
		log.Debugf("hdc write %02X ignored", value&0xFF)
		return
	}

	c.WriteRegister(int(c.dma.mode&dmaModeRegister)>>1, byte(value))
}

// ReadDiskController handles a word read of $FF8604.
func (c *Controller) ReadDiskController() uint16 {
	if c.dma.mode&dmaModeSectorCount != 0 {
		return c.dma.recent
	}

	var value uint16
	if c.dma.mode&dmaModeHDC != 0 {
		// No hard disk.
		value = 0xFF
	} else {
		value = uint16(c.ReadRegister(int(c.dma.mode&dmaModeRegister) >> 1))
	}

	c.dma.recent = c.dma.recent&0xFF00 | value&0xFF

	return value
}

// WriteDMAMode handles a word write to $FF8606. Flipping the direction bit
// resets the DMA.
func (c *Controller) WriteDMAMode(value uint16) {
	previous := c.dma.mode
	c.dma.mode = value

	if (previous^value)&dmaModeWrite != 0 {
		c.dma.reset()
	}
}

// ReadDMAStatus handles a word read of $FF8606. The top bits are whatever
// last went through $FF8604.
func (c *Controller) ReadDMAStatus() uint16 {
	if c.dma.sectorCount != 0 {
		c.dma.status |= dmaStatusSectorCount
	} else {
		c.dma.status &^= dmaStatusSectorCount
	}

	return c.dma.status | c.dma.recent&0xFFF8
}

// DMAAddress returns the DMA address counter.
func (c *Controller) DMAAddress() uint32 {
	return c.dma.address
}

// SetDMAAddress sets the whole DMA address counter.
func (c *Controller) SetDMAAddress(addr uint32) {
	c.dma.setAddress(addr)
}

// DMASectorCount returns the number of sectors the DMA still has to move.
func (c *Controller) DMASectorCount() int {
	return c.dma.sectorCount
}

// WriteDMAAddressByte writes one byte of the address counter. On the ST a
// write that clears bit 7 or bit 15 of the counter carries into the next
// byte, which is why TOS writes the low byte first.
func (c *Controller) WriteDMAAddressByte(reg int, value byte) {
	shift := uint(16 - 8*reg)
	old := c.dma.address
	addr := old&^(0xFF<<shift) | uint32(value)<<shift

	if old&0x80 != 0 && addr&0x80 == 0 {
		addr += 0x100
	} else if old&0x8000 != 0 && addr&0x8000 == 0 {
		addr += 0x10000
	}

	c.dma.setAddress(addr)
}

// ReadDMAAddressByte reads one byte of the address counter.
func (c *Controller) ReadDMAAddressByte(reg int) byte {
	return byte(c.dma.address >> uint(16-8*reg))
}
