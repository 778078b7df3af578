// Copyright 2013 Lawrence Kesteloot

package fdc

import (
	log "github.com/sirupsen/logrus"
)

const (
	dmaSectorBytes = 512

	// The DMA chip moves data through a 16 byte FIFO.
	dmaBurstBytes = 16

	// Large enough for a whole track and what's left of the previous
	// transfer.
	dmaWorkspaceBytes = 8 * 1024

	// The DMA address counter has 22 bits and is always even.
	dmaAddressMask = 0x3FFFFE
)

// DMA mode register bits at $FF8606.
const (
	dmaModeRegister    = 0x0006 // A0 and A1 of the FDC.
	dmaModeHDC         = 0x0008 // Hard disk controller instead of FDC.
	dmaModeSectorCount = 0x0010 // $FF8604 is the sector count.
	dmaModeWrite       = 0x0100 // Memory to disk. Toggling it resets the DMA.
)

// DMA status bits, also at $FF8606.
const (
	dmaStatusOK          = 0x01 // Cleared on a DMA error.
	dmaStatusSectorCount = 0x02 // Sector count isn't zero.
)

// Result of moving one burst.
type burst int

const (
	// Fewer than 16 bytes were waiting, nothing moved.
	burstNone burst = iota

	// 16 bytes moved, another 16 are waiting.
	burstMore

	// 16 bytes moved, fewer than 16 are left.
	burstEmpty
)

type dma struct {
	mode        uint16
	status      uint16
	sectorCount int

	// Bytes left before the sector count goes down.
	bytesInSector int

	address uint32

	// Last value that went through $FF8604, returned when the sector count
	// register is read.
	recent uint16

	// Bytes between transferPos and writePos are waiting for the DMA.
	buf         [dmaWorkspaceBytes]byte
	writePos    int
	transferPos int
}

// Empty the FIFO and zero the sector count, as toggling the direction bit
// does.
func (d *dma) reset() {
	d.sectorCount = 0
	d.bytesInSector = dmaSectorBytes
	d.discard()
}

// Drop everything waiting in the workspace.
func (d *dma) discard() {
	d.writePos = 0
	d.transferPos = 0
}

func (d *dma) bytesPending() int {
	return d.writePos - d.transferPos
}

// Move the bytes still waiting to the front of the workspace so that the
// next block can be appended after them.
func (d *dma) beginTransferWindow() {
	n := copy(d.buf[:], d.buf[d.transferPos:d.writePos])
	d.transferPos = 0
	d.writePos = n
}

// Add bytes read from the disk. Returns how many fit.
func (d *dma) append(data []byte) int {
	n := copy(d.buf[d.writePos:], data)
	if n < len(data) {
		log.Warnf("dma workspace full, dropped %d bytes", len(data)-n)
	}
	d.writePos += n

	return n
}

// Consume n bytes pulled from memory, to write them to the disk.
func (d *dma) take(n int) []byte {
	if n > d.bytesPending() {
		n = d.bytesPending()
	}

	data := make([]byte, n)
	copy(data, d.buf[d.transferPos:])
	d.transferPos += n

	return data
}

// Move 16 bytes from the workspace to memory. With a sector count of zero
// the bytes are lost and the DMA reports an error.
func (d *dma) drainOneBurst(memory Memory) burst {
	if d.bytesPending() < dmaBurstBytes {
		return burstNone
	}

	if d.sectorCount == 0 {
		d.status &^= dmaStatusOK
	} else {
		window := d.buf[d.transferPos : d.transferPos+dmaBurstBytes]
		memory.WriteBlock(d.address, window)
		d.latch(window)
		d.advance()
	}
	d.transferPos += dmaBurstBytes

	if d.bytesPending() >= dmaBurstBytes {
		return burstMore
	}

	return burstEmpty
}

// Pull 16 bytes from memory into the workspace. With a sector count of zero
// the DMA reports an error and zeros are written to the disk.
func (d *dma) fillOneBurst(memory Memory) {
	if d.writePos+dmaBurstBytes > len(d.buf) {
		log.Warn("dma workspace full")
		return
	}

	window := d.buf[d.writePos : d.writePos+dmaBurstBytes]
	if d.sectorCount == 0 {
		d.status &^= dmaStatusOK
		for i := range window {
			window[i] = 0
		}
	} else {
		memory.ReadBlock(d.address, window)
		d.latch(window)
		d.advance()
	}
	d.writePos += dmaBurstBytes
}

// Move the address and sector count past one burst.
func (d *dma) advance() {
	d.status |= dmaStatusOK
	d.setAddress(d.address + dmaBurstBytes)

	d.bytesInSector -= dmaBurstBytes
	if d.bytesInSector <= 0 {
		d.sectorCount--
		d.bytesInSector = dmaSectorBytes
	}
}

// The last word of a burst shows through at $FF8604 and in the top bits of
// the DMA status.
func (d *dma) latch(window []byte) {
	d.recent = uint16(window[dmaBurstBytes-2])<<8 | uint16(window[dmaBurstBytes-1])
}

func (d *dma) setAddress(addr uint32) {
	d.address = addr & dmaAddressMask
}
