// Copyright 2013 Lawrence Kesteloot

package fdc

import (
	"testing"
)

func TestDMAAddressMask(t *testing.T) {
	r := newRig(t)

	r.fdc.SetDMAAddress(0xFFFFFFFF)
	if r.fdc.DMAAddress() != 0x3FFFFE {
		t.Errorf("Address is %08X, expected 003FFFFE", r.fdc.DMAAddress())
	}
}

func TestDMAAddressBytes(t *testing.T) {
	r := newRig(t)

	// Low, middle, high, like TOS does it.
	r.fdc.WriteDMAAddressByte(DMAAddressLow, 0x01)
	r.fdc.WriteDMAAddressByte(DMAAddressMid, 0x80)
	r.fdc.WriteDMAAddressByte(DMAAddressHigh, 0x07)

	if r.fdc.DMAAddress() != 0x078000 {
		t.Errorf("Address is %06X, expected 078000", r.fdc.DMAAddress())
	}
	if b := r.fdc.ReadDMAAddressByte(DMAAddressMid); b != 0x80 {
		t.Errorf("Middle byte is %02X", b)
	}
}

func TestDMAAddressRippleCarry(t *testing.T) {
	r := newRig(t)

	// Bit 7 going from 1 to 0 carries into the middle byte.
	r.fdc.SetDMAAddress(0x0000F0)
	r.fdc.WriteDMAAddressByte(DMAAddressLow, 0x10)
	if r.fdc.DMAAddress() != 0x000110 {
		t.Errorf("Address is %06X, expected 000110", r.fdc.DMAAddress())
	}

	// Bit 15 going from 1 to 0 carries into the high byte.
	r.fdc.SetDMAAddress(0x018000)
	r.fdc.WriteDMAAddressByte(DMAAddressMid, 0x20)
	if r.fdc.DMAAddress() != 0x022000 {
		t.Errorf("Address is %06X, expected 022000", r.fdc.DMAAddress())
	}
}

func TestDMAModeToggleResets(t *testing.T) {
	r := newRig(t)

	r.fdc.WriteDMAMode(dmaModeSectorCount)
	r.fdc.WriteDiskController(0x0105)
	if r.fdc.DMASectorCount() != 5 {
		t.Errorf("Sector count is %d, expected 5", r.fdc.DMASectorCount())
	}
	if r.fdc.ReadDMAStatus()&dmaStatusSectorCount == 0 {
		t.Errorf("Status doesn't show a sector count")
	}

	// Same direction: no reset.
	r.fdc.WriteDMAMode(0)
	if r.fdc.DMASectorCount() != 5 {
		t.Errorf("Sector count reset without a direction change")
	}

	r.fdc.WriteDMAMode(dmaModeWrite)
	if r.fdc.DMASectorCount() != 0 {
		t.Errorf("Sector count is %d after a direction change", r.fdc.DMASectorCount())
	}
	if r.fdc.ReadDMAStatus()&dmaStatusSectorCount != 0 {
		t.Errorf("Status still shows a sector count")
	}
}

func TestDiskControllerRegisters(t *testing.T) {
	r := newRig(t)

	regs := []struct {
		mode  uint16
		reg   int
		value byte
	}{
		{0x0082, RegTrack, 0x21},
		{0x0084, RegSector, 0x05},
		{0x0086, RegData, 0x4F},
	}

	for _, x := range regs {
		r.fdc.WriteDMAMode(x.mode)
		r.fdc.WriteDiskController(uint16(x.value))
		if v := r.fdc.ReadRegister(x.reg); v != x.value {
			t.Errorf("Mode %04X wrote %02X to register %d, read back %02X", x.mode, x.value, x.reg, v)
		}
		if v := r.fdc.ReadDiskController(); v != uint16(x.value) {
			t.Errorf("Mode %04X read %04X, expected %02X", x.mode, v, x.value)
		}
	}
}

func TestDiskControllerLatch(t *testing.T) {
	r := newRig(t)

	r.fdc.WriteDMAMode(0x0082)
	r.fdc.WriteDiskController(0x42)

	if s := r.fdc.ReadDMAStatus(); s != 0x0040|dmaStatusOK {
		t.Errorf("DMA status is %04X, expected 0041", s)
	}

	// The sector count can't be read back, the latch is returned instead.
	r.fdc.WriteDMAMode(0x0092)
	if v := r.fdc.ReadDiskController(); v != 0x0042 {
		t.Errorf("Sector count read gave %04X, expected 0042", v)
	}
}

func TestDiskControllerHDC(t *testing.T) {
	r := newRig(t)

	r.fdc.WriteDMAMode(0x0082)
	r.fdc.WriteDiskController(0x10)

	r.fdc.WriteDMAMode(0x008A)
	r.fdc.WriteDiskController(0x33)
	if r.fdc.ReadRegister(RegTrack) != 0x10 {
		t.Errorf("HDC write reached the FDC")
	}
}

func TestStatusThroughDMA(t *testing.T) {
	r := newRig(t)

	r.fdc.WriteDMAMode(0x0080)
	r.fdc.WriteDiskController(CmdRestore | BitSpinUpOff)
	if v := r.fdc.ReadDiskController(); v&StatusBusy == 0 {
		t.Errorf("Status %02X doesn't show busy", v)
	}

	r.finish()
	if v := r.fdc.ReadDiskController(); v&StatusBusy != 0 {
		t.Errorf("Status %02X still busy", v)
	}
}
