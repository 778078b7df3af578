// Copyright 2012 Lawrence Kesteloot

package machine

// The YM2149 sound chip's port A is an output port that, among other things,
// selects the floppy drive and side. All the lines are active low.

const (
	psgRegPortA = 14

	portASide   = 0x01 // Low for side 1.
	portADriveA = 0x02
	portADriveB = 0x04
)

type psg struct {
	// Register selected through $FF8800.
	selected byte

	// All sixteen registers. Only port A does anything here.
	regs [16]byte
}

func (m *Machine) resetPSG() {
	m.psg = psg{}
	m.writePSG(psgRegPortA, 0xFF)
}

func (m *Machine) readPSG() byte {
	return m.psg.regs[m.psg.selected&0x0F]
}

func (m *Machine) writePSG(reg, value byte) {
	reg &= 0x0F
	m.psg.regs[reg] = value

	if reg == psgRegPortA {
		m.FDC.SelectDrive(selectedDrive(value), int(^value&portASide))
	}
}

// Drive selected by port A, or -1 for none. A wins if both are selected.
func selectedDrive(portA byte) int {
	switch {
	case portA&portADriveA == 0:
		return 0
	case portA&portADriveB == 0:
		return 1
	default:
		return -1
	}
}

// Port A value that selects a drive and side, leaving the other lines high.
func portASelect(drive, side int) byte {
	value := byte(0xFF)
	switch drive {
	case 0:
		value &^= portADriveA
	case 1:
		value &^= portADriveB
	}
	if side == 1 {
		value &^= portASide
	}
	return value
}
