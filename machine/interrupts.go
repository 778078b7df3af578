// Copyright 2012 Lawrence Kesteloot

package machine

// Handle the MFP 68901's general purpose input port. The FDC's INTRQ (ORed
// with the hard disk's) comes in on GPIP bit 5, active low, and is channel
// 7 of the MFP's B registers.

// GPIP bits.
const (
	gpipFDC = 0x20
)

// Interrupt channel bits in the B registers.
const (
	mfpChannelFDC = 0x80
)

type mfp struct {
	// General purpose input lines.
	gpip byte

	// Interrupt enable, pending and mask registers for channels 0-7.
	ierb byte
	iprb byte
	imrb byte
}

func (m *Machine) resetMFP() {
	m.mfp = mfp{gpip: 0xFF}
	if m.FDC.IRQ() {
		m.mfp.gpip &^= gpipFDC
	}
}

// FDCInterrupt is called by the FDC when its INTRQ changes.
func (m *Machine) FDCInterrupt(active bool) {
	if active {
		// Falling edge of the line latches the interrupt if it's enabled.
		if m.mfp.gpip&gpipFDC != 0 && m.mfp.ierb&mfpChannelFDC != 0 {
			m.mfp.iprb |= mfpChannelFDC
		}
		m.mfp.gpip &^= gpipFDC
	} else {
		m.mfp.gpip |= gpipFDC
	}
}

// Whether the FDC's interrupt line is asserted, as TOS sees it on the GPIP.
func (m *Machine) fdcInterrupting() bool {
	return m.mfp.gpip&gpipFDC == 0
}

// FDCInterruptPending returns whether the MFP would interrupt the CPU for
// the FDC.
func (m *Machine) FDCInterruptPending() bool {
	return m.mfp.iprb&m.mfp.imrb&mfpChannelFDC != 0
}

// Set the interrupt enable register. Disabling a channel drops its pending
// interrupt.
func (m *Machine) setIERB(value byte) {
	m.mfp.ierb = value
	m.mfp.iprb &= value
}

// Writing zero bits to the pending register clears them. Ones are ignored.
func (m *Machine) clearIPRB(value byte) {
	m.mfp.iprb &= value
}
