// Copyright 2013 Lawrence Kesteloot

package fdc

import (
	"testing"

	"github.com/pkg/errors"

	"stfloppy/sched"
)

type sectorAddress struct {
	drive, track, side, sector int
}

// In-memory disks with the same geometry on both drives. Sectors that were
// never written read back a pattern derived from their address.
type fakeDisks struct {
	inserted  [driveCount]bool
	protected [driveCount]bool
	spt       int
	sides     int
	tracks    int

	written map[sectorAddress][]byte
	reads   []sectorAddress
	writes  []sectorAddress
}

func newFakeDisks() *fakeDisks {
	return &fakeDisks{
		inserted: [driveCount]bool{true, false},
		spt:      9,
		sides:    2,
		tracks:   80,
		written:  make(map[sectorAddress][]byte),
	}
}

func (d *fakeDisks) Inserted(drive int) bool {
	return drive >= 0 && drive < driveCount && d.inserted[drive]
}

func (d *fakeDisks) WriteProtected(drive int) bool {
	return d.protected[drive]
}

func (d *fakeDisks) SectorsPerTrack(drive int) int {
	return d.spt
}

func (d *fakeDisks) check(a sectorAddress) error {
	if !d.Inserted(a.drive) {
		return errors.New("no disk")
	}
	if a.sector < 1 || a.sector > d.spt || a.side >= d.sides || a.track >= d.tracks {
		return errors.Errorf("no sector %v", a)
	}
	return nil
}

func (d *fakeDisks) ReadSector(drive, track, side, sector int) ([]byte, error) {
	a := sectorAddress{drive, track, side, sector}
	if err := d.check(a); err != nil {
		return nil, err
	}
	d.reads = append(d.reads, a)

	if data, ok := d.written[a]; ok {
		return append([]byte(nil), data...), nil
	}
	return sectorPattern(track, side, sector), nil
}

func (d *fakeDisks) WriteSector(drive, track, side, sector int, data []byte) error {
	a := sectorAddress{drive, track, side, sector}
	if err := d.check(a); err != nil {
		return err
	}
	d.writes = append(d.writes, a)
	d.written[a] = append([]byte(nil), data...)
	return nil
}

func sectorPattern(track, side, sector int) []byte {
	data := make([]byte, dmaSectorBytes)
	for i := range data {
		data[i] = byte(track*31 + side*17 + sector*7 + i)
	}
	return data
}

// Flat memory that remembers the size of every block moved.
type fakeMemory struct {
	ram    []byte
	writes []int
	reads  []int
}

func newFakeMemory() *fakeMemory {
	return &fakeMemory{ram: make([]byte, 1<<22)}
}

func (m *fakeMemory) ReadBlock(addr uint32, data []byte) {
	m.reads = append(m.reads, len(data))
	copy(data, m.ram[addr:])
}

func (m *fakeMemory) WriteBlock(addr uint32, data []byte) {
	m.writes = append(m.writes, len(data))
	copy(m.ram[addr:], data)
}

type fakeInterrupts struct {
	active  bool
	changes int
}

func (i *fakeInterrupts) FDCInterrupt(active bool) {
	if active != i.active {
		i.changes++
	}
	i.active = active
}

type rig struct {
	t      *testing.T
	queue  *sched.Queue
	fdc    *Controller
	disks  *fakeDisks
	memory *fakeMemory
	irq    *fakeInterrupts
}

func newRig(t *testing.T) *rig {
	r := &rig{
		t:      t,
		queue:  &sched.Queue{},
		disks:  newFakeDisks(),
		memory: newFakeMemory(),
		irq:    &fakeInterrupts{},
	}

	r.fdc = New(DefaultConfig(), r.queue.Timer(1), r.irq, r.disks, r.memory)
	r.fdc.SelectDrive(0, 0)

	return r
}

// CPU cycles for n revolutions of the disk.
func rotations(n int) uint64 {
	return uint64(n) * rotationCycles * CPUHz / fdcHz
}

// Run until the command is no longer busy.
func (r *rig) finish() {
	if !r.queue.RunUntil(func() bool { return !r.fdc.Busy() }, rotations(100)) {
		r.t.Fatalf("Command still busy after 100 rotations")
	}
}

// Run until the motor has stopped too.
func (r *rig) settle() {
	if !r.queue.RunUntil(r.fdc.Idle, rotations(100)) {
		r.t.Fatalf("Controller still not idle after 100 rotations")
	}
}

// Run until the motor has stopped, returning how many times the motor on
// bit went from set to clear.
func (r *rig) settleCountingMotorOff() int {
	offs := 0
	on := r.fdc.status&StatusMotorOn != 0
	r.settleWhile(func() {
		now := r.fdc.status&StatusMotorOn != 0
		if on && !now {
			offs++
		}
		on = now
	})
	return offs
}

func (r *rig) settleWhile(watch func()) {
	done := func() bool {
		watch()
		return r.fdc.Idle()
	}
	if !r.queue.RunUntil(done, rotations(100)) {
		r.t.Fatalf("Controller still not idle after 100 rotations")
	}
}

// Point the DMA at addr for count sectors, in the given direction.
func (r *rig) setupDMA(addr uint32, count int, write bool) {
	var mode uint16
	if write {
		mode = dmaModeWrite
	}

	// Toggle the direction bit to reset the DMA, like TOS does.
	r.fdc.WriteDMAMode(mode ^ dmaModeWrite)
	r.fdc.WriteDMAMode(mode)
	r.fdc.SetDMAAddress(addr)
	r.fdc.WriteDMAMode(mode | dmaModeSectorCount)
	r.fdc.WriteDiskController(uint16(count))
	r.fdc.WriteDMAMode(mode)
}
