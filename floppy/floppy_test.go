// Copyright 2013 Lawrence Kesteloot

package floppy

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
)

// Raw image whose sectors are filled with a byte identifying them.
func patternImage(g Geometry) []byte {
	data := make([]byte, g.Size())
	for track := 0; track < g.Tracks; track++ {
		for side := 0; side < g.Sides; side++ {
			for sector := 1; sector <= g.SectorsPerTrack; sector++ {
				offset := g.offset(track, side, sector)
				b := byte(track*16 + side*8 + sector)
				for i := 0; i < SectorSize; i++ {
					data[offset+i] = b
				}
			}
		}
	}
	return data
}

func setBootGeometry(data []byte, spt, sides int) {
	binary.LittleEndian.PutUint16(data[bpbSectorsPerTrack:], uint16(spt))
	binary.LittleEndian.PutUint16(data[bpbSides:], uint16(sides))
	binary.LittleEndian.PutUint16(data[bpbTotalSectors:], uint16(len(data)/SectorSize))
}

func TestGeometryFromBootSector(t *testing.T) {
	data := make([]byte, 80*2*9*SectorSize)
	setBootGeometry(data, 9, 2)

	g := DetectGeometry(data)
	if g != (Geometry{Tracks: 80, Sides: 2, SectorsPerTrack: 9}) {
		t.Errorf("Got %v", g)
	}
}

func TestGeometryFromSize(t *testing.T) {
	tests := []struct {
		size     int
		expected Geometry
	}{
		// Single sided, 80 tracks, 9 sectors: 360 KB.
		{80 * 9 * SectorSize, Geometry{80, 1, 9}},
		// Double sided, 82 tracks, 10 sectors.
		{82 * 2 * 10 * SectorSize, Geometry{82, 2, 10}},
		// Double sided, 80 tracks, 11 sectors.
		{80 * 2 * 11 * SectorSize, Geometry{80, 2, 11}},
	}

	for _, test := range tests {
		// Boot sector full of junk.
		data := bytes.Repeat([]byte{0xFF}, test.size)
		if g := DetectGeometry(data); g != test.expected {
			t.Errorf("Size %d gave %v, expected %v", test.size, g, test.expected)
		}
	}
}

func TestBootSectorDisagreesWithSize(t *testing.T) {
	// Boot sector claims single sided, image is a double sided 720 KB disk.
	data := make([]byte, 80*2*9*SectorSize)
	binary.LittleEndian.PutUint16(data[bpbSectorsPerTrack:], 9)
	binary.LittleEndian.PutUint16(data[bpbSides:], 1)
	binary.LittleEndian.PutUint16(data[bpbTotalSectors:], 720)

	if g := DetectGeometry(data); g.Sides != 2 || g.Tracks != 80 {
		t.Errorf("Got %v, expected 80 tracks double sided", g)
	}
}

func TestSectorOffsets(t *testing.T) {
	g := Geometry{Tracks: 80, Sides: 2, SectorsPerTrack: 9}
	img := &Image{Geometry: g, data: patternImage(g)}

	tests := []struct {
		track, side, sector int
	}{
		{0, 0, 1},
		{0, 1, 1},
		{1, 0, 9},
		{79, 1, 9},
	}
	for _, test := range tests {
		data, err := img.ReadSector(test.track, test.side, test.sector)
		if err != nil {
			t.Fatal(err)
		}
		expected := byte(test.track*16 + test.side*8 + test.sector)
		if data[0] != expected || data[SectorSize-1] != expected {
			t.Errorf("Track %d side %d sector %d starts with %02X, expected %02X",
				test.track, test.side, test.sector, data[0], expected)
		}
	}

	if g.offset(1, 1, 3) != 9*512*1+9*512*2*1+512*2 {
		t.Errorf("Offset of track 1 side 1 sector 3 is %d", g.offset(1, 1, 3))
	}
}

func TestSectorOutOfRange(t *testing.T) {
	g := Geometry{Tracks: 80, Sides: 1, SectorsPerTrack: 9}
	img := &Image{Geometry: g, data: make([]byte, g.Size())}

	for _, s := range [][3]int{{80, 0, 1}, {0, 1, 1}, {0, 0, 0}, {0, 0, 10}, {-1, 0, 1}} {
		if _, err := img.ReadSector(s[0], s[1], s[2]); errors.Cause(err) != ErrSectorNotFound {
			t.Errorf("Reading %v gave %v", s, err)
		}
	}
}

func TestWriteSector(t *testing.T) {
	g := Geometry{Tracks: 80, Sides: 2, SectorsPerTrack: 9}
	img := &Image{Geometry: g, data: make([]byte, g.Size())}

	sector := bytes.Repeat([]byte{0x5A}, SectorSize)
	if err := img.WriteSector(3, 1, 4, sector); err != nil {
		t.Fatal(err)
	}
	if !img.Dirty() {
		t.Errorf("Image not dirty after write")
	}
	back, _ := img.ReadSector(3, 1, 4)
	if !bytes.Equal(back, sector) {
		t.Errorf("Sector didn't read back")
	}

	img.WriteProtected = true
	if err := img.WriteSector(3, 1, 4, sector); err != ErrWriteProtected {
		t.Errorf("Write to protected image gave %v", err)
	}
}

func TestBootExecutable(t *testing.T) {
	boot := make([]byte, SectorSize)
	boot[0] = 0x60
	if BootExecutable(boot) {
		t.Errorf("Plain boot sector is executable")
	}

	// Fix up the last word so the checksum works out.
	var sum uint16
	for i := 0; i < SectorSize-2; i += 2 {
		sum += binary.BigEndian.Uint16(boot[i:])
	}
	binary.BigEndian.PutUint16(boot[SectorSize-2:], 0x1234-sum)
	if !BootExecutable(boot) {
		t.Errorf("Boot sector with checksum 0x1234 isn't executable")
	}

	// An executable boot sector is fine even without sectors per cluster.
	if !bootSectorSane(boot) {
		t.Errorf("Executable boot sector isn't sane")
	}
	boot[SectorSize-1]++
	if bootSectorSane(boot) {
		t.Errorf("Boot sector with no sectors per cluster is sane")
	}
}

func TestMSARawTrack(t *testing.T) {
	g := Geometry{Tracks: 1, Sides: 1, SectorsPerTrack: 9}
	track := patternImage(g)
	for i := range track {
		track[i] = byte(i * 7)
	}

	file := []byte{0x0E, 0x0F, 0, 9, 0, 0, 0, 0, 0, 0, 0x12, 0x00}
	file = append(file, track...)

	raw, got, err := DecodeMSA(file)
	if err != nil {
		t.Fatal(err)
	}
	if got != g {
		t.Errorf("Geometry is %v", got)
	}
	if !bytes.Equal(raw, track) {
		t.Errorf("Raw track didn't decode as is")
	}
}

func TestMSARunLength(t *testing.T) {
	// One track of one sector: 3 literal bytes, a run of 500 zeros, then
	// a lone E5 stored as a run of one, then 8 more literal bytes.
	packed := []byte{1, 2, 3, 0xE5, 0x00, 0x01, 0xF4, 0xE5, 0xE5, 0x00, 0x01,
		9, 9, 9, 8, 7, 6, 5, 4}
	file := []byte{0x0E, 0x0F, 0, 1, 0, 0, 0, 0, 0, 0}
	file = append(file, byte(len(packed)>>8), byte(len(packed)))
	file = append(file, packed...)

	raw, _, err := DecodeMSA(file)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) != SectorSize {
		t.Fatalf("Decoded %d bytes", len(raw))
	}

	expected := append([]byte{1, 2, 3}, make([]byte, 500)...)
	expected = append(expected, 0xE5, 9, 9, 9, 8, 7, 6, 5, 4)
	if !bytes.Equal(raw, expected) {
		t.Errorf("Decoded % X", raw)
	}
}

func TestMSARunClampedToTrack(t *testing.T) {
	packed := []byte{0xE5, 0x4E, 0x10, 0x00}
	file := []byte{0x0E, 0x0F, 0, 1, 0, 0, 0, 0, 0, 0, 0, 4}
	file = append(file, packed...)

	raw, _, err := DecodeMSA(file)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) != SectorSize {
		t.Errorf("Decoded %d bytes, expected one sector", len(raw))
	}
}

func TestMSABadFiles(t *testing.T) {
	tests := []struct {
		name string
		file []byte
	}{
		{"short", []byte{0x0E, 0x0F, 0, 9}},
		{"magic", []byte{0x0E, 0x10, 0, 9, 0, 0, 0, 0, 0, 0, 0, 0}},
		{"sides", []byte{0x0E, 0x0F, 0, 9, 0, 2, 0, 0, 0, 0, 0, 0}},
		{"end track", []byte{0x0E, 0x0F, 0, 9, 0, 0, 0, 0, 0, 87, 0, 0}},
		{"start after end", []byte{0x0E, 0x0F, 0, 9, 0, 0, 0, 5, 0, 4, 0, 0}},
		{"sectors", []byte{0x0E, 0x0F, 0, 57, 0, 0, 0, 0, 0, 0, 0, 0}},
		{"truncated track", []byte{0x0E, 0x0F, 0, 9, 0, 0, 0, 0, 0, 0, 0x10, 0, 1, 2}},
		{"truncated run", []byte{0x0E, 0x0F, 0, 1, 0, 0, 0, 0, 0, 0, 0, 3, 0xE5, 0, 1}},
	}

	for _, test := range tests {
		if _, _, err := DecodeMSA(test.file); errors.Cause(err) != ErrBadMSA {
			t.Errorf("%s: got %v", test.name, err)
		}
	}
}

func TestMSACompressesAndRestores(t *testing.T) {
	g := Geometry{Tracks: 3, Sides: 2, SectorsPerTrack: 9}
	image := patternImage(g)

	// A track of noise that can't be compressed, with some E5s in it.
	noise := image[g.offset(1, 0, 1) : g.offset(1, 0, 1)+9*SectorSize]
	for i := range noise {
		noise[i] = byte(i*37 + i/3)
	}

	file, err := EncodeMSA(image, g)
	if err != nil {
		t.Fatal(err)
	}
	if len(file) >= len(image) {
		t.Errorf("MSA file of %d bytes isn't smaller than %d", len(file), len(image))
	}

	raw, got, err := DecodeMSA(file)
	if err != nil {
		t.Fatal(err)
	}
	if got != g {
		t.Errorf("Geometry came back as %v", got)
	}
	if !bytes.Equal(raw, image) {
		t.Errorf("Image didn't survive MSA")
	}
}

func TestRunLength(t *testing.T) {
	tests := []struct {
		data     []byte
		expected int
	}{
		{[]byte{1, 1, 1, 2}, 0},
		{[]byte{1, 1, 1, 1, 2}, 4},
		{[]byte{0xE5, 2}, 1},
		{[]byte{7}, 0},
	}

	for _, test := range tests {
		if n := runLength(test.data); n != test.expected {
			t.Errorf("Run of % X is %d, expected %d", test.data, n, test.expected)
		}
	}
}

func TestBlank(t *testing.T) {
	img, err := Blank(80, 2, 9)
	if err != nil {
		t.Fatal(err)
	}

	if len(img.Bytes()) != 737280 {
		t.Errorf("Image is %d bytes", len(img.Bytes()))
	}
	if g := DetectGeometry(img.Bytes()); g != img.Geometry {
		t.Errorf("Boot sector gives %v, expected %v", g, img.Geometry)
	}

	boot := img.Bytes()
	if boot[0] != 0xE9 || boot[bpbSectorsPerClust] != 2 || boot[21] != 0xF9 {
		t.Errorf("Boot sector starts % X", boot[:32])
	}
	if binary.LittleEndian.Uint16(boot[17:]) != 112 {
		t.Errorf("Directory has %d entries", binary.LittleEndian.Uint16(boot[17:]))
	}

	// Second FAT after five sectors of the first.
	fat2 := boot[SectorSize+5*SectorSize:]
	if !bytes.Equal(fat2[:3], []byte{0xF9, 0xFF, 0xFF}) {
		t.Errorf("Second FAT starts % X", fat2[:3])
	}
}

func TestBlankHighDensityIsDoubleSided(t *testing.T) {
	img, err := Blank(80, 1, 18)
	if err != nil {
		t.Fatal(err)
	}
	if img.Geometry.Sides != 2 {
		t.Errorf("Disk has %d sides", img.Geometry.Sides)
	}
	if img.Bytes()[21] != 0xF0 {
		t.Errorf("Media byte is %02X", img.Bytes()[21])
	}
}

func TestLoadAndSave(t *testing.T) {
	dir := t.TempDir()

	blank, err := Blank(80, 2, 9)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "disk.msa")
	if err := blank.SaveAs(path, FormatMSA); err != nil {
		t.Fatal(err)
	}

	img, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if img.Format != FormatMSA || img.Geometry != blank.Geometry {
		t.Errorf("Loaded %v %v", img.Format, img.Geometry)
	}

	sector := bytes.Repeat([]byte{0x42}, SectorSize)
	if err := img.WriteSector(10, 1, 5, sector); err != nil {
		t.Fatal(err)
	}
	if err := img.Save(); err != nil {
		t.Fatal(err)
	}
	if img.Dirty() {
		t.Errorf("Image still dirty after saving")
	}

	again, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if back, _ := again.ReadSector(10, 1, 5); !bytes.Equal(back, sector) {
		t.Errorf("Written sector didn't survive a save")
	}
}

func TestSaveSkipsBrokenBootSector(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.st")

	g := Geometry{Tracks: 80, Sides: 2, SectorsPerTrack: 9}
	original := make([]byte, g.Size())
	setBootGeometry(original, 9, 2)
	if err := os.WriteFile(path, original, 0644); err != nil {
		t.Fatal(err)
	}

	img, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	img.WriteSector(5, 0, 1, bytes.Repeat([]byte{1}, SectorSize))
	if err := img.Save(); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	if !bytes.Equal(data, original) {
		t.Errorf("Image with broken boot sector was saved")
	}
}

func TestDrives(t *testing.T) {
	d := NewDrives()
	var changes []int
	d.OnChange(func(drive int) {
		changes = append(changes, drive)
	})

	if d.Inserted(0) || d.SectorsPerTrack(0) != 0 {
		t.Errorf("Empty drive looks full")
	}
	if _, err := d.ReadSector(0, 0, 0, 1); err != ErrNoDisk {
		t.Errorf("Reading empty drive gave %v", err)
	}

	img, _ := Blank(80, 2, 10)
	if err := d.Insert(1, img); err != nil {
		t.Fatal(err)
	}
	if !d.Inserted(1) || d.Inserted(0) || d.SectorsPerTrack(1) != 10 {
		t.Errorf("Drive B not set up")
	}
	if err := d.WriteSector(1, 0, 0, 2, make([]byte, SectorSize)); err != nil {
		t.Errorf("Write gave %v", err)
	}

	img.WriteProtected = true
	if !d.WriteProtected(1) {
		t.Errorf("Drive B isn't write protected")
	}

	if err := d.Eject(1); err != nil {
		t.Fatal(err)
	}
	if d.Inserted(1) {
		t.Errorf("Drive B still full")
	}
	if len(changes) != 2 || changes[0] != 1 || changes[1] != 1 {
		t.Errorf("Changes were %v", changes)
	}
	if err := d.Insert(2, img); err == nil {
		t.Errorf("Inserted into drive C")
	}
	if err := d.Insert(0, nil); err == nil {
		t.Errorf("Inserted a nil image")
	}
	if d.Inserted(0) || len(changes) != 2 {
		t.Errorf("Nil insert changed drive A")
	}
}
