// Copyright 2013 Lawrence Kesteloot

package floppy

import (
	"encoding/binary"
	"fmt"
)

// SectorSize is the size of every sector of an .ST or .MSA image.
const SectorSize = 512

// Boot sector fields, all little endian.
const (
	bpbBytesPerSector  = 11
	bpbSectorsPerClust = 13
	bpbTotalSectors    = 19
	bpbSectorsPerTrack = 24
	bpbSides           = 26
)

// Highest sectors per track we trust from a boot sector. Extra density
// disks have up to this many.
const maxSectorsPerTrack = 48

// Geometry is the shape of a disk: sectors are numbered 1 to
// SectorsPerTrack on each side of each track.
type Geometry struct {
	Tracks          int
	Sides           int
	SectorsPerTrack int
}

func (g Geometry) String() string {
	return fmt.Sprintf("%d tracks, %d sides, %d sectors per track", g.Tracks, g.Sides, g.SectorsPerTrack)
}

// Size returns the number of bytes in a raw image of this geometry.
func (g Geometry) Size() int {
	return g.Tracks * g.Sides * g.SectorsPerTrack * SectorSize
}

// Offset of a sector in a raw image. Sides of a track are stored one after
// the other.
func (g Geometry) offset(track, side, sector int) int {
	bytesPerTrack := g.SectorsPerTrack * SectorSize

	return bytesPerTrack*side + bytesPerTrack*g.Sides*track + SectorSize*(sector-1)
}

// Whether the geometry has this sector.
func (g Geometry) contains(track, side, sector int) bool {
	return track >= 0 && track < g.Tracks &&
		side >= 0 && side < g.Sides &&
		sector >= 1 && sector <= g.SectorsPerTrack
}

// DetectGeometry works out the geometry of a raw image from its boot
// sector. Some disks have a boot sector that doesn't match the image (bad
// imaging tools, demos that overwrite it), so when the numbers don't add up
// the geometry is guessed from the image size instead.
func DetectGeometry(data []byte) Geometry {
	var spt, sides, total int
	if len(data) >= SectorSize {
		spt = int(binary.LittleEndian.Uint16(data[bpbSectorsPerTrack:]))
		sides = int(binary.LittleEndian.Uint16(data[bpbSides:]))
		total = int(binary.LittleEndian.Uint16(data[bpbTotalSectors:]))
	}

	if total != len(data)/SectorSize || sides == 0 || sides > 2 ||
		spt == 0 || spt > maxSectorsPerTrack {

		spt, sides = guessGeometry(len(data), spt)
	}

	g := Geometry{Sides: sides, SectorsPerTrack: spt}
	if spt > 0 && sides > 0 {
		g.Tracks = len(data) / SectorSize / spt / sides
	}

	return g
}

// Sides and sectors per track from the image size, for 80 to 84 tracks of
// 9 to 12 sectors. Anything else keeps the boot sector's sectors per track
// if it's plausible, or assumes 80 tracks.
func guessGeometry(size, bootSpt int) (int, int) {
	sides := 2
	if size < 500*1024 {
		sides = 1
	}

	total := size / SectorSize
	for spt := 9; spt <= 12; spt++ {
		for tracks := 80; tracks <= 84; tracks++ {
			if total == tracks*spt*sides {
				return spt, sides
			}
		}
	}

	if bootSpt <= maxSectorsPerTrack {
		return bootSpt, sides
	}

	return total / 80 / sides, sides
}

// BootExecutable returns whether the boot sector would be run by TOS: the
// big endian words of the sector add up to 0x1234.
func BootExecutable(boot []byte) bool {
	if len(boot) < SectorSize {
		return false
	}

	var sum uint16
	for i := 0; i < SectorSize; i += 2 {
		sum += binary.BigEndian.Uint16(boot[i:])
	}

	return sum == 0x1234
}

// Images made by some tools have zero sectors per cluster, which neither TOS
// nor we can read properly. Such images aren't written back, so as not to
// make things worse.
func bootSectorSane(boot []byte) bool {
	if len(boot) < SectorSize {
		return false
	}

	return boot[bpbSectorsPerClust] != 0 || BootExecutable(boot)
}
