// Copyright 2013 Lawrence Kesteloot

package floppy

import (
	"encoding/binary"
	"math/rand"

	"github.com/pkg/errors"
)

// Blank makes a freshly formatted image with an empty FAT12 file system,
// laid out the way TOS formats disks. Disks with 18 or more sectors per
// track are always double sided.
func Blank(tracks, sides, spt int) (*Image, error) {
	if tracks < 1 || tracks > 86 || sides < 1 || sides > 2 || spt < 1 || spt > maxSectorsPerTrack {
		return nil, errors.Errorf("can't make a disk with %d tracks, %d sides, %d sectors per track",
			tracks, sides, spt)
	}
	if spt >= 18 {
		sides = 2
	}

	g := Geometry{Tracks: tracks, Sides: sides, SectorsPerTrack: spt}
	data := make([]byte, g.Size())
	total := tracks * sides * spt

	boot := data[:SectorSize]
	boot[0] = 0xE9
	for i := 2; i < 8; i++ {
		boot[i] = 0x4E
	}
	serial := rand.Uint32()
	boot[8] = byte(serial)
	boot[9] = byte(serial >> 8)
	boot[10] = byte(serial >> 16)
	binary.LittleEndian.PutUint16(boot[bpbBytesPerSector:], SectorSize)

	spc := 2
	if tracks == 40 && sides == 1 {
		spc = 1
	}
	boot[bpbSectorsPerClust] = byte(spc)

	binary.LittleEndian.PutUint16(boot[14:], 1) // Reserved sectors.
	boot[16] = 2                                // FATs.

	dirEntries := 224
	if spc == 1 {
		dirEntries = 64
	} else if spt < 18 {
		dirEntries = 112
	}
	binary.LittleEndian.PutUint16(boot[17:], uint16(dirEntries))
	binary.LittleEndian.PutUint16(boot[bpbTotalSectors:], uint16(total))

	var media byte
	if spt >= 18 {
		media = 0xF0
	} else {
		if tracks <= 42 {
			media = 0xFC
		} else {
			media = 0xF8
		}
		if sides == 2 {
			media |= 0x01
		}
	}
	boot[21] = media

	spf := 2
	if spt >= 18 {
		spf = 9
	} else if tracks >= 80 {
		spf = 5
	}
	binary.LittleEndian.PutUint16(boot[22:], uint16(spf))
	binary.LittleEndian.PutUint16(boot[bpbSectorsPerTrack:], uint16(spt))
	binary.LittleEndian.PutUint16(boot[bpbSides:], uint16(sides))

	// Both FATs start with the media byte and two reserved entries.
	for fat := 0; fat < 2; fat++ {
		start := SectorSize + fat*spf*SectorSize
		data[start] = media
		data[start+1] = 0xFF
		data[start+2] = 0xFF
	}

	return &Image{Format: FormatST, Geometry: g, data: data, dirty: true}, nil
}
