// Copyright 2013 Lawrence Kesteloot

package floppy

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// MSA ("Magic Shadow Archiver") images are run-length compressed track by
// track. The file is a header followed, for each track and side, by a big
// endian length and that many bytes. A track whose length is a full track is
// stored raw; otherwise E5 is a marker followed by a byte and a big endian
// run length, and any other byte stands for itself.

const (
	msaMagic      = 0x0E0F
	msaRunMarker  = 0xE5
	msaMaxTrack   = 86
	msaMaxSectors = 56
)

type msaHeader struct {
	Magic           uint16
	SectorsPerTrack uint16
	Sides           uint16 // Minus one.
	StartTrack      uint16
	EndTrack        uint16
}

var msaHeaderSize = binary.Size(msaHeader{})

// IsMSA returns whether data starts with an MSA header.
func IsMSA(data []byte) bool {
	return len(data) >= 2 && binary.BigEndian.Uint16(data) == msaMagic
}

// DecodeMSA expands an MSA file into a raw image.
func DecodeMSA(file []byte) ([]byte, Geometry, error) {
	var h msaHeader

	if len(file) <= msaHeaderSize {
		return nil, Geometry{}, errors.Wrap(ErrBadMSA, "file too short")
	}
	if err := binary.Read(bytes.NewReader(file), binary.BigEndian, &h); err != nil {
		return nil, Geometry{}, errors.Wrap(err, "reading MSA header")
	}

	if h.Magic != msaMagic || h.EndTrack > msaMaxTrack || h.StartTrack > h.EndTrack ||
		h.SectorsPerTrack > msaMaxSectors || h.Sides > 1 {

		return nil, Geometry{}, errors.Wrapf(ErrBadMSA, "bad header %+v", h)
	}

	g := Geometry{
		Tracks:          int(h.EndTrack-h.StartTrack) + 1,
		Sides:           int(h.Sides) + 1,
		SectorsPerTrack: int(h.SectorsPerTrack),
	}
	bytesPerTrack := g.SectorsPerTrack * SectorSize

	image := make([]byte, 0, g.Size())
	in := file[msaHeaderSize:]

	for t := 0; t < g.Tracks*g.Sides; t++ {
		if len(in) < 2 {
			return nil, g, errors.Wrap(ErrBadMSA, "premature end of file")
		}
		length := int(binary.BigEndian.Uint16(in))
		in = in[2:]

		if length > len(in) {
			return nil, g, errors.Wrap(ErrBadMSA, "premature end of file")
		}
		track := in[:length]
		in = in[length:]

		if length == bytesPerTrack {
			image = append(image, track...)
			continue
		}

		decoded, err := decodeMSATrack(track, bytesPerTrack)
		if err != nil {
			return nil, g, errors.Wrapf(err, "track %d side %d",
				int(h.StartTrack)+t/g.Sides, t%g.Sides)
		}
		image = append(image, decoded...)
	}

	return image, g, nil
}

func decodeMSATrack(in []byte, bytesPerTrack int) ([]byte, error) {
	out := make([]byte, 0, bytesPerTrack)

	for len(out) < bytesPerTrack {
		if len(in) == 0 {
			return nil, errors.Wrap(ErrBadMSA, "premature end of track")
		}
		b := in[0]
		in = in[1:]

		if b != msaRunMarker {
			out = append(out, b)
			continue
		}

		if len(in) < 3 {
			return nil, errors.Wrap(ErrBadMSA, "premature end of track")
		}
		data := in[0]
		run := int(binary.BigEndian.Uint16(in[1:]))
		in = in[3:]

		// Broken images can overflow the track.
		if len(out)+run > bytesPerTrack {
			log.Warnf("msa run of %d bytes overflows track, clamped", run)
			run = bytesPerTrack - len(out)
		}
		for i := 0; i < run; i++ {
			out = append(out, data)
		}
	}

	return out, nil
}

// EncodeMSA compresses a raw image. Tracks that don't get smaller are stored
// raw.
func EncodeMSA(image []byte, g Geometry) ([]byte, error) {
	if g.Size() != len(image) || g.Tracks == 0 {
		return nil, errors.Errorf("image of %d bytes doesn't match %v", len(image), g)
	}
	if g.Sides > 2 || g.SectorsPerTrack > msaMaxSectors || g.Tracks-1 > msaMaxTrack {
		return nil, errors.Errorf("%v can't be stored as MSA", g)
	}

	var out bytes.Buffer
	h := msaHeader{
		Magic:           msaMagic,
		SectorsPerTrack: uint16(g.SectorsPerTrack),
		Sides:           uint16(g.Sides - 1),
		StartTrack:      0,
		EndTrack:        uint16(g.Tracks - 1),
	}
	if err := binary.Write(&out, binary.BigEndian, &h); err != nil {
		return nil, err
	}

	bytesPerTrack := g.SectorsPerTrack * SectorSize
	for track := 0; track < g.Tracks; track++ {
		for side := 0; side < g.Sides; side++ {
			start := g.offset(track, side, 1)
			raw := image[start : start+bytesPerTrack]

			packed := encodeMSATrack(raw)
			if len(packed) >= bytesPerTrack {
				packed = raw
			}

			var length [2]byte
			binary.BigEndian.PutUint16(length[:], uint16(len(packed)))
			out.Write(length[:])
			out.Write(packed)
		}
	}

	return out.Bytes(), nil
}

func encodeMSATrack(raw []byte) []byte {
	var out []byte

	for i := 0; i < len(raw); {
		run := runLength(raw[i:])
		if run == 0 {
			out = append(out, raw[i])
			i++
			continue
		}

		out = append(out, msaRunMarker, raw[i], byte(run>>8), byte(run))
		i += run
	}

	return out
}

// Length of the run of identical bytes at the start of data, or 0 if it's
// too short to be worth a marker. The marker byte itself always has to be
// stored as a run.
func runLength(data []byte) int {
	run := 1
	for run < len(data) && data[run] == data[0] {
		run++
	}

	if run < 4 && data[0] != msaRunMarker {
		return 0
	}

	return run
}
