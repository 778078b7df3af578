// Copyright 2013 Lawrence Kesteloot

// Package floppy holds Atari ST floppy disk images (.ST and .MSA) and the
// two drives they're inserted into.
package floppy

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrBadMSA is returned for MSA files that can't be decoded.
	ErrBadMSA = errors.New("bad MSA image")

	// ErrSectorNotFound is returned for sectors outside the image.
	ErrSectorNotFound = errors.New("sector not found")

	// ErrNoDisk is returned for a drive with no disk in it.
	ErrNoDisk = errors.New("no disk in drive")

	// ErrWriteProtected is returned when writing to a protected image.
	ErrWriteProtected = errors.New("disk is write protected")
)

// Format is the file format of an image.
type Format int

const (
	FormatST Format = iota
	FormatMSA
)

func (f Format) String() string {
	if f == FormatMSA {
		return "MSA"
	}
	return "ST"
}

// FormatForPath guesses the format from a file name's extension.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".msa") {
		return FormatMSA
	}
	return FormatST
}

// Image is a floppy disk image, kept in memory as raw sectors.
type Image struct {
	// File it was loaded from and is saved to. Empty for images that
	// only live in memory.
	Path           string
	Format         Format
	Geometry       Geometry
	WriteProtected bool

	data  []byte
	dirty bool
}

// Load reads an image from a file. The file is write protected if we can't
// write to it.
func Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "loading disk image")
	}

	img, err := Parse(data, FormatForPath(path))
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	img.Path = path

	info, err := os.Stat(path)
	if err == nil && info.Mode().Perm()&0200 == 0 {
		img.WriteProtected = true
	}

	log.WithFields(log.Fields{
		"path":     path,
		"format":   img.Format,
		"geometry": img.Geometry,
	}).Info("loaded disk image")

	return img, nil
}

// Parse makes an image from the contents of a file. MSA files are
// recognized by their header whatever the format says.
func Parse(data []byte, format Format) (*Image, error) {
	img := &Image{Format: format}

	if format == FormatMSA || IsMSA(data) {
		raw, g, err := DecodeMSA(data)
		if err != nil {
			return nil, err
		}
		img.Format = FormatMSA
		img.data = raw
		img.Geometry = g
		return img, nil
	}

	if len(data) < SectorSize {
		return nil, errors.Errorf("image of %d bytes is too small", len(data))
	}
	img.data = data
	img.Geometry = DetectGeometry(data)
	if img.Geometry.Tracks == 0 {
		return nil, errors.Errorf("can't work out geometry of %d byte image", len(data))
	}

	return img, nil
}

// Bytes returns the raw sectors of the image.
func (img *Image) Bytes() []byte {
	return img.data
}

// Dirty returns whether the image has been written since it was loaded or
// last saved.
func (img *Image) Dirty() bool {
	return img.dirty
}

// Executable returns whether TOS would run the boot sector.
func (img *Image) Executable() bool {
	return BootExecutable(img.data)
}

// ReadSector returns a copy of a sector.
func (img *Image) ReadSector(track, side, sector int) ([]byte, error) {
	if !img.Geometry.contains(track, side, sector) {
		return nil, errors.Wrapf(ErrSectorNotFound, "track %d side %d sector %d", track, side, sector)
	}

	offset := img.Geometry.offset(track, side, sector)
	if offset+SectorSize > len(img.data) {
		return nil, errors.Wrapf(ErrSectorNotFound, "track %d side %d sector %d past end of image",
			track, side, sector)
	}

	data := make([]byte, SectorSize)
	copy(data, img.data[offset:])

	return data, nil
}

// WriteSector replaces a sector. Short data is padded with zeros.
func (img *Image) WriteSector(track, side, sector int, data []byte) error {
	if img.WriteProtected {
		return ErrWriteProtected
	}
	if !img.Geometry.contains(track, side, sector) {
		return errors.Wrapf(ErrSectorNotFound, "track %d side %d sector %d", track, side, sector)
	}

	offset := img.Geometry.offset(track, side, sector)
	if offset+SectorSize > len(img.data) {
		return errors.Wrapf(ErrSectorNotFound, "track %d side %d sector %d past end of image",
			track, side, sector)
	}

	n := copy(img.data[offset:offset+SectorSize], data)
	for i := offset + n; i < offset+SectorSize; i++ {
		img.data[i] = 0
	}
	img.dirty = true

	return nil
}

// Encode returns the image in the given file format.
func (img *Image) Encode(format Format) ([]byte, error) {
	if format == FormatMSA {
		return EncodeMSA(img.data, img.Geometry)
	}
	return img.data, nil
}

// Save writes the image back to its file if it has changed. Images whose
// boot sector looks broken aren't saved.
func (img *Image) Save() error {
	if !img.dirty || img.Path == "" {
		return nil
	}

	if !bootSectorSane(img.data) {
		log.WithField("path", img.Path).
			Warn("boot sector has zero sectors per cluster, not saving changes")
		return nil
	}

	return img.SaveAs(img.Path, img.Format)
}

// SaveAs writes the image to a file in the given format.
func (img *Image) SaveAs(path string, format Format) error {
	data, err := img.Encode(format)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "saving disk image")
	}
	if path == img.Path {
		img.dirty = false
	}
	log.WithField("path", path).Debug("saved disk image")

	return nil
}
