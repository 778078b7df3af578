// Copyright 2013 Lawrence Kesteloot

package floppy

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// DriveCount is the number of floppy drives the ST can address.
const DriveCount = 2

// Drives are the ST's two floppy drives, A (0) and B (1), and the images in
// them. The FDC reads and writes sectors through it.
type Drives struct {
	images   [DriveCount]*Image
	onChange func(drive int)
}

// NewDrives returns two empty drives.
func NewDrives() *Drives {
	return &Drives{}
}

// OnChange registers a function to call when a disk is inserted or ejected.
func (d *Drives) OnChange(fn func(drive int)) {
	d.onChange = fn
}

func (d *Drives) changed(drive int) {
	if d.onChange != nil {
		d.onChange(drive)
	}
}

func validDrive(drive int) bool {
	return drive >= 0 && drive < DriveCount
}

// Image returns the image in a drive, or nil.
func (d *Drives) Image(drive int) *Image {
	if !validDrive(drive) {
		return nil
	}
	return d.images[drive]
}

// Insert puts an image in a drive, ejecting what was there.
func (d *Drives) Insert(drive int, img *Image) error {
	if !validDrive(drive) {
		return errors.Errorf("no drive %d", drive)
	}
	if img == nil {
		return errors.Errorf("no image for drive %d", drive)
	}
	if err := d.Eject(drive); err != nil {
		return err
	}

	d.images[drive] = img
	log.WithFields(log.Fields{
		"drive": string(rune('A' + drive)),
		"path":  img.Path,
	}).Debug("inserted disk")
	d.changed(drive)

	return nil
}

// Eject removes the image from a drive, saving it if it changed.
func (d *Drives) Eject(drive int) error {
	if !validDrive(drive) {
		return errors.Errorf("no drive %d", drive)
	}

	img := d.images[drive]
	if img == nil {
		return nil
	}

	d.images[drive] = nil
	d.changed(drive)

	return errors.Wrapf(img.Save(), "ejecting drive %c", 'A'+drive)
}

// Flush saves every changed image without ejecting it.
func (d *Drives) Flush() error {
	for _, img := range d.images {
		if img != nil {
			if err := img.Save(); err != nil {
				return err
			}
		}
	}

	return nil
}

func (d *Drives) Inserted(drive int) bool {
	return d.Image(drive) != nil
}

func (d *Drives) WriteProtected(drive int) bool {
	img := d.Image(drive)
	return img != nil && img.WriteProtected
}

func (d *Drives) SectorsPerTrack(drive int) int {
	img := d.Image(drive)
	if img == nil {
		return 0
	}
	return img.Geometry.SectorsPerTrack
}

func (d *Drives) ReadSector(drive, track, side, sector int) ([]byte, error) {
	img := d.Image(drive)
	if img == nil {
		return nil, ErrNoDisk
	}
	return img.ReadSector(track, side, sector)
}

func (d *Drives) WriteSector(drive, track, side, sector int, data []byte) error {
	img := d.Image(drive)
	if img == nil {
		return ErrNoDisk
	}
	return img.WriteSector(track, side, sector, data)
}
