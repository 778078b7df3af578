// Copyright 2012 Lawrence Kesteloot

package cmd

import (
	"github.com/spf13/pflag"
)

// Command-line flags.
var (
	flagDebug  bool
	flagTrace  bool
	flagFast   bool
	flagDriveB bool

	flagTrack  int
	flagSide   int
	flagSector int
	flagCount  int
)

func globalFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("global", pflag.ExitOnError)
	fs.BoolVar(&flagDebug, "debug", false, "log commands and register writes")
	fs.BoolVar(&flagTrace, "trace", false, "log every phase and DMA burst")
	fs.BoolVar(&flagFast, "fast", false, "divide floppy delays by 10")
	fs.BoolVar(&flagDriveB, "drive-b", false, "put the image in drive B instead of A")
	return fs
}

// Flags for the track and side a command works on, and optionally the
// sectors.
func locationFlags(sectors bool) *pflag.FlagSet {
	fs := pflag.NewFlagSet("location", pflag.ExitOnError)
	fs.IntVarP(&flagTrack, "track", "t", 0, "track")
	fs.IntVarP(&flagSide, "side", "s", 0, "side (0 or 1)")
	if sectors {
		fs.IntVarP(&flagSector, "sector", "S", 1, "first sector")
		fs.IntVarP(&flagCount, "count", "c", 1, "number of sectors")
	}
	return fs
}
