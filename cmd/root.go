// Copyright 2012 Lawrence Kesteloot

// Package cmd is the stfdc command line: it loads disk images into an
// emulated ST and runs floppy operations on them through the emulated
// controller.
package cmd

import (
	"fmt"
	"os"

	"stfloppy/floppy"
	"stfloppy/machine"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stfdc",
	Short: "Atari ST floppy controller emulator",
	Long: `Runs floppy disk operations on .ST and .MSA disk images through an
emulation of the Atari ST's WD1772 floppy controller and DMA chip.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		switch {
		case flagTrace:
			log.SetLevel(log.TraceLevel)
		case flagDebug:
			log.SetLevel(log.DebugLevel)
		default:
			log.SetLevel(log.WarnLevel)
		}
	},
}

// Execute runs the command line.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().AddFlagSet(globalFlags())
}

// Print the error and quit.
func fail(err error) {
	fmt.Println(err)
	os.Exit(1)
}

// The drive images are inserted in.
func imageDrive() int {
	if flagDriveB {
		return 1
	}
	return 0
}

// Make a machine with the image at path in its drive.
func bootWithImage(path string) (*machine.Machine, *floppy.Image, error) {
	img, err := floppy.Load(path)
	if err != nil {
		return nil, nil, err
	}

	config := machine.DefaultConfig()
	config.FDC.FastFloppy = flagFast
	m := machine.New(config)

	if err := m.Insert(imageDrive(), img); err != nil {
		return nil, nil, err
	}

	return m, img, nil
}
