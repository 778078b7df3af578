// Copyright 2012 Lawrence Kesteloot

package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"stfloppy/fdc"
	"stfloppy/floppy"
)

var writeInput string

var writeCmd = &cobra.Command{
	Use:   "write IMAGE",
	Short: "Write sectors through the emulated controller",
	Long: `Write the contents of a file to sectors of a disk image through the
emulated DMA chip and WD1772, then save the image. The file is padded with
zeros to a whole number of sectors.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(writeInput)
		if err != nil {
			fail(errors.Wrap(err, "reading sectors to write"))
		}
		count := (len(data) + floppy.SectorSize - 1) / floppy.SectorSize
		if count == 0 {
			fail(errors.New("nothing to write"))
		}

		m, img, err := bootWithImage(args[0])
		if err != nil {
			fail(err)
		}

		padded := make([]byte, count*floppy.SectorSize)
		copy(padded, data)
		m.WriteBlock(diskBuffer, padded)

		start := m.Clock()
		err = m.Flopwr(diskBuffer, imageDrive(), flagTrack, flagSide, flagSector, count)
		if err != nil {
			fail(err)
		}
		printElapsed(m.Clock() - start)

		if err := m.Drives.Flush(); err != nil {
			fail(err)
		}
		if img.Dirty() {
			fmt.Println("Image not saved, its boot sector is broken")
		}
	},
}

func init() {
	writeCmd.Flags().AddFlagSet(locationFlags(true))
	writeCmd.Flags().StringVarP(&writeInput, "input", "i", "", "file of sectors to write")
	writeCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(writeCmd)
}

// Print how long an operation took on the emulated machine.
func printElapsed(cycles uint64) {
	fmt.Printf("%d cycles (%.3f s)\n", cycles, float64(cycles)/fdc.CPUHz)
}
