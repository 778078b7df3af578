// Copyright 2012 Lawrence Kesteloot

package cmd

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"stfloppy/floppy"
)

// Where in RAM sectors are read to and written from, like a TOS buffer.
const diskBuffer = 0x10000

var readOutput string

var readCmd = &cobra.Command{
	Use:   "read IMAGE",
	Short: "Read sectors through the emulated controller",
	Long: `Read sectors of a disk image the way TOS does, by programming the DMA
chip and the WD1772 and waiting for the interrupt. The data is hex dumped, or
written raw to a file with --output.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m, _, err := bootWithImage(args[0])
		if err != nil {
			fail(err)
		}

		start := m.Clock()
		err = m.Floprd(diskBuffer, imageDrive(), flagTrack, flagSide, flagSector, flagCount)
		if err != nil {
			fail(err)
		}

		data := make([]byte, flagCount*floppy.SectorSize)
		m.ReadBlock(diskBuffer, data)

		if readOutput != "" {
			if err := os.WriteFile(readOutput, data, 0644); err != nil {
				fail(errors.Wrap(err, "writing sectors"))
			}
		} else {
			fmt.Print(hex.Dump(data))
		}
		printElapsed(m.Clock() - start)
	},
}

func init() {
	readCmd.Flags().AddFlagSet(locationFlags(true))
	readCmd.Flags().StringVarP(&readOutput, "output", "o", "", "file to write the raw sectors to")
	rootCmd.AddCommand(readCmd)
}
