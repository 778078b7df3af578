// Copyright 2012 Lawrence Kesteloot

package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
)

var trackCmd = &cobra.Command{
	Use:   "track IMAGE",
	Short: "Dump a raw track",
	Long: `Run a Read Track command and hex dump what the DMA wrote to memory:
gaps, address marks, ID fields, sector data and CRCs, as the controller would
see them on a real disk.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m, _, err := bootWithImage(args[0])
		if err != nil {
			fail(err)
		}

		data, err := m.ReadTrack(diskBuffer, imageDrive(), flagTrack, flagSide)
		if err != nil {
			fail(err)
		}

		fmt.Print(hex.Dump(data))
	},
}

var addressCount int

var addressCmd = &cobra.Command{
	Use:   "address IMAGE",
	Short: "Read ID fields",
	Long: `Run Read Address commands and show the ID fields that reached memory,
one per line: track, side, sector, size code and CRC.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m, _, err := bootWithImage(args[0])
		if err != nil {
			fail(err)
		}

		data, err := m.ReadAddress(diskBuffer, imageDrive(), flagTrack, flagSide, addressCount)
		if err != nil {
			fail(err)
		}

		for i := 0; i+6 <= len(data); i += 6 {
			id := data[i : i+6]
			fmt.Printf("track %2d side %d sector %2d size %d crc %02X%02X\n",
				id[0], id[1], id[2], 128<<id[3], id[4], id[5])
		}
		if missing := addressCount - len(data)/6; missing > 0 {
			fmt.Printf("(%d more still in the DMA buffer)\n", missing)
		}
	},
}

func init() {
	trackCmd.Flags().AddFlagSet(locationFlags(false))
	rootCmd.AddCommand(trackCmd)

	addressCmd.Flags().AddFlagSet(locationFlags(false))
	addressCmd.Flags().IntVarP(&addressCount, "count", "n", 9, "number of ID fields to read")
	rootCmd.AddCommand(addressCmd)
}
