// Copyright 2012 Lawrence Kesteloot

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"stfloppy/floppy"
)

var infoCmd = &cobra.Command{
	Use:                   "info IMAGE",
	Short:                 "Show a disk image's geometry",
	Long:                  `Show the format, geometry, write protection and boot sector of an .ST or .MSA image.`,
	Args:                  cobra.ExactArgs(1),
	DisableFlagsInUseLine: true,
	Run: func(cmd *cobra.Command, args []string) {
		img, err := floppy.Load(args[0])
		if err != nil {
			fail(err)
		}

		fmt.Printf("Format:          %v\n", img.Format)
		fmt.Printf("Tracks:          %d\n", img.Geometry.Tracks)
		fmt.Printf("Sides:           %d\n", img.Geometry.Sides)
		fmt.Printf("Sectors/track:   %d\n", img.Geometry.SectorsPerTrack)
		fmt.Printf("Size:            %d bytes\n", img.Geometry.Size())
		fmt.Printf("Write protected: %v\n", img.WriteProtected)
		fmt.Printf("Boot executable: %v\n", img.Executable())
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
