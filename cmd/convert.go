// Copyright 2012 Lawrence Kesteloot

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"stfloppy/floppy"
)

var convertCmd = &cobra.Command{
	Use:   "convert IN OUT",
	Short: "Convert between .ST and .MSA",
	Long: `Convert a disk image to the format given by the output file's
extension: .msa for Magic Shadow Archiver, anything else for a raw .ST image.`,
	Args:                  cobra.ExactArgs(2),
	DisableFlagsInUseLine: true,
	Run: func(cmd *cobra.Command, args []string) {
		img, err := floppy.Load(args[0])
		if err != nil {
			fail(err)
		}

		format := floppy.FormatForPath(args[1])
		if err := img.SaveAs(args[1], format); err != nil {
			fail(err)
		}

		fmt.Printf("%s: %v, %v\n", args[1], format, img.Geometry)
	},
}

var (
	createTracks int
	createSides  int
	createSpt    int
)

var createCmd = &cobra.Command{
	Use:   "create IMAGE",
	Short: "Make a blank formatted disk image",
	Long: `Make a disk image with an empty file system, formatted the way TOS
does it. The format is given by the extension.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		img, err := floppy.Blank(createTracks, createSides, createSpt)
		if err != nil {
			fail(err)
		}

		if err := img.SaveAs(args[0], floppy.FormatForPath(args[0])); err != nil {
			fail(err)
		}

		fmt.Printf("%s: %v\n", args[0], img.Geometry)
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	createCmd.Flags().IntVar(&createTracks, "tracks", 80, "number of tracks")
	createCmd.Flags().IntVar(&createSides, "sides", 2, "number of sides")
	createCmd.Flags().IntVar(&createSpt, "sectors", 9, "sectors per track")
	rootCmd.AddCommand(createCmd)
}
