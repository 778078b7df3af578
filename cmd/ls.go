// Copyright 2012 Lawrence Kesteloot

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"stfloppy/floppy"
)

var lsCmd = &cobra.Command{
	Use:   "ls [DIR]",
	Short: "List disk images",
	Long: `List the .ST and .MSA images in a directory with their geometry.
Names are sorted so that "Disk 2" comes before "Disk 10".`,
	Args:                  cobra.MaximumNArgs(1),
	DisableFlagsInUseLine: true,
	Run: func(cmd *cobra.Command, args []string) {
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}

		names, err := imageNames(dir)
		if err != nil {
			fail(err)
		}

		for _, name := range names {
			img, err := floppy.Load(filepath.Join(dir, name))
			if err != nil {
				log.Warn(err)
				fmt.Printf("%-30s (unreadable)\n", name)
				continue
			}

			boot := ""
			if img.Executable() {
				boot = " bootable"
			}
			fmt.Printf("%-30s %-3v %v%s\n", name, img.Format, img.Geometry, boot)
		}
	},
}

// Names of the disk images in dir, sorted numerically.
func imageNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "listing images")
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".st" || ext == ".msa" {
			names = append(names, entry.Name())
		}
	}

	sortNumerically(names)

	return names, nil
}

func init() {
	rootCmd.AddCommand(lsCmd)
}
