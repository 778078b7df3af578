// Copyright 2012 Lawrence Kesteloot

package main

import (
	"stfloppy/cmd"
)

func main() {
	cmd.Execute()
}
