package main

import (
	"github.com/sergev/floppy/adapter"

	// Blank-imported so each adapter's init() registers itself with the
	// adapter registry, and so the decode subcommand registers itself
	// with the root command.
	_ "github.com/sergev/floppy/cmd"
	_ "github.com/sergev/floppy/greaseweazle"
	_ "github.com/sergev/floppy/kryoflux"
	_ "github.com/sergev/floppy/supercardpro"
)

func main() {
	adapter.Execute()
}
