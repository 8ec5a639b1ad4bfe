package main

import (
	"fmt"
	"os"

	"github.com/HamStudy/vtable/internal/cli"
)

// Version is set through -ldflags
var Version = "dev"

func main() {
	if err := cli.NewRootCmd(Version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
