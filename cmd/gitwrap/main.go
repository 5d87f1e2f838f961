package main

import (
	"context"
	"fmt"
	"os"
)

const defaultVersion = "dev"

// version is overridden at build time with -ldflags "-X main.version=..."
var version = defaultVersion

func main() {
	initVersion()

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
