package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jlrickert/cli-toolkit/toolkit"
	"github.com/jlrickert/labeler/pkg/cli"
)

func main() {
	ctx := context.Background()

	rt, err := toolkit.NewRuntime()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	// cli.Run has already rendered the error to stderr.
	exitCode, err := cli.Run(ctx, rt, os.Args[1:])
	if err != nil {
		os.Exit(exitCode)
	}
}
