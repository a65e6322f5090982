package main

import (
	"context"
	"flag"
	"fmt"
	"os"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err == flag.ErrHelp {
		os.Exit(1)
	} else if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	var cmd string
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "", "-h", "--help", "help":
		usage()
		return flag.ErrHelp
	case "demo":
		return NewDemoCommand().Run(ctx, args)
	default:
		return fmt.Errorf(`bvsls %s: unknown command`, cmd)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `
Bvsls drives a single bit-vector valuation through randomized repair.

Usage:

	bvsls <command> [arguments]

The commands are:

	demo    repeatedly sample and repair a variable under a range fact
	help    this screen
`[1:])
}
