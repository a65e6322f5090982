package main

import (
	"context"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"math/big"
	"os"

	"github.com/nbjorner/bv"
)

// DemoCommand drives a single Valuation through repeated random repair
// steps and logs each committed value, for manually exercising the
// sampling/repair loop from the command line.
type DemoCommand struct{}

// NewDemoCommand returns a new instance of DemoCommand.
func NewDemoCommand() *DemoCommand {
	return &DemoCommand{}
}

// Run executes the "demo" subcommand.
func (cmd *DemoCommand) Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("bvsls-demo", flag.ContinueOnError)
	width := fs.Uint("width", 32, "bit width of the demo variable")
	lo := fs.Uint64("lo", 0, "inclusive lower bound of the range fact")
	hi := fs.Uint64("hi", 0, "exclusive upper bound of the range fact (lo == hi means full domain)")
	steps := fs.Int("steps", 10, "number of sample/repair steps to run")
	seed := fs.Int64("seed", 1, "seed for the random source")
	verbose := fs.Bool("v", false, "verbose logging")
	fs.Usage = cmd.usage
	if err := fs.Parse(args); err != nil {
		return err
	}

	log.SetFlags(0)
	if !*verbose {
		log.SetOutput(ioutil.Discard)
	}

	v := bv.NewValuation(*width)
	if *lo != *hi {
		loBV := bv.NewBitVec(*width)
		hiBV := bv.NewBitVec(*width)
		v.SetValue(loBV, new(big.Int).SetUint64(*lo))
		v.SetValue(hiBV, new(big.Int).SetUint64(*hi))
		v.AddRange(loBV, hiBV)
		if !v.InitFixed() {
			return fmt.Errorf("no feasible value exists after AddRange")
		}
	}

	log.Printf("[demo] start width=%d lo=%d hi=%d bits=%s", *width, *lo, *hi, v.BitsSnapshot())

	r := bv.NewMathRand(*seed)
	dst := bv.NewBitVec(*width)
	for i := 0; i < *steps; i++ {
		v.GetVariant(dst, r)
		tryDown := r.NextWord()&1 == 0
		if v.SetRepair(tryDown, dst) {
			log.Printf("[demo] step=%d bits=%s", i, v.BitsSnapshot())
		} else {
			log.Printf("[demo] step=%d bits=%s (unchanged)", i, v.BitsSnapshot())
		}
	}

	fmt.Fprintln(os.Stdout, v.Dump())
	return nil
}

func (cmd *DemoCommand) usage() {
	fmt.Fprintln(os.Stderr, `
usage: bvsls demo [arguments]

Arguments:

	-width
	    Bit width of the demo variable (default 32).
	-lo, -hi
	    Half-open range fact [lo, hi) to add before sampling. Leave both
	    at 0 for the full domain.
	-steps
	    Number of sample/repair steps to run (default 10).
	-seed
	    Seed for the random source (default 1).
	-v
	    Enable verbose logging.
`[1:])
}
