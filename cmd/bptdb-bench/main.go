package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"

	"github.com/alexhholmes/bptdb/bench"
)

var (
	sizes     *string
	orders    *string
	baselines *string
	seed      *uint64
	csvPath   *string
	chartPath *string
)

func parseInts(s string) ([]int, error) {
	var out []int
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %q", f)
		}
		out = append(out, n)
	}
	return out, nil
}

func main() {
	setupFlags()

	cfg := bench.DefaultConfig()
	cfg.Seed = *seed
	var err error
	if cfg.Sizes, err = parseInts(*sizes); err != nil {
		fatal(err)
	}
	if cfg.Orders, err = parseInts(*orders); err != nil {
		fatal(err)
	}
	if len(cfg.Sizes) == 0 {
		fatal(errors.New("at least one size is required"))
	}
	cfg.Baselines = nil
	for _, b := range strings.Split(*baselines, ",") {
		if b = strings.TrimSpace(b); b != "" {
			cfg.Baselines = append(cfg.Baselines, b)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := bench.Run(ctx, cfg)
	if err != nil {
		fatal(err)
	}

	header := color.New(color.Bold)
	for _, size := range cfg.Sizes {
		header.Printf("\n%d keys\n", size)
		fmt.Printf("%-16s", "index")
		for _, op := range bench.Operations {
			fmt.Printf("%16s", op)
		}
		fmt.Println()
		for _, idx := range bench.Indexes(results) {
			fmt.Printf("%-16s", idx)
			for _, op := range bench.Operations {
				for _, r := range results {
					if r.Index == idx && r.Size == size && r.Operation == op {
						fmt.Printf("%13.0fns", r.NsPerOp())
					}
				}
			}
			fmt.Println()
		}
	}

	if *csvPath != "" {
		f, err := os.Create(*csvPath)
		if err != nil {
			fatal(err)
		}
		if err := bench.WriteCSV(f, results); err != nil {
			fatal(err)
		}
		if err := f.Close(); err != nil {
			fatal(err)
		}
		color.Green("wrote %s", *csvPath)
	}

	if *chartPath != "" {
		largest := cfg.Sizes[len(cfg.Sizes)-1]
		if err := bench.Chart(*chartPath, results, largest); err != nil {
			fatal(err)
		}
		color.Green("wrote %s", *chartPath)
	}
}

func fatal(err error) {
	color.Red("bptdb-bench: %v", err)
	os.Exit(1)
}

func setupFlags() {
	sizes = flag.String("sizes", "1000,10000", "Comma separated key counts.")
	orders = flag.String("orders", "4,8,16,32", "Comma separated B+ tree orders.")
	baselines = flag.String("baselines", "linear,google-btree,pebble", "Comma separated baseline indexes.")
	seed = flag.Uint64("seed", 1, "Workload random seed.")
	csvPath = flag.String("csv", "", "Write raw results to this CSV file.")
	chartPath = flag.String("chart", "", "Write a latency bar chart for the largest size (png, svg or pdf).")
	flag.Usage = func() {
		fmt.Println("\nbptdb benchmark\n\nArguments:")
		flag.PrintDefaults()
	}
	flag.Parse()
}
