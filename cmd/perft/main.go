package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime/pprof"
	"time"

	"quint-chess/fen"
	"quint-chess/internal/logging"
	"quint-chess/perft"
	"quint-chess/verify"
)

func main() {
	position := flag.String("fen", fen.StartPos, "FEN string (defaults to initial position)")
	depth := flag.Int("depth", 0, "Perft depth (required)")
	divide := flag.Bool("divide", false, "Print per-move node counts at root")
	repeat := flag.Int("repeat", 1, "Repeat perft N times and report aggregate (for steadier timings)")
	label := flag.String("label", "", "Optional label prefix for one-line output")
	cpuProf := flag.String("cpuprofile", "", "Write CPU profile to file during run")
	memProf := flag.String("memprofile", "", "Write heap profile to file after run")
	workers := flag.Int("workers", 1, "Root moves searched in parallel (0 = GOMAXPROCS)")
	against := flag.String("verify", "", "Compare the divide with a reference generator: dragontooth, goose or corentings")
	level := flag.String("log-level", "info", "Log level: debug, info, warn or error")
	flag.Parse()

	log, err := logging.Setup(*level, "perft")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if *depth <= 0 {
		fmt.Fprintln(os.Stderr, "-depth must be > 0")
		os.Exit(2)
	}

	board, err := fen.NewPosition(nil, *position)
	if err != nil {
		log.Error("parsing FEN", "fen", *position, "error", err)
		os.Exit(2)
	}

	ctx := context.Background()

	if *against != "" {
		os.Exit(runVerify(ctx, log, *position, *depth, *workers, *against))
	}

	// Optional divide output
	if *divide {
		div, err := perft.ParallelDivide(ctx, board, *depth, *workers)
		if err != nil {
			log.Error("divide", "error", err)
			os.Exit(1)
		}
		for _, e := range perft.Sorted(div) {
			fmt.Printf("%s: %d\n", e.Move, e.Nodes)
		}
		fmt.Printf("Total: %d\n", perft.Total(div))
		return
	}

	// Optional CPU profiling
	if *cpuProf != "" {
		f, err := os.Create(*cpuProf)
		if err != nil {
			log.Error("creating cpuprofile", "error", err)
			os.Exit(2)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Error("start cpu profile", "error", err)
			os.Exit(2)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	// Timing loop
	var totalNodes uint64
	start := time.Now()
	for i := 0; i < *repeat; i++ {
		div, err := perft.ParallelDivide(ctx, board, *depth, *workers)
		if err != nil {
			log.Error("perft", "error", err)
			os.Exit(1)
		}
		totalNodes += perft.Total(div)
	}
	elapsed := time.Since(start)
	nps := float64(totalNodes) / elapsed.Seconds()
	log.Debug("perft done", "depth", *depth, "repeat", *repeat, "workers", *workers)

	// Single line: Depth Nodes Time NPS
	fmt.Printf("%s \t%d \t\t%d \t\t%s \t%.0f\n", *label, *depth, totalNodes, elapsed, nps)

	// Optional heap profile after run
	if *memProf != "" {
		f, err := os.Create(*memProf)
		if err != nil {
			log.Error("creating memprofile", "error", err)
			os.Exit(2)
		}
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Error("write heap profile", "error", err)
			os.Exit(2)
		}
		_ = f.Close()
	}
}

// runVerify prints every root move whose count differs from the reference
// and returns the process exit code.
func runVerify(ctx context.Context, log *slog.Logger, position string, depth, workers int, name string) int {
	ref, err := verify.ByName(name)
	if err != nil {
		log.Error("reference", "error", err)
		return 2
	}
	board, err := fen.NewPosition(nil, position)
	if err != nil {
		log.Error("parsing FEN", "error", err)
		return 2
	}
	ours, err := perft.ParallelDivide(ctx, board, depth, workers)
	if err != nil {
		log.Error("divide", "error", err)
		return 1
	}
	start := time.Now()
	theirs, err := ref.Divide(position, depth)
	if err != nil {
		log.Error("reference divide", "reference", ref.Name(), "error", err)
		return 1
	}
	log.Info("reference divide done", "reference", ref.Name(), "elapsed", time.Since(start))

	mismatches := verify.Compare(ours, theirs)
	for _, m := range mismatches {
		fmt.Println(m)
	}
	fmt.Printf("Total: ours %d %s %d, %d mismatching root moves\n",
		perft.Total(ours), ref.Name(), perft.Total(theirs), len(mismatches))
	if len(mismatches) > 0 {
		return 1
	}
	return 0
}
