// Command benchrun runs the micro benchmarks and a set of perft throughput
// runs, printing the results in one place.
//
// Usage: go run ./cmd/benchrun [-short] [-workers N]
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

type perftRun struct {
	label string
	fen   string
	depth int
}

var perftRuns = []perftRun{
	{"Initial", "", 3},
	{"Initial", "", 4},
	{"Initial", "", 5},
	{"Initial", "", 6},
	{"Kiwipete", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 3},
	{"Kiwipete", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 4},
	{"Pos3", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 5},
}

// run executes a command and prints its combined output. Returns exit code.
func run(name string, args ...string) int {
	cmd := exec.Command(name, args...)
	cmd.Env = os.Environ()
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	fmt.Print(out.String())
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	fmt.Fprintf(os.Stderr, "error running %s: %v\n", name, err)
	return 1
}

func main() {
	short := flag.Bool("short", false, "Skip the deepest perft runs")
	workers := flag.Int("workers", 1, "Workers passed to cmd/perft (0 = GOMAXPROCS)")
	flag.Parse()

	fmt.Println("Columns: BENCHMARK  N  ns/op  B/op  allocs/op")
	code := run("go", "test", "./bench", "./quintmg", "./perft", "-run", "^$", "-bench", ".", "-benchmem", "-benchtime=1s")
	if code != 0 {
		os.Exit(code)
	}

	fmt.Println("\nPerft Performance:")
	fmt.Println("TEST \t\tDepth \t\tNodes \t\tTime \tNPS")
	for _, r := range perftRuns {
		if *short && r.depth > 4 {
			continue
		}
		args := []string{"run", "./cmd/perft", "-depth", strconv.Itoa(r.depth), "-label", r.label, "-workers", strconv.Itoa(*workers)}
		if r.fen != "" {
			args = append(args, "-fen", r.fen)
		}
		run("go", args...)
	}
}
