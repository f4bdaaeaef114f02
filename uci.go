package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"quint-chess/fen"
	"quint-chess/perft"
	"quint-chess/quintmg"
)

func main() {
	uciLoop(os.Stdin, os.Stdout)
}

func uciLoop(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	lut := quintmg.NewLookupTable()
	board := quintmg.NewStartingPosition(lut) // the game board

	for scanner.Scan() {
		line := scanner.Text()
		tokens := strings.Fields(line)
		if len(tokens) == 0 { // ignore blank lines
			continue
		}
		switch strings.ToLower(tokens[0]) {
		case "uci":
			fmt.Fprintln(out, "id name QuintChess perft 0.1")
			fmt.Fprintln(out, "id author quint-chess")
			fmt.Fprintln(out, "uciok")
		case "isready":
			fmt.Fprintln(out, "readyok")
		case "ucinewgame":
			board = quintmg.NewStartingPosition(lut)
		case "quit":
			return
		case "stop":
			// Nothing runs in the background.
		case "go":
			goCommand(out, board, tokens[1:])
		case "position":
			if next := positionCommand(out, lut, tokens[1:]); next != nil {
				board = next
			}
		case "d":
			legal := board.LegalMoves()
			fmt.Fprintln(out, "Fen:", fen.Encode(board))
			fmt.Fprintln(out, "Legal moves:", strings.Join(legal.Strings(), " "))
			if board.IsCheck() {
				fmt.Fprintln(out, "Checkers: in check")
			}
		default:
			fmt.Fprintln(out, "info string Unknown command:", line)
		}
	}
}

// goCommand only understands "go perft N". Searching is left to an engine
// built on top of the generator.
func goCommand(out io.Writer, board *quintmg.Position, args []string) {
	if len(args) == 0 || strings.ToLower(args[0]) != "perft" {
		fmt.Fprintln(out, "info string only 'go perft <depth>' is supported")
		return
	}
	if len(args) < 2 {
		fmt.Fprintln(out, "info string Malformed go command option perft")
		return
	}
	depth, err := strconv.Atoi(args[1])
	if err != nil || depth < 1 {
		fmt.Fprintln(out, "info string Malformed go command option; could not convert perft depth")
		return
	}
	div, err := perft.Divide(board, depth)
	if err != nil {
		fmt.Fprintln(out, "info string", err)
		return
	}
	for _, e := range perft.Sorted(div) {
		fmt.Fprintf(out, "%s: %d\n", e.Move, e.Nodes)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Nodes searched:", perft.Total(div))
}

// positionCommand builds the position described by "startpos|fen <fen>
// [moves ...]". It returns nil when the base position is unusable; a bad move
// stops the sequence and keeps the position reached so far.
func positionCommand(out io.Writer, lut *quintmg.LookupTable, args []string) *quintmg.Position {
	if len(args) == 0 {
		fmt.Fprintln(out, "info string Malformed position command")
		return nil
	}
	var board *quintmg.Position
	rest := args[1:]
	switch strings.ToLower(args[0]) {
	case "startpos":
		board = quintmg.NewStartingPosition(lut)
	case "fen":
		var fenFields []string
		for len(rest) > 0 && strings.ToLower(rest[0]) != "moves" {
			fenFields = append(fenFields, rest[0])
			rest = rest[1:]
		}
		if len(fenFields) == 0 {
			fmt.Fprintln(out, "info string Invalid fen position")
			return nil
		}
		var err error
		board, err = fen.NewPosition(lut, strings.Join(fenFields, " "))
		if err != nil {
			fmt.Fprintln(out, "info string Invalid fen position:", err)
			return nil
		}
	default:
		fmt.Fprintln(out, "info string Invalid position subcommand")
		return nil
	}

	if len(rest) > 0 && strings.ToLower(rest[0]) == "moves" {
		for _, moveStr := range rest[1:] {
			if _, err := board.PlayUCIMove(moveStr); err != nil {
				fmt.Fprintln(out, "info string Move", moveStr, "rejected for position", fen.Encode(board)+":", err)
				break
			}
		}
	}

	switch {
	case board.IsCheckmate():
		fmt.Fprintln(out, "info string checkmate,", board.Turn(), "to move has lost")
	case board.IsStalemate():
		fmt.Fprintln(out, "info string stalemate")
	}
	return board
}
