// Command cardpaste reads a copied bingo card, from the clipboard or stdin,
// and prints the grid it would produce along with any validation problems.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/atotto/clipboard"

	"github.com/DoyleJ11/bingo-tracker/internal/engine"
)

func main() {
	fromStdin := flag.Bool("stdin", false, "read the card from stdin instead of the clipboard")
	centerNumbered := flag.Bool("center", false, "the center cell holds a number (no free space)")
	grid := flag.Bool("grid", false, "input has one card row per line")
	flag.Parse()

	text, err := readInput(*fromStdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cardpaste:", err)
		os.Exit(1)
	}

	res, err := parse(text, *centerNumbered, *grid)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cardpaste:", err)
		os.Exit(1)
	}
	report(os.Stdout, res)
	if len(res.Errors) > 0 {
		os.Exit(2)
	}
}

func readInput(fromStdin bool) (string, error) {
	if fromStdin {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	return text, nil
}

func parse(text string, centerNumbered, grid bool) (engine.PasteResult, error) {
	if !grid {
		return engine.ParsePaste(text, centerNumbered)
	}
	g, ignored := engine.ParseGridPaste(text, centerNumbered)
	return engine.PasteResult{
		Grid:    g,
		Invalid: ignored,
		Errors:  engine.Validate(g, centerNumbered),
	}, nil
}

func report(w io.Writer, res engine.PasteResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	header := make([]string, 0, engine.Size)
	for _, col := range engine.Columns {
		header = append(header, col.Letter)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range res.Grid.Rows() {
		for i, v := range row {
			if v == "" {
				row[i] = "."
			}
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()

	if res.Invalid > 0 {
		fmt.Fprintf(w, "ignored %d values\n", res.Invalid)
	}
	if res.Excess > 0 {
		fmt.Fprintf(w, "dropped %d extra numbers\n", res.Excess)
	}
	if len(res.Errors) == 0 {
		fmt.Fprintln(w, "ok")
		return
	}
	fmt.Fprintln(w, engine.Summarize(res.Errors))
	for _, e := range res.Errors {
		fmt.Fprintf(w, "  %c%d: %s\n", engine.Columns[e.Col].Letter[0], e.Row+1, e.Message)
	}
}
