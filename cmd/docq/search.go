package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/docqd/internal/highlight"
)

// searchCmd searches a block of text for a typed keyword
var searchCmd = &cobra.Command{
	Use:   "search [file] [keyword]",
	Short: "Search text for a keyword and step through the matches",
	Long: `Search a text file for a keyword and step through the matches.
The keyword is segmented the same way typed search is segmented
everywhere else, and every matched segment is marked in the printed
text. After the text is printed, type n (next match), p (previous
match), or q (quit) to navigate.

Reads the text from [file], or from standard input when [file] is "-";
reading from standard input skips the navigation prompt.

Examples:
  # Search a saved passage
  docq search contract.txt "termination fee"

  # Pipe text in
  pdftotext contract.pdf - | docq search - "termination fee"`,
	Args: cobra.ExactArgs(2),
	RunE: runSearch,
}

// runSearch handles the search command
func runSearch(cmd *cobra.Command, args []string) error {
	file, query := args[0], args[1]

	var (
		text []byte
		err  error
	)
	if file == "-" {
		text, err = io.ReadAll(cmd.InOrStdin())
	} else {
		text, err = os.ReadFile(file)
	}
	if err != nil {
		return fmt.Errorf("failed to read search text: %w", err)
	}

	// Stdin carried the text, so there is nothing left to read
	// navigation commands from.
	in := cmd.InOrStdin()
	if file == "-" {
		in = strings.NewReader("")
	}

	renderer := newTermRenderer(cmd.OutOrStdout())
	renderer.SetLines(splitTextLines(string(text)))
	return searchAndNavigate(renderer, in, query)
}

// searchAndNavigate marks the keyword's matches across the renderer's
// lines, prints the block, then steps through the matches on n/p/q
// commands until the input runs out.
func searchAndNavigate(renderer *termRenderer, in io.Reader, query string) error {
	dispatcher := highlight.NewDispatcher(highlight.Config{}, zap.NewNop())
	dispatcher.Attach(renderer)

	if err := dispatcher.SearchText(query); err != nil {
		return err
	}
	if err := renderer.Render(); err != nil {
		return err
	}
	if renderer.MatchCount() == 0 {
		_, err := fmt.Fprintln(renderer.w, "No matches.")
		return err
	}
	if err := renderer.RenderCurrent(); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		switch strings.TrimSpace(scanner.Text()) {
		case "n":
			if err := dispatcher.Next(); err != nil {
				return err
			}
		case "p":
			if err := dispatcher.Previous(); err != nil {
				return err
			}
		case "q":
			return nil
		default:
			fmt.Fprintln(renderer.w, "Commands: n (next), p (previous), q (quit)")
			continue
		}
		if err := renderer.RenderCurrent(); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// splitTextLines splits the raw text into lines, dropping the trailing
// newline so a terminating "\n" does not produce an empty last line.
func splitTextLines(text string) []string {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
