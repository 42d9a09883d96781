package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/docqd/internal/highlight"
)

// previewWordLimit bounds the per-source preview in the source list.
const previewWordLimit = 20

var (
	askDocumentID string
	askShowAll    bool
	askSource     int
)

// askCmd asks a question about one document
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about a document",
	Long: `Ask a question about an ingested document and show the source
passages the answer was grounded on. The selected source is printed in
full with the matched segments marked.

Examples:
  # Ask about a document
  docq ask --document doc-1 "What is the termination clause?"

  # Show a specific source in full instead of the top one
  docq ask --document doc-1 --source 2 "What fees apply?"

  # Print every source passage in full
  docq ask --document doc-1 --all "What fees apply?"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askDocumentID, "document", "", "document ID to ask about (required)")
	askCmd.Flags().BoolVar(&askShowAll, "all", false, "print every source passage in full")
	askCmd.Flags().IntVar(&askSource, "source", 1, "1-based source to display in full")
	_ = askCmd.MarkFlagRequired("document")
}

// QuestionRequest matches internal/http/server.go QuestionRequest
type QuestionRequest struct {
	Question   string `json:"question"`
	DocumentID string `json:"documentId"`
}

// QuestionResponse matches the internal/qa result contract.
type QuestionResponse struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
	Search  string   `json:"search,omitempty"`
}

// Source is one answer-grounding passage.
type Source struct {
	PageContent []string `json:"pageContent"`
	Metadata    struct {
		PageNumber *int `json:"pageNumber"`
	} `json:"metadata"`
}

// ContentLines returns the source's content lines for highlighting.
func (s Source) ContentLines() []string {
	return s.PageContent
}

// runAsk handles the ask command
func runAsk(cmd *cobra.Command, args []string) error {
	resp, err := postQuestion(args[0], askDocumentID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Answer: %s\n\n", resp.Answer)

	renderSourceList(out, resp.Sources)

	if len(resp.Sources) == 0 {
		// Structured answers carry a verbatim context substring instead
		// of sources; show it so the caller can locate the answer.
		if resp.Search != "" {
			fmt.Fprintf(out, "Highlight: %s\n", resp.Search)
		}
		return nil
	}

	renderer := newTermRenderer(out)
	dispatcher := highlight.NewDispatcher(highlight.Config{}, zap.NewNop())
	dispatcher.Attach(renderer)

	sources := make([]highlight.Source, len(resp.Sources))
	for i, s := range resp.Sources {
		sources[i] = s
	}

	if resp.Search != "" {
		// A search substring alongside sources: show the top source
		// with that substring marked.
		renderer.SetLines(resp.Sources[0].PageContent)
		if err := dispatcher.HighlightAnswerSearch(resp.Search); err != nil {
			return err
		}
		return renderer.Render()
	}

	if askShowAll {
		for i := range resp.Sources {
			fmt.Fprintf(out, "--- Source %d ---\n", i+1)
			renderer.SetLines(resp.Sources[i].PageContent)
			if err := dispatcher.HighlightSource(sources, i); err != nil {
				return err
			}
			if err := renderer.Render(); err != nil {
				return err
			}
		}
		return nil
	}

	idx := askSource - 1
	if idx < 0 || idx >= len(resp.Sources) {
		return fmt.Errorf("source %d out of range (result has %d sources)", askSource, len(resp.Sources))
	}

	renderer.SetLines(resp.Sources[idx].PageContent)
	if err := dispatcher.HighlightSource(sources, idx); err != nil {
		return err
	}
	return renderer.Render()
}

// postQuestion sends the question to the server and decodes the result.
func postQuestion(question, documentID string) (*QuestionResponse, error) {
	reqJSON, err := json.Marshal(QuestionRequest{
		Question:   question,
		DocumentID: documentID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/question", serverURL)
	httpReq, err := http.NewRequest("POST", url, bytes.NewReader(reqJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := &http.Client{
		Timeout: 60 * time.Second,
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("server returned status %d (failed to read response body: %w)", resp.StatusCode, readErr)
		}
		return nil, fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}

	var qResp QuestionResponse
	if err := json.NewDecoder(resp.Body).Decode(&qResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &qResp, nil
}

// renderSourceList prints the per-source summary: page label and a
// truncated content preview.
func renderSourceList(w io.Writer, sources []Source) {
	fmt.Fprintln(w, "Sources:")
	if len(sources) == 0 {
		fmt.Fprintln(w, "  No sources available.")
		fmt.Fprintln(w)
		return
	}

	for i, s := range sources {
		fmt.Fprintf(w, "  %d. %s\n", i+1, pageLabel(s))
		fmt.Fprintf(w, "     %s\n", truncateContent(strings.Join(s.PageContent, " "), previewWordLimit))
	}
	fmt.Fprintln(w)
}

// pageLabel formats the source's page, "Page Unknown" when the chunk
// carried no page metadata.
func pageLabel(s Source) string {
	if s.Metadata.PageNumber == nil {
		return "Page Unknown"
	}
	return fmt.Sprintf("Page %d", *s.Metadata.PageNumber)
}

// truncateContent cuts content to the first wordLimit words.
func truncateContent(content string, wordLimit int) string {
	words := strings.Split(content, " ")
	if len(words) <= wordLimit {
		return content
	}
	return strings.Join(words[:wordLimit], " ") + "..."
}
