package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gemcli/gemcli/internal/genai"
)

// InteractiveIO bundles the streams an interactive loop runs over.
type InteractiveIO struct {
	// Lines is the source of user input, read one line at a time.
	Lines io.Reader
	// Out receives the model's reply text after each exchange.
	Out io.Writer
	// Diag receives error reports and never mixes with reply text.
	Diag io.Writer
	// Prompt, when non-empty, is written to Out before each read.
	Prompt string
	// Render, when set, transforms reply text before it is written to Out.
	Render func(string) string
}

// RunInteractive processes user lines until end-of-stream or an exit
// keyword. Empty lines re-prompt without an API call. Failed exchanges are
// reported to Diag and the loop continues; they never invoke the save
// hook. When the loop terminates, one final save is triggered.
func (s *Session) RunInteractive(ctx context.Context, streams InteractiveIO) error {
	scanner := bufio.NewScanner(streams.Lines)
	// Allow long pasted prompts beyond the default token size.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		if streams.Prompt != "" {
			fmt.Fprint(streams.Out, streams.Prompt)
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if isExitKeyword(line) {
			break
		}

		reply, err := s.RunOnce(ctx, line)
		if err != nil {
			fmt.Fprintln(streams.Diag, describeError(err))
			continue
		}
		if streams.Render != nil {
			reply = streams.Render(reply)
		}
		fmt.Fprintln(streams.Out, reply)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	// Final save on termination so a clean exit always leaves the latest
	// transcript on disk.
	if len(s.history) > 0 {
		s.persist()
	}
	return nil
}

// isExitKeyword reports whether a trimmed line ends the loop.
func isExitKeyword(line string) bool {
	switch strings.ToLower(line) {
	case "exit", "quit":
		return true
	}
	return false
}

// describeError labels remote API failures distinctly from local ones.
func describeError(err error) string {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("api error: status %d: %s", apiErr.StatusCode, apiErr.Body)
	}
	return fmt.Sprintf("error: %v", err)
}
