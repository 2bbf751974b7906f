package common

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Approver asks the user to confirm a signature. summary describes what is
// about to be signed.
type Approver func(ctx context.Context, summary string) (bool, error)

func AutoApprover(context.Context, string) (bool, error) {
	return true, nil
}

// NewPromptApprover asks on out and reads a y/N answer from in. Anything
// other than y or yes declines.
func NewPromptApprover(in io.Reader, out io.Writer) Approver {
	var (
		lock   sync.Mutex
		reader = bufio.NewReader(in)
	)

	return func(ctx context.Context, summary string) (bool, error) {
		lock.Lock()
		defer lock.Unlock()

		if err := ctx.Err(); err != nil {
			return false, err
		}

		if _, err := fmt.Fprintf(out, "%s\nApprove? [y/N]: ", summary); err != nil {
			return false, fmt.Errorf("failed to write prompt: %w", err)
		}

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, fmt.Errorf("failed to read answer: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}
