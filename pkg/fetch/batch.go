package fetch

import (
	"context"
	"strings"
	"time"
	"unicode"
)

// BatchItem is one parsed line of batch input. An empty Folder means the
// batch default applies.
type BatchItem struct {
	Folder string
	URL    string
}

// BatchFailure records an item that failed every attempt.
type BatchFailure struct {
	Folder string
	URL    string
	Err    error
}

// BatchResult summarizes a batch run.
type BatchResult struct {
	Succeeded int
	Failures  []BatchFailure
}

// RetryPolicy bounds how often a failed item is retried. Attempts counts the
// first try, so Attempts=3 means two retries.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// DefaultRetryPolicy retries twice with a short pause between attempts.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, Delay: 2 * time.Second}
}

// ParseBatch parses batch input, one URL per line. Blank lines and lines
// starting with # are skipped. A line may start with a folder key:
//
//	loras https://...
//
// The key is recognized via known; anything else is treated as part of the
// URL and the batch default folder applies.
func ParseBatch(text string, known func(string) bool) []BatchItem {
	var items []BatchItem
	for _, line := range strings.Split(text, "\n") {
		s := strings.TrimSpace(line)
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}

		if i := strings.IndexFunc(s, unicode.IsSpace); i >= 0 {
			first, rest := s[:i], strings.TrimSpace(s[i:])
			if known(first) && rest != "" {
				items = append(items, BatchItem{Folder: first, URL: rest})
				continue
			}
		}
		items = append(items, BatchItem{URL: s})
	}
	return items
}

// RunBatch downloads items in input order. Each item gets a fresh progress
// sink from sinkFor and up to policy.Attempts tries; one item exhausting its
// attempts never stops the rest of the batch.
func (f *Fetcher) RunBatch(
	ctx context.Context,
	items []BatchItem,
	defaultFolder string,
	overwrite bool,
	policy RetryPolicy,
	sinkFor func(BatchItem) ProgressFunc,
) BatchResult {
	if policy.Attempts <= 0 {
		policy.Attempts = 1
	}

	var result BatchResult
	for _, item := range items {
		folder := item.Folder
		if folder == "" {
			folder = defaultFolder
		}

		var sink ProgressFunc
		if sinkFor != nil {
			sink = sinkFor(item)
		}

		req := Request{URL: item.URL, Folder: folder, Overwrite: overwrite}

		var lastErr error
		for attempt := 1; attempt <= policy.Attempts; attempt++ {
			if attempt > 1 && policy.Delay > 0 {
				select {
				case <-ctx.Done():
				case <-time.After(policy.Delay):
				}
			}
			if err := ctx.Err(); err != nil {
				lastErr = err
				break
			}

			if _, err := f.Fetch(ctx, req, sink); err != nil {
				lastErr = err
				continue
			}
			lastErr = nil
			break
		}

		if lastErr != nil {
			result.Failures = append(result.Failures, BatchFailure{Folder: folder, URL: item.URL, Err: lastErr})
		} else {
			result.Succeeded++
		}
	}
	return result
}
