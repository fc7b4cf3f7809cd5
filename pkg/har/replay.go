package har

import (
	"context"
	"fmt"

	"github.com/getmockd/contractguard/pkg/validation"
)

// EntryResult is the outcome of checking one recorded entry.
type EntryResult struct {
	Index  int
	Method string
	URL    string
	Status int
	// Err is nil when the entry matched the contract
	Err error
}

// OK reports whether the entry matched.
func (r EntryResult) OK() bool {
	return r.Err == nil
}

// Replay checks every entry of h against the schema at source. The schema
// is loaded afresh for each entry. Results are returned in entry order;
// once ctx is done the remaining entries report ctx.Err().
func Replay(ctx context.Context, h *HAR, loader validation.Loader, matcher validation.Matcher, source string) []EntryResult {
	if loader == nil {
		loader = validation.DefaultLoader{}
	}
	if matcher == nil {
		matcher = validation.NewOpenAPIMatcher(nil)
	}

	results := make([]EntryResult, 0, len(h.Log.Entries))
	for i := range h.Log.Entries {
		entry := &h.Log.Entries[i]
		result := EntryResult{
			Index:  i,
			Method: entry.Request.Method,
			URL:    entry.Request.URL,
			Status: entry.Response.Status,
		}

		if err := ctx.Err(); err != nil {
			result.Err = err
			results = append(results, result)
			continue
		}
		result.Err = replayEntry(ctx, entry, loader, matcher, source)
		results = append(results, result)
	}
	return results
}

func replayEntry(ctx context.Context, entry *Entry, loader validation.Loader, matcher validation.Matcher, source string) error {
	ex, err := entry.Exchange()
	if err != nil {
		return err
	}
	schema, err := loader.Load(ctx, source)
	if err != nil {
		return fmt.Errorf("load schema %q: %w", source, err)
	}
	return matcher.Match(ctx, ex, schema)
}

// Failed counts the results that did not match.
func Failed(results []EntryResult) int {
	n := 0
	for _, r := range results {
		if !r.OK() {
			n++
		}
	}
	return n
}
