// Package batch runs many facade operations over many files with
// bounded parallelism, collecting per-item results and an aggregate
// summary, or streaming progress as items complete.
package batch

import (
	"context"

	"github.com/atelier-socle/audiomarker"
	"github.com/atelier-socle/audiomarker/exchange"
	"github.com/atelier-socle/audiomarker/model"
	"golang.org/x/sync/semaphore"
)

// OperationKind identifies which facade call an Item performs.
type OperationKind int

const (
	OpRead OperationKind = iota
	OpWrite
	OpStrip
	OpExportChapters
	OpImportChapters
)

// Item is one unit of batch work: a target file and the operation to
// perform on it. Callers must not enqueue two items with the same URL
// in one batch; ordering between them is undefined.
type Item struct {
	URL       string
	Operation OperationKind

	// WriteInfo is used by OpWrite.
	WriteInfo model.AudioFileInfo

	// Format is used by OpExportChapters and OpImportChapters.
	Format exchange.Format

	// OutputURL is used by OpExportChapters: where the exported text is
	// written. Left empty, Result.Text carries the text instead.
	OutputURL string

	// InputURL is used by OpImportChapters: the file containing the
	// interchange text to import.
	InputURL string
}

// Result is the outcome of one Item.
type Result struct {
	URL  string
	Kind OperationKind
	Info *model.AudioFileInfo
	Text string
	Err  error
}

// Summary aggregates a finished (or cancelled) batch.
type Summary struct {
	Total       int
	Succeeded   int
	Failed      int
	Errors      []error
	ReadResults []model.AudioFileInfo
}

// DefaultConcurrency is used when Run/Stream are given concurrency <= 0.
const DefaultConcurrency = 4

// Run executes items with the given concurrency (DefaultConcurrency
// when <= 0) and blocks until every dispatched item has completed or
// ctx is cancelled. Cancelling ctx stops new items from being
// dispatched; items already running finish first, and the summary
// reflects only the items that completed.
func Run(ctx context.Context, facade *audiomarker.Facade, items []Item, concurrency int) Summary {
	results := collect(ctx, facade, items, concurrency)

	summary := Summary{Total: len(items)}
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, r.Err)
			continue
		}
		summary.Succeeded++
		if r.Kind == OpRead && r.Info != nil {
			summary.ReadResults = append(summary.ReadResults, *r.Info)
		}
	}
	return summary
}

// Progress is one element of the stream Stream produces.
type Progress struct {
	Total        int
	Completed    int
	Fraction     float64
	LatestResult Result
	IsFinished   bool
}

// Stream runs items with bounded concurrency and returns a channel
// that receives one Progress element per completed item, in
// completion order, followed by a final element with IsFinished set.
// The channel is closed once the final element has been sent.
// Dropping the returned channel's consumer (ceasing to receive) plus
// cancelling ctx stops further dispatch; in-flight items still run to
// completion.
func Stream(ctx context.Context, facade *audiomarker.Facade, items []Item, concurrency int) <-chan Progress {
	out := make(chan Progress, 1)

	go func() {
		defer close(out)

		total := len(items)
		completed := 0
		for r := range runStream(ctx, facade, items, concurrency) {
			completed++
			select {
			case out <- Progress{
				Total:        total,
				Completed:    completed,
				Fraction:     float64(completed) / float64(max1(total)),
				LatestResult: r,
				IsFinished:   false,
			}:
			case <-ctx.Done():
				return
			}
		}

		select {
		case out <- Progress{Total: total, Completed: completed, Fraction: 1, IsFinished: true}:
		case <-ctx.Done():
		}
	}()

	return out
}

func max1(n int) int {
	if n == 0 {
		return 1
	}
	return n
}

// collect runs every item to completion (or until ctx is cancelled)
// and returns every result that was produced, without ordering
// guarantees relative to items.
func collect(ctx context.Context, facade *audiomarker.Facade, items []Item, concurrency int) []Result {
	var results []Result
	for r := range runStream(ctx, facade, items, concurrency) {
		results = append(results, r)
	}
	return results
}

// runStream dispatches items across a semaphore-bounded pool of
// goroutines, one facade call per item, and returns a channel that
// receives each Result as soon as its item finishes (completion
// order, not input order, per the executor's ordering guarantees).
func runStream(ctx context.Context, facade *audiomarker.Facade, items []Item, concurrency int) <-chan Result {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	out := make(chan Result)
	sem := semaphore.NewWeighted(int64(concurrency))

	go func() {
		defer close(out)

		done := make(chan Result)
		dispatched := 0

		for _, item := range items {
			if ctx.Err() != nil {
				break
			}
			if err := sem.Acquire(ctx, 1); err != nil {
				break
			}

			dispatched++
			item := item
			go func() {
				defer sem.Release(1)
				done <- runOne(facade, item)
			}()
		}

		for i := 0; i < dispatched; i++ {
			select {
			case r := <-done:
				out <- r
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

func runOne(facade *audiomarker.Facade, item Item) Result {
	switch item.Operation {
	case OpRead:
		info, err := facade.Read(item.URL)
		return Result{URL: item.URL, Kind: item.Operation, Info: &info, Err: err}

	case OpWrite:
		err := facade.Write(item.URL, item.WriteInfo)
		return Result{URL: item.URL, Kind: item.Operation, Err: err}

	case OpStrip:
		err := facade.Strip(item.URL)
		return Result{URL: item.URL, Kind: item.Operation, Err: err}

	case OpExportChapters:
		text, err := facade.ExportChapters(item.URL, item.Format)
		if err != nil {
			return Result{URL: item.URL, Kind: item.Operation, Err: err}
		}
		if item.OutputURL == "" {
			return Result{URL: item.URL, Kind: item.Operation, Text: text}
		}
		if werr := writeTextFile(item.OutputURL, text); werr != nil {
			return Result{URL: item.URL, Kind: item.Operation, Err: audiomarker.WriteFailedError("write "+item.OutputURL, werr)}
		}
		return Result{URL: item.URL, Kind: item.Operation, Text: text}

	case OpImportChapters:
		text, err := readTextFile(item.InputURL)
		if err != nil {
			return Result{URL: item.URL, Kind: item.Operation, Err: audiomarker.ReadFailedError("read "+item.InputURL, err)}
		}
		err = facade.ImportChapters(text, item.Format, item.URL)
		return Result{URL: item.URL, Kind: item.Operation, Err: err}

	default:
		return Result{URL: item.URL, Kind: item.Operation, Err: audiomarker.UnsupportedFormatError("unknown", "batch operation")}
	}
}
