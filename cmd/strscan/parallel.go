package main

import (
	"golang.org/x/sync/errgroup"

	"github.com/richardwooding/strscan/internal/printer"
)

type fileResult struct {
	rec  printer.Recorder
	err  error
	done chan struct{}
}

// scanParallel scans up to a.jobs files at once. Each worker records into
// its own buffer; buffers are replayed into sink strictly in argument order,
// each as soon as it and every file before it are finished.
func (a *app) scanParallel(files []string, sink printer.Sink) error {
	results := make([]fileResult, len(files))
	for i := range results {
		results[i].done = make(chan struct{})
	}

	var g errgroup.Group
	g.SetLimit(a.jobs)
	go func() {
		for i, name := range files {
			i, name := i, name
			g.Go(func() error {
				defer close(results[i].done)
				results[i].err = a.scanFile(name, &results[i].rec)
				return nil
			})
		}
	}()

	var replayErr error
	for i, name := range files {
		<-results[i].done
		if replayErr == nil {
			replayErr = results[i].rec.Replay(sink)
		}
		results[i].rec = printer.Recorder{}
		if results[i].err != nil {
			a.diag.Error(name, results[i].err)
		}
	}
	_ = g.Wait()
	return replayErr
}
