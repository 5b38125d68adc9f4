package main

import (
	"github.com/richardwooding/strscan/internal/extractor"
	"github.com/richardwooding/strscan/internal/printer"
	"github.com/richardwooding/strscan/internal/stats"
)

// filterSink applies --match and --exclude in front of the output sink and
// counts every candidate when statistics are collected.
type filterSink struct {
	next   printer.Sink
	config extractor.Config
	stats  *stats.Statistics
}

func (f *filterSink) StartFile(info printer.FileInfo) {
	f.next.StartFile(info)
}

func (f *filterSink) Print(m extractor.Match) error {
	if !f.config.Filtered() {
		return f.next.Print(m)
	}
	if f.stats != nil {
		f.stats.AddUnfiltered()
	}
	if !f.config.ShouldPrint(m) {
		return nil
	}
	return f.next.Print(m)
}

func (f *filterSink) Flush() error {
	return f.next.Flush()
}
