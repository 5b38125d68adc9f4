package printer

import "github.com/richardwooding/strscan/internal/extractor"

// Recorder is a Sink that keeps everything it receives so it can be replayed
// into another Sink later. Parallel workers record into their own Recorder
// and the results are replayed in input order.
type Recorder struct {
	events []event
}

type event struct {
	start bool
	info  FileInfo
	match extractor.Match
}

// StartFile records a file boundary.
func (r *Recorder) StartFile(info FileInfo) {
	r.events = append(r.events, event{start: true, info: info})
}

// Print records a match.
func (r *Recorder) Print(m extractor.Match) error {
	r.events = append(r.events, event{match: m})
	return nil
}

// Flush is a no-op; recorded events stay until Replay.
func (r *Recorder) Flush() error {
	return nil
}

// Len returns the number of recorded matches.
func (r *Recorder) Len() int {
	n := 0
	for _, e := range r.events {
		if !e.start {
			n++
		}
	}
	return n
}

// Replay sends the recorded events to dst in the order they arrived and
// clears the recorder.
func (r *Recorder) Replay(dst Sink) error {
	defer func() { r.events = nil }()
	for _, e := range r.events {
		if e.start {
			dst.StartFile(e.info)
			continue
		}
		if err := dst.Print(e.match); err != nil {
			return err
		}
	}
	return nil
}
