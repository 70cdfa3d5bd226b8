// Package downloads transfers lullaby audio to local storage and applies
// download completion to the cache.
//
// A download reports a sequence of events on a channel: any number of
// Progress events followed by exactly one Completed or Failed event, after
// which the channel is closed.
package downloads

import (
	"context"
	"fmt"
	"log"
)

// Event is a state reported by a download.
type Event interface {
	event()
}

// Progress reports how much of a download has arrived. Percent is -1 when
// the total size is unknown.
type Progress struct {
	ID      string
	Percent int
	Bytes   int64
}

// Completed reports a finished download stored at LocalPath.
type Completed struct {
	DocumentID string
	LocalPath  string
}

// Failed reports a download that stopped with an error.
type Failed struct {
	ID      string
	Message string
}

func (Progress) event()  {}
func (Completed) event() {}
func (Failed) event()    {}

// DownloadMarker records completed downloads in the cache.
type DownloadMarker interface {
	MarkDownloaded(ctx context.Context, documentID, localPath string) error
}

// Apply consumes events until the channel closes. Each Completed event marks
// the lullaby downloaded with its local path; marking is idempotent so a
// replayed event is harmless. A Failed event or a marking error is returned
// once the stream ends.
func Apply(ctx context.Context, events <-chan Event, marker DownloadMarker) error {
	var result error
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return result
			}
			switch e := ev.(type) {
			case Progress:
				if e.Percent >= 0 && e.Percent%25 == 0 {
					log.Printf("[DOWNLOAD] %s: %d%%", e.ID, e.Percent)
				}
			case Completed:
				if err := marker.MarkDownloaded(ctx, e.DocumentID, e.LocalPath); err != nil {
					result = fmt.Errorf("mark %s downloaded: %w", e.DocumentID, err)
					continue
				}
				log.Printf("[DOWNLOAD] %s stored at %s", e.DocumentID, e.LocalPath)
			case Failed:
				log.Printf("[DOWNLOAD] %s failed: %s", e.ID, e.Message)
				result = fmt.Errorf("download %s: %s", e.ID, e.Message)
			}
		}
	}
}
