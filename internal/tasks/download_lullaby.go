package tasks

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/lullabies/internal/downloads"
	"github.com/mrlokans/lullabies/internal/entities"
)

// DownloadLullabyTask downloads the audio of one lullaby and marks it
// downloaded in the cache.
type DownloadLullabyTask struct {
	DocumentID string `json:"document_id"`
}

// Config returns the queue configuration for lullaby downloads.
func (t DownloadLullabyTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "download_lullaby",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     15 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// LullabyLookup finds a cached lullaby.
type LullabyLookup interface {
	GetByDocumentID(ctx context.Context, documentID string) (*entities.Lullaby, error)
}

// Downloader starts a file transfer and reports its events.
type Downloader interface {
	Download(ctx context.Context, documentID, sourceURL string) <-chan downloads.Event
}

// DownloadLullabyProcessor creates a processor function for DownloadLullabyTask.
func DownloadLullabyProcessor(lookup LullabyLookup, downloader Downloader, marker downloads.DownloadMarker) backlite.QueueProcessor[DownloadLullabyTask] {
	return func(ctx context.Context, task DownloadLullabyTask) error {
		lullaby, err := lookup.GetByDocumentID(ctx, task.DocumentID)
		if err != nil {
			return fmt.Errorf("load lullaby %s: %w", task.DocumentID, err)
		}
		if lullaby == nil {
			// Nothing to retry: the item is gone from the catalog.
			log.Printf("[TASK] Lullaby %s not in cache, dropping download", task.DocumentID)
			return nil
		}

		if lullaby.IsDownloaded && lullaby.LocalAudioPath != nil {
			if _, err := os.Stat(*lullaby.LocalAudioPath); err == nil {
				log.Printf("[TASK] Lullaby %s already downloaded", task.DocumentID)
				return nil
			}
		}

		events := downloader.Download(ctx, lullaby.DocumentID, lullaby.AudioPath)
		if err := downloads.Apply(ctx, events, marker); err != nil {
			return err
		}

		log.Printf("[TASK] Downloaded lullaby %s (%s)", lullaby.DocumentID, lullaby.Name)
		return nil
	}
}

// NewDownloadLullabyQueue creates a backlite queue for lullaby downloads.
func NewDownloadLullabyQueue(lookup LullabyLookup, downloader Downloader, marker downloads.DownloadMarker) backlite.Queue {
	return backlite.NewQueue(DownloadLullabyProcessor(lookup, downloader, marker))
}
