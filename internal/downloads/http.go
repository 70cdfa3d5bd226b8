package downloads

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultExtension = ".mp3"

// HTTPDownloader fetches audio files into a local directory.
type HTTPDownloader struct {
	dir        string
	httpClient *http.Client
}

// NewHTTPDownloader creates a downloader storing files under dir.
func NewHTTPDownloader(dir string, timeout time.Duration) (*HTTPDownloader, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create downloads dir: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &HTTPDownloader{
		dir:        dir,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Dir returns the downloads directory.
func (d *HTTPDownloader) Dir() string {
	return d.dir
}

// LocalPath returns where the audio of documentID is stored.
func (d *HTTPDownloader) LocalPath(documentID, sourceURL string) string {
	return filepath.Join(d.dir, safeName(documentID)+extension(sourceURL))
}

// Download starts fetching sourceURL for documentID and returns its events.
func (d *HTTPDownloader) Download(ctx context.Context, documentID, sourceURL string) <-chan Event {
	events := make(chan Event, 8)
	go func() {
		defer close(events)
		var final Event
		localPath, err := d.fetch(ctx, documentID, sourceURL, events)
		if err != nil {
			final = Failed{ID: documentID, Message: err.Error()}
		} else {
			final = Completed{DocumentID: documentID, LocalPath: localPath}
		}
		select {
		case events <- final:
		case <-ctx.Done():
		}
	}()
	return events
}

func (d *HTTPDownloader) fetch(ctx context.Context, documentID, sourceURL string, events chan<- Event) (string, error) {
	if sourceURL == "" {
		return "", fmt.Errorf("no audio url")
	}

	finalPath := d.LocalPath(documentID, sourceURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Lullabies/1.0")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch audio: status %d", resp.StatusCode)
	}

	// Temp file in the same directory keeps the rename atomic.
	tmpPath := filepath.Join(d.dir, ".download-"+uuid.NewString()+".part")
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return "", err
	}
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath) // no-op after a successful rename
	}()

	w := &progressWriter{id: documentID, total: resp.ContentLength, events: events, lastPercent: -1}
	if _, err := io.Copy(io.MultiWriter(tmpFile, w), resp.Body); err != nil {
		return "", err
	}
	if err := tmpFile.Close(); err != nil {
		return "", err
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		return "", err
	}
	return finalPath, nil
}

// progressWriter emits a Progress event each time another whole percent
// has been written.
type progressWriter struct {
	id          string
	total       int64
	written     int64
	lastPercent int
	events      chan<- Event
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.written += int64(len(p))
	percent := -1
	if w.total > 0 {
		percent = int(w.written * 100 / w.total)
	}
	if percent != w.lastPercent || percent < 0 {
		w.lastPercent = percent
		select {
		case w.events <- Progress{ID: w.id, Percent: percent, Bytes: w.written}:
		default:
		}
	}
	return len(p), nil
}

// safeName maps a document id to a file name. Ids that had to be rewritten
// get a hash suffix so "a.b" and "a_b" land in different files.
func safeName(documentID string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, documentID)
	if name == documentID && name != "" {
		return name
	}
	sum := sha256.Sum256([]byte(documentID))
	return name + "~" + hex.EncodeToString(sum[:8])
}

func extension(sourceURL string) string {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return defaultExtension
	}
	ext := strings.ToLower(path.Ext(u.Path))
	switch ext {
	case ".mp3", ".m4a", ".aac", ".ogg", ".wav":
		return ext
	}
	return defaultExtension
}
