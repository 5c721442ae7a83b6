// Package cache holds the last successful live-data fetch so repeated
// dashboard and chat calls do not hammer the upstream APIs. The slot
// is mirrored to disk (or redis) so a freshly started process warms
// from the previous fetch before touching the network.
package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ohbot666/connected-montreal-ai/internal/airtable"
	"github.com/ohbot666/connected-montreal-ai/internal/pkg/logger"
	"github.com/ohbot666/connected-montreal-ai/internal/posthog"
)

// LiveData is the combined payload served to the dashboard and
// embedded into chat prompts. The error fields carry fetch
// degradation through to the client so an empty snapshot can be told
// apart from a healthy zero.
type LiveData struct {
	Traffic       posthog.TrafficSnapshot   `json:"posthog"`
	TrafficError  string                    `json:"posthog_error,omitempty"`
	Pipeline      airtable.PipelineSnapshot `json:"airtable"`
	PipelineError string                    `json:"airtable_error,omitempty"`
	FetchedAt     time.Time                 `json:"fetched_at"`
}

// Store is the injectable cache contract. Get reports whether a fresh
// payload is available; Put records a successful fetch; Invalidate
// forces the next Get to miss regardless of TTL.
type Store interface {
	Get(ctx context.Context) (LiveData, bool)
	Put(ctx context.Context, data LiveData)
	Invalidate(ctx context.Context)
}

// diskSnapshot is the flat JSON mirror format
type diskSnapshot struct {
	Data LiveData  `json:"data"`
	TS   time.Time `json:"ts"`
}

// FileStore keeps the payload in memory with a flat JSON disk mirror.
// Writes are idempotent recomputations of the same external state, so
// last-write-wins is acceptable; the mutex only keeps the Go memory
// model happy.
type FileStore struct {
	path string
	ttl  time.Duration
	now  func() time.Time

	mu        sync.RWMutex
	data      LiveData
	fetchedAt time.Time
}

// NewFileStore creates a file-mirrored store, warm-loading any
// previous snapshot from disk.
func NewFileStore(path string, ttl time.Duration) *FileStore {
	s := &FileStore{path: path, ttl: ttl, now: time.Now}
	s.warmLoad()
	return s
}

func (s *FileStore) warmLoad() {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var snap diskSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		logger.Warn("cache mirror unreadable, starting cold", "path", s.path, "error", err.Error())
		return
	}
	s.data = snap.Data
	s.fetchedAt = snap.TS
}

// Get returns the cached payload when it is within TTL.
func (s *FileStore) Get(_ context.Context) (LiveData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fetchedAt.IsZero() || s.now().Sub(s.fetchedAt) >= s.ttl {
		return LiveData{}, false
	}
	return s.data, true
}

// Put overwrites both the in-memory slot and the disk mirror.
func (s *FileStore) Put(_ context.Context, data LiveData) {
	s.mu.Lock()
	s.data = data
	s.fetchedAt = s.now()
	snap := diskSnapshot{Data: s.data, TS: s.fetchedAt}
	s.mu.Unlock()

	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		logger.Error("cache mirror marshal failed", "error", err.Error())
		return
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("cache mirror mkdir failed", "path", s.path, "error", err.Error())
			return
		}
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		logger.Error("cache mirror write failed", "path", s.path, "error", err.Error())
	}
}

// Invalidate zeroes the fetch timestamp so the next Get misses. The
// stale payload stays on disk until the next Put replaces it.
func (s *FileStore) Invalidate(_ context.Context) {
	s.mu.Lock()
	s.fetchedAt = time.Time{}
	s.mu.Unlock()
}
