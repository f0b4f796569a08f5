package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// CommentTracker keeps a persistent record of music-related comments that
// were already reported, so watch-mode runs only surface new ones.
type CommentTracker struct {
	filePath string
	seen     map[string]time.Time
	mu       sync.RWMutex
	maxAge   time.Duration
}

// TrackedComment is one reported comment in the on-disk store.
type TrackedComment struct {
	Key        string    `json:"key"`
	ReportedAt time.Time `json:"reported_at"`
}

// NewCommentTracker creates a tracker backed by a JSON file under dataDir.
// Entries older than maxAge are dropped on load.
func NewCommentTracker(dataDir string, maxAge time.Duration) (*CommentTracker, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	tracker := &CommentTracker{
		filePath: filepath.Join(dataDir, "reported_comments.json"),
		seen:     make(map[string]time.Time),
		maxAge:   maxAge,
	}

	if err := tracker.load(); err != nil {
		return nil, fmt.Errorf("failed to load comment tracker data: %w", err)
	}
	tracker.cleanup()

	return tracker, nil
}

// IsSeen checks whether a comment key was reported recently.
func (ct *CommentTracker) IsSeen(key string) bool {
	ct.mu.RLock()
	defer ct.mu.RUnlock()

	reportedAt, exists := ct.seen[key]
	if !exists {
		return false
	}
	return time.Since(reportedAt) < ct.maxAge
}

// MarkSeen records a batch of comment keys as reported.
func (ct *CommentTracker) MarkSeen(keys []string) error {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	now := time.Now()
	for _, key := range keys {
		ct.seen[key] = now
	}
	return ct.save()
}

// Count returns the number of tracked comments.
func (ct *CommentTracker) Count() int {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return len(ct.seen)
}

func (ct *CommentTracker) cleanup() {
	cutoff := time.Now().Add(-ct.maxAge)
	for key, reportedAt := range ct.seen {
		if reportedAt.Before(cutoff) {
			delete(ct.seen, key)
		}
	}
}

func (ct *CommentTracker) load() error {
	file, err := os.Open(ct.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			// First run, start empty
			return nil
		}
		return fmt.Errorf("failed to open tracker file: %w", err)
	}
	defer file.Close()

	var tracked []TrackedComment
	if err := json.NewDecoder(file).Decode(&tracked); err != nil {
		return fmt.Errorf("failed to decode tracker data: %w", err)
	}

	for _, tc := range tracked {
		ct.seen[tc.Key] = tc.ReportedAt
	}
	return nil
}

// save writes the store; callers must hold the write lock.
func (ct *CommentTracker) save() error {
	tracked := make([]TrackedComment, 0, len(ct.seen))
	for key, reportedAt := range ct.seen {
		tracked = append(tracked, TrackedComment{Key: key, ReportedAt: reportedAt})
	}

	file, err := os.Create(ct.filePath)
	if err != nil {
		return fmt.Errorf("failed to create tracker file: %w", err)
	}
	defer file.Close()

	if err := json.NewEncoder(file).Encode(tracked); err != nil {
		return fmt.Errorf("failed to encode tracker data: %w", err)
	}
	return nil
}
