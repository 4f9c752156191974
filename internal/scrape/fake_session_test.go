package scrape

import (
	"context"
	"sync"
	"time"
)

// scriptedSession serves a sequence of HTML snapshots; the last one repeats.
type scriptedSession struct {
	mu          sync.Mutex
	pages       []string
	snapshots   int
	snapshotErr error
	navigateErr error
	reloadErr   error
	visited     []string
	reloads     int
}

func (s *scriptedSession) Navigate(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visited = append(s.visited, url)
	return s.navigateErr
}

func (s *scriptedSession) Reload(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloads++
	return s.reloadErr
}

func (s *scriptedSession) Snapshot(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshotErr != nil {
		return "", s.snapshotErr
	}
	idx := s.snapshots
	if idx >= len(s.pages) {
		idx = len(s.pages) - 1
	}
	s.snapshots++
	if idx < 0 {
		return "", nil
	}
	return s.pages[idx], nil
}

func (s *scriptedSession) Fill(context.Context, string, string) error { return nil }

func (s *scriptedSession) SubmitWithEnter(context.Context, string, time.Duration) (bool, error) {
	return true, nil
}

func (s *scriptedSession) ClickAndWait(context.Context, string, time.Duration) (bool, error) {
	return true, nil
}

func (s *scriptedSession) Close() error { return nil }
