package logging

import (
	"strings"
	"sync"
)

// ProgressSampler suppresses repetitive progress logs. It emits when a source
// first reports, and afterwards only when the percentage crosses into a new
// bucket for that source. Safe for concurrent use across sources.
type ProgressSampler struct {
	mu         sync.Mutex
	bucketSize float64
	last       map[string]int
}

// NewProgressSampler constructs a sampler with the given bucket width in
// percent (default 10).
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 10
	}
	return &ProgressSampler{bucketSize: bucketSize, last: make(map[string]int)}
}

// ShouldLog reports whether a progress event for source should be logged.
// A negative percent means the total is unknown; only the first event of such
// a source is emitted.
func (s *ProgressSampler) ShouldLog(source string, percent float64) bool {
	if s == nil {
		return true
	}
	source = strings.TrimSpace(source)

	s.mu.Lock()
	defer s.mu.Unlock()
	lastBucket, seen := s.last[source]
	if percent < 0 {
		if seen {
			return false
		}
		s.last[source] = -1
		return true
	}
	bucket := int(percent / s.bucketSize)
	if percent >= 100 {
		bucket = int(100 / s.bucketSize)
	}
	if seen && bucket <= lastBucket {
		return false
	}
	s.last[source] = bucket
	return true
}

// Reset forgets every source.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.last = make(map[string]int)
	s.mu.Unlock()
}
