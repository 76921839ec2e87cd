package logging

import "testing"

func TestNewProgressSampler(t *testing.T) {
	tests := []struct {
		name       string
		bucketSize float64
		wantSize   float64
	}{
		{"default bucket size for zero", 0, 10},
		{"default bucket size for negative", -1, 10},
		{"custom bucket size", 25, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProgressSampler(tt.bucketSize)
			if s.bucketSize != tt.wantSize {
				t.Errorf("bucketSize = %v, want %v", s.bucketSize, tt.wantSize)
			}
			if len(s.last) != 0 {
				t.Errorf("expected empty state, got %v", s.last)
			}
		})
	}
}

func TestProgressSampler_NilSampler(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog("src", 50) {
		t.Error("ShouldLog on nil sampler should always return true")
	}
	s.Reset()
}

func TestProgressSampler_Buckets(t *testing.T) {
	s := NewProgressSampler(10)
	steps := []struct {
		percent float64
		want    bool
	}{
		{0, true},
		{3, false},
		{9.9, false},
		{10, true},
		{15, false},
		{42, true},
		{100, true},
		{100, false},
	}
	for _, step := range steps {
		if got := s.ShouldLog("/data", step.percent); got != step.want {
			t.Fatalf("ShouldLog(%v) = %v, want %v", step.percent, got, step.want)
		}
	}
}

func TestProgressSampler_TracksSourcesIndependently(t *testing.T) {
	s := NewProgressSampler(50)
	if !s.ShouldLog("a", 10) || !s.ShouldLog("b", 10) {
		t.Fatal("first event per source should log")
	}
	if s.ShouldLog("a", 20) {
		t.Fatal("same bucket should not log")
	}
	if !s.ShouldLog("b", 60) {
		t.Fatal("new bucket for b should log")
	}
}

func TestProgressSampler_UnknownTotal(t *testing.T) {
	s := NewProgressSampler(10)
	if !s.ShouldLog("pipe", -1) {
		t.Fatal("first unknown-total event should log")
	}
	if s.ShouldLog("pipe", -1) {
		t.Fatal("repeated unknown-total events should be suppressed")
	}
	s.Reset()
	if !s.ShouldLog("pipe", -1) {
		t.Fatal("Reset should clear source state")
	}
}
