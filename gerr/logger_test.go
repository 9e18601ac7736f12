// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package gerr

import (
	"io"
	"testing"
)

func TestLoggerBoundedRing(t *testing.T) {
	l := NewLogger(io.Discard, 3, true)
	for i := 0; i < 5; i++ {
		l.Log(New(Error, DeviceLost, "test", "", "fault %d", i))
	}
	if n := l.Len(); n != 3 {
		t.Fatalf("Len() = %d, want 3", n)
	}
	hist := l.History()
	if len(hist) != 3 {
		t.Fatalf("History() length = %d, want 3", len(hist))
	}
	// The ring keeps the 3 most recent: faults 2, 3, 4.
	if hist[0].Message != "fault 2" || hist[2].Message != "fault 4" {
		t.Fatalf("unexpected history order: %v", hist)
	}
}

func TestLoggerValidationDowngrade(t *testing.T) {
	l := NewLogger(io.Discard, 10, false)
	rec := New(Error, ValidationError, "test", "", "bad state")
	l.Log(rec)
	if rec.Severity != Warning {
		t.Fatalf("severity = %v, want Warning", rec.Severity)
	}

	l.SetDebugMode(true)
	rec2 := New(Error, ValidationError, "test", "", "bad state again")
	l.Log(rec2)
	if rec2.Severity != Error {
		t.Fatalf("severity = %v, want Error when debug mode is on", rec2.Severity)
	}
}

func TestKindRecoverable(t *testing.T) {
	cases := []struct {
		k    Kind
		want bool
	}{
		{SwapChainOutOfDate, true},
		{DeviceLost, true},
		{BackendNotAvailable, true},
		{OutOfMemory, false},
		{ValidationError, false},
	}
	for _, c := range cases {
		rec := &Record{Kind: c.k}
		if got := rec.Recoverable(); got != c.want {
			t.Errorf("Kind(%v).Recoverable() = %v, want %v", c.k, got, c.want)
		}
	}
}

func TestLastEmpty(t *testing.T) {
	l := NewLogger(io.Discard, 5, true)
	if l.Last() != nil {
		t.Fatal("Last() on empty logger should be nil")
	}
}
