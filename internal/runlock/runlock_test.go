package runlock_test

import (
	"strings"
	"testing"

	"jobfeed-engine/internal/runlock"
)

func TestAcquire_Exclusive(t *testing.T) {
	dir := t.TempDir()

	first, err := runlock.Acquire(dir)
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}

	if _, err := runlock.Acquire(dir); err == nil {
		t.Fatal("second Acquire on a held dir should fail")
	} else if !strings.Contains(err.Error(), "engine.lock") {
		t.Errorf("error %q should name the contested file", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}

	third, err := runlock.Acquire(dir)
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	third.Release()
}

func TestAcquire_IndependentDirs(t *testing.T) {
	a, err := runlock.Acquire(t.TempDir())
	if err != nil {
		t.Fatalf("Acquire a: %v", err)
	}
	defer a.Release()

	b, err := runlock.Acquire(t.TempDir())
	if err != nil {
		t.Fatalf("Acquire b: %v", err)
	}
	defer b.Release()
}
