// Package testutil holds assertion helpers shared by package tests.
package testutil

import (
	"testing"

	"github.com/mozhi-it/LAN-Transfer/internal/errors"
)

// AssertField reports a named value that differs from want
func AssertField[T comparable](t *testing.T, name string, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

// AssertNoError stops the test on a non-nil err
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError stops the test when err is nil
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
}

// AssertKind checks the failure class of err, wrapped or not
func AssertKind(t *testing.T, err error, want errors.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected a %s error, got nil", want)
	}
	if got := errors.KindOf(err); got != want {
		t.Errorf("error kind = %s, want %s (%v)", got, want, err)
	}
}

// AssertSliceEqual compares two slices element by element
func AssertSliceEqual[T comparable](t *testing.T, name string, got, want []T) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("%s[%d] = %v, want %v", name, i, got[i], want[i])
		}
	}
}
