package id

import (
	"regexp"
	"testing"
)

var idPattern = regexp.MustCompile(`^[a-z2-7]{26}$`)

func TestNewIDFormat(t *testing.T) {
	value, err := NewID()
	if err != nil {
		t.Fatalf("NewID() error = %v", err)
	}
	if !idPattern.MatchString(value) {
		t.Fatalf("NewID() = %q, want 26 lowercase base32 characters", value)
	}
}

func TestNewIDUniqueness(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		value, err := NewID()
		if err != nil {
			t.Fatalf("NewID() error = %v", err)
		}
		if _, dup := seen[value]; dup {
			t.Fatalf("NewID() produced duplicate %q", value)
		}
		seen[value] = struct{}{}
	}
}
