package core

import (
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

func TestParseSessionID(t *testing.T) {
	if _, err := ParseSessionID("   "); err == nil {
		t.Error("Expected error for blank session ID")
	}

	id, err := ParseSessionID(" abc ")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if id.String() != "abc" {
		t.Errorf("Expected trimmed session ID 'abc', got '%s'", id)
	}
}

func TestResultSetIDsAreDistinct(t *testing.T) {
	a, b := NewResultSetID(), NewResultSetID()
	if a == b {
		t.Errorf("Expected distinct result set IDs, got %s twice", a)
	}
}
