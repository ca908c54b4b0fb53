package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	ResultSetID ID
	SessionID   ID
)

func (id ResultSetID) String() string { return ID(id).String() }
func (id SessionID) String() string   { return ID(id).String() }

// NewResultSetID issues a fresh identifier for one load operation
func NewResultSetID() ResultSetID { return ResultSetID(NewID()) }

// NewSessionID issues a fresh identifier for a browsing session
func NewSessionID() SessionID { return SessionID(NewID()) }

// ParseSessionID parses a string into SessionID
func ParseSessionID(s string) (SessionID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("session ID cannot be empty")
	}
	return SessionID(strings.TrimSpace(s)), nil
}
