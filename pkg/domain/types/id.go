package types

import "github.com/google/uuid"

// RunID identifies a single pipeline run.
type RunID string

// NewRunID issues a new random run ID.
func NewRunID() RunID {
	return RunID(uuid.NewString())
}

func (x RunID) String() string {
	return string(x)
}

// IsValid returns true if the ID is a well-formed UUID.
func (x RunID) IsValid() bool {
	_, err := uuid.Parse(string(x))
	return err == nil
}
