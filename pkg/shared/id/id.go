package id

import "github.com/google/uuid"

// New returns a random identifier for a recording session.
func New() string { return uuid.NewString() }
