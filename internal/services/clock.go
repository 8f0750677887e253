package services

import "time"

// Clock returns the current time. Tests substitute a fixed one.
type Clock func() time.Time
