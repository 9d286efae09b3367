package services

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrEmptyCatalog      = fmt.Errorf("catalog is empty: %w", ErrIndexOutOfRange)
	ErrSuspiciousRequest = errors.New("suspicious request")
	ErrTrackNotFound     = errors.New("track not found")
	ErrMalformedPath     = errors.New("path does not match Artist/YYYY - Album/NN - Title")
	ErrInvalidVolume     = errors.New("volume must be a number between 0 and 100")
	ErrPlaybackFailed    = errors.New("playback failed")
	ErrSequencerClosed   = errors.New("sequencer is closed")
)

// PlayerError wraps errors with additional context
type PlayerError struct {
	Op    string // Operation that failed
	Track string // Track path if applicable
	Err   error  // Underlying error
}

func (e *PlayerError) Error() string {
	if e.Track != "" {
		return fmt.Sprintf("%s failed for track %s: %v", e.Op, e.Track, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *PlayerError) Unwrap() error {
	return e.Err
}

// NewPlayerError creates a new PlayerError
func NewPlayerError(op, track string, err error) *PlayerError {
	return &PlayerError{Op: op, Track: track, Err: err}
}

// ScanError represents a catalog entry that was skipped
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan error at %s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}
