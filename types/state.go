package types

// PlaybackStatus represents whether the sequencer owns a player process
type PlaybackStatus string

const (
	StatusIdle    PlaybackStatus = "idle"
	StatusPlaying PlaybackStatus = "playing"
)

// PlaybackState is a point-in-time copy of the sequencer state
type PlaybackState struct {
	CurrentIndex int            `json:"currentSongIndex"`
	Status       PlaybackStatus `json:"status"`
	Generation   uint64         `json:"generation"`
}

// Snapshot is returned by every control endpoint
type Snapshot struct {
	CurrentIndex  int            `json:"currentSongIndex"`
	CurrentVolume *float64       `json:"currentVolume"` // nil until the first successful volume change
	Status        PlaybackStatus `json:"status"`
	Track         *Track         `json:"track,omitempty"`
}

// Equal reports whether two snapshots describe the same state
func (s Snapshot) Equal(o Snapshot) bool {
	if s.CurrentIndex != o.CurrentIndex || s.Status != o.Status {
		return false
	}
	if (s.CurrentVolume == nil) != (o.CurrentVolume == nil) {
		return false
	}
	if s.CurrentVolume != nil && *s.CurrentVolume != *o.CurrentVolume {
		return false
	}
	if (s.Track == nil) != (o.Track == nil) {
		return false
	}
	return s.Track == nil || *s.Track == *o.Track
}
