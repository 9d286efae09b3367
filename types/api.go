package types

import "fmt"

// Track represents one audio file of the catalog
type Track struct {
	SourcePath     string `json:"-"`
	RelativePath   string `json:"path"`
	Artist         string `json:"artist"`
	Year           string `json:"year"`
	Album          string `json:"album"`
	TrackNumber    string `json:"trackNumber"` // two characters, "01" opens an album
	Title          string `json:"title"`
	IsFirstOfAlbum bool   `json:"isFirstOfAlbum"`
	Genre          string `json:"genre"`
	Duration       int    `json:"durationSeconds"`
}

// DurationLabel renders the duration as m:ss
func (t Track) DurationLabel() string {
	return fmt.Sprintf("%d:%02d", t.Duration/60, t.Duration%60)
}

// AudioMetadata is what the metadata probe contributes to a track
type AudioMetadata struct {
	Genre    string `json:"genre"`
	Duration int    `json:"durationSeconds"`
}

// IndexedTrack pairs a track with its catalog position
type IndexedTrack struct {
	Index int   `json:"index"`
	Track Track `json:"track"`
}
