package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseTrackPath tests path convention parsing
func TestParseTrackPath(t *testing.T) {
	tests := []struct {
		name          string
		path          string
		expectedTrack string
		expectedTitle string
		expectedAlbum string
		expectedYear  string
		expectedFirst bool
	}{
		{
			name:          "first track of album",
			path:          "A/2000 - Album/01 - Song1.mp3",
			expectedTrack: "01",
			expectedTitle: "Song1",
			expectedAlbum: "Album",
			expectedYear:  "2000",
			expectedFirst: true,
		},
		{
			name:          "second track of album",
			path:          "A/2000 - Album/02 - Song2.mp3",
			expectedTrack: "02",
			expectedTitle: "Song2",
			expectedAlbum: "Album",
			expectedYear:  "2000",
			expectedFirst: false,
		},
		{
			name:          "separator inside title",
			path:          "Foo Fighters/2011 - Wasting Light/01 - Bridge Burning - Live.mp3",
			expectedTrack: "01",
			expectedTitle: "Bridge Burning - Live",
			expectedAlbum: "Wasting Light",
			expectedYear:  "2011",
			expectedFirst: true,
		},
		{
			name:          "other extension",
			path:          "Artist/1999 - Record/12 - Closing.flac",
			expectedTrack: "12",
			expectedTitle: "Closing",
			expectedAlbum: "Record",
			expectedYear:  "1999",
			expectedFirst: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			track, err := ParseTrackPath(tt.path)
			require.NoError(t, err)

			assert.Equal(t, tt.path, track.RelativePath)
			assert.Equal(t, tt.expectedTrack, track.TrackNumber)
			assert.Equal(t, tt.expectedTitle, track.Title)
			assert.Equal(t, tt.expectedAlbum, track.Album)
			assert.Equal(t, tt.expectedYear, track.Year)
			assert.Equal(t, tt.expectedFirst, track.IsFirstOfAlbum)
		})
	}
}

// TestParseTrackPath_Malformed tests entries the catalog builder skips
func TestParseTrackPath_Malformed(t *testing.T) {
	paths := []string{
		"Song.mp3",
		"A/Song.mp3",
		"A/2000 - Album/CD1/01 - Song.mp3",
		"/2000 - Album/01 - Song.mp3",
		"A/20x0 - Album/01 - Song.mp3",
		"A/2000-Album/01 - Song.mp3",
		"A/2000 - /01 - Song.mp3",
		"A/2000 - Album/1 - Song.mp3",
		"A/2000 - Album/01 Song.mp3",
		"A/2000 - Album/01 - .mp3",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			_, err := ParseTrackPath(path)
			assert.ErrorIs(t, err, ErrMalformedPath)
		})
	}
}

// TestValidateTrackPath tests the play-by-path boundary
func TestValidateTrackPath(t *testing.T) {
	extensions := []string{".mp3"}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"valid path", "A/2000 - Album/01 - Song1.mp3", false},
		{"valid with punctuation", "The Band (UK)/1985 - Live, Vol. 2/03 - Go!.mp3", false},
		{"valid unicode", "Björk/1997 - Homogenic/01 - Hunter.mp3", false},
		{"uppercase extension", "A/2000 - Album/01 - Song1.MP3", false},
		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"traversal", "A/2000 - Album/../../etc/passwd", true},
		{"command injection", "A/2000 - Album/01 - Song; rm -rf ~.mp3", true},
		{"subshell", "A/2000 - Album/01 - $(reboot).mp3", true},
		{"backticks", "A/2000 - Album/01 - `id`.mp3", true},
		{"quote", "A/2000 - Album/01 - Don't.mp3", true},
		{"pipe", "A/2000 - Album/01 - a | b.mp3", true},
		{"newline", "A/2000 - Album/01 - Song\n.mp3", true},
		{"wrong extension", "A/2000 - Album/01 - Song1.wav", true},
		{"missing album segment", "A/01 - Song1.mp3", true},
		{"grammar mismatch", "A/2000 Album/01 - Song1.mp3", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTrackPath(tt.path, extensions)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrSuspiciousRequest)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
