package services

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
	"github.com/rs/zerolog/log"

	"jukebox/types"
)

// UnknownGenre is reported when the probe fails
const UnknownGenre = "unknown"

// genreDelimiter joins multi-valued genre tags
const genreDelimiter = "/"

// MetadataResolver interface defines the audio metadata probe
type MetadataResolver interface {
	// Resolve never fails; probe errors produce the fallback metadata
	Resolve(filePath string) types.AudioMetadata
}

// FallbackMetadata is returned for files that cannot be probed
func FallbackMetadata() types.AudioMetadata {
	return types.AudioMetadata{Genre: UnknownGenre, Duration: 0}
}

// metadataResolver reads tags with dhowden/tag and measures duration by decoding headers with beep
type metadataResolver struct{}

// NewMetadataResolver creates a new metadata resolver
func NewMetadataResolver() MetadataResolver {
	return &metadataResolver{}
}

// Resolve probes genre and duration, falling back on any error
func (r *metadataResolver) Resolve(filePath string) types.AudioMetadata {
	genre, err := readGenre(filePath)
	if err != nil {
		log.Warn().Err(err).Str("path", filePath).Msg("Error reading metadata")
		return FallbackMetadata()
	}

	duration, err := readDuration(filePath)
	if err != nil {
		log.Warn().Err(err).Str("path", filePath).Msg("Error reading metadata")
		return FallbackMetadata()
	}

	return types.AudioMetadata{
		Genre:    genre,
		Duration: int(math.Round(duration.Seconds())),
	}
}

// readGenre returns the genre tag; files without tags have an empty genre
func readGenre(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	meta, err := tag.ReadFrom(file)
	if errors.Is(err, tag.ErrNoTagsFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read tags: %w", err)
	}

	return JoinGenres(meta.Genre()), nil
}

// JoinGenres normalises a raw genre frame, which may hold several NUL or semicolon separated values
func JoinGenres(raw string) string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == 0 || r == ';'
	})

	genres := make([]string, 0, len(fields))
	for _, field := range fields {
		if genre := strings.TrimSpace(field); genre != "" {
			genres = append(genres, genre)
		}
	}
	return strings.Join(genres, genreDelimiter)
}

// readDuration decodes the stream headers and converts the sample count to time
func readDuration(filePath string) (time.Duration, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(file)
	case ".flac":
		streamer, format, err = flac.Decode(file)
	case ".wav":
		streamer, format, err = wav.Decode(file)
	default:
		return 0, fmt.Errorf("unsupported audio format: %s", filepath.Ext(filePath))
	}
	if err != nil {
		return 0, fmt.Errorf("decode: %w", err)
	}
	defer streamer.Close()

	if format.SampleRate <= 0 {
		return 0, fmt.Errorf("decode: invalid sample rate %d", format.SampleRate)
	}
	return format.SampleRate.D(streamer.Len()), nil
}
