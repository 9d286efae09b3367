package services

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"jukebox/types"
)

const fieldSeparator = " - "

// shellMetacharacters never appear in a playable path
const shellMetacharacters = ";&|$`<>\"'*?{}[]~#%\\\n\r\t"

var trackPathGrammar = regexp.MustCompile(
	`^[\p{L}\p{N} ()_.,!\-]+/\d{4} - [\p{L}\p{N} ()_.,!\-]+/\d{2} - [\p{L}\p{N} ()_.,!\-]+$`,
)

// ParseTrackPath splits Artist/YYYY - Album/NN - Title.ext into track fields
func ParseTrackPath(relativePath string) (types.Track, error) {
	parts := strings.Split(filepath.ToSlash(relativePath), "/")
	if len(parts) != 3 {
		return types.Track{}, fmt.Errorf("%w: %q has %d segments", ErrMalformedPath, relativePath, len(parts))
	}
	artist, yearAndAlbum, trackAndTitle := parts[0], parts[1], parts[2]
	if artist == "" {
		return types.Track{}, fmt.Errorf("%w: %q has no artist", ErrMalformedPath, relativePath)
	}

	year, album, ok := splitFixedField(yearAndAlbum, 4)
	if !ok {
		return types.Track{}, fmt.Errorf("%w: %q is not \"YYYY - Album\"", ErrMalformedPath, yearAndAlbum)
	}

	name := strings.TrimSuffix(trackAndTitle, filepath.Ext(trackAndTitle))
	trackNumber, title, ok := splitFixedField(name, 2)
	if !ok {
		return types.Track{}, fmt.Errorf("%w: %q is not \"NN - Title\"", ErrMalformedPath, trackAndTitle)
	}

	return types.Track{
		RelativePath:   filepath.ToSlash(relativePath),
		Artist:         artist,
		Year:           year,
		Album:          album,
		TrackNumber:    trackNumber,
		Title:          title,
		IsFirstOfAlbum: trackNumber == "01",
	}, nil
}

// splitFixedField reads a width-digit prefix followed by " - " and a non-empty rest
func splitFixedField(segment string, width int) (string, string, bool) {
	if len(segment) <= width+len(fieldSeparator) {
		return "", "", false
	}
	prefix := segment[:width]
	for i := 0; i < len(prefix); i++ {
		if prefix[i] < '0' || prefix[i] > '9' {
			return "", "", false
		}
	}
	if segment[width:width+len(fieldSeparator)] != fieldSeparator {
		return "", "", false
	}
	return prefix, segment[width+len(fieldSeparator):], true
}

// ValidateTrackPath checks an externally supplied relative path before it can reach a player process
func ValidateTrackPath(path string, extensions []string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: empty path not allowed", ErrSuspiciousRequest)
	}

	if strings.HasPrefix(path, "/") || filepath.IsAbs(path) {
		return fmt.Errorf("%w: absolute paths not allowed", ErrSuspiciousRequest)
	}

	if strings.Contains(path, "..") {
		return fmt.Errorf("%w: path traversal not allowed", ErrSuspiciousRequest)
	}

	if strings.ContainsAny(path, shellMetacharacters) {
		return fmt.Errorf("%w: shell metacharacters not allowed", ErrSuspiciousRequest)
	}

	if !hasExtension(path, extensions) {
		return fmt.Errorf("%w: file extension not allowed", ErrSuspiciousRequest)
	}

	if !trackPathGrammar.MatchString(path) {
		return fmt.Errorf("%w: path does not match Artist/YYYY - Album/NN - Title", ErrSuspiciousRequest)
	}

	if _, err := ParseTrackPath(path); err != nil {
		return fmt.Errorf("%w: %v", ErrSuspiciousRequest, err)
	}

	return nil
}

// hasExtension matches the file extension case-insensitively
func hasExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range extensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}
