package services

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"jukebox/types"
)

// Catalog is the ordered, read-only list of tracks built once at startup
type Catalog struct {
	root   string
	tracks []types.Track
	byPath map[string]int
}

// NewCatalog wraps tracks in catalog order
func NewCatalog(root string, tracks []types.Track) *Catalog {
	byPath := make(map[string]int, len(tracks))
	for i, track := range tracks {
		if _, exists := byPath[track.RelativePath]; !exists {
			byPath[track.RelativePath] = i
		}
	}
	return &Catalog{root: root, tracks: tracks, byPath: byPath}
}

// Root returns the scanned directory
func (c *Catalog) Root() string {
	return c.root
}

// Len returns the number of tracks
func (c *Catalog) Len() int {
	return len(c.tracks)
}

// Contains reports whether index addresses a track
func (c *Catalog) Contains(index int) bool {
	return index >= 0 && index < len(c.tracks)
}

// At returns the track at index
func (c *Catalog) At(index int) (types.Track, bool) {
	if !c.Contains(index) {
		return types.Track{}, false
	}
	return c.tracks[index], true
}

// Tracks returns a copy of all tracks in catalog order
func (c *Catalog) Tracks() []types.Track {
	tracks := make([]types.Track, len(c.tracks))
	copy(tracks, c.tracks)
	return tracks
}

// IndexOf finds the catalog index of a relative path
func (c *Catalog) IndexOf(relativePath string) (int, bool) {
	index, ok := c.byPath[filepath.ToSlash(relativePath)]
	return index, ok
}

// Search matches title, artist and album, keeping catalog order
func (c *Catalog) Search(query string) []types.IndexedTrack {
	query = strings.ToLower(strings.TrimSpace(query))
	results := make([]types.IndexedTrack, 0, 10)
	if query == "" {
		return results
	}

	for i, track := range c.tracks {
		if strings.Contains(strings.ToLower(track.Title), query) ||
			strings.Contains(strings.ToLower(track.Artist), query) ||
			strings.Contains(strings.ToLower(track.Album), query) {
			results = append(results, types.IndexedTrack{Index: i, Track: track})
		}
	}
	return results
}

// CatalogBuilder scans a music directory into a Catalog
type CatalogBuilder struct {
	extensions []string
	workers    int
	resolver   MetadataResolver

	// Progress receives a progress bar while metadata is probed; nil disables it
	Progress io.Writer
}

// NewCatalogBuilder creates a new catalog builder
func NewCatalogBuilder(extensions []string, workers int, resolver MetadataResolver) *CatalogBuilder {
	if workers <= 0 {
		workers = 4
	}
	if len(extensions) == 0 {
		extensions = []string{".mp3"}
	}
	return &CatalogBuilder{
		extensions: extensions,
		workers:    workers,
		resolver:   resolver,
	}
}

// Build scans root, parses every audio path and probes its metadata.
// An unreadable root is an error; malformed entries are logged and skipped.
func (b *CatalogBuilder) Build(ctx context.Context, root string) (*Catalog, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog root: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("catalog root unreadable: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("catalog root unreadable: %s is not a directory", absRoot)
	}

	log.Info().Str("root", absRoot).Msg("Scanning music collection...")

	tracks, err := b.scan(ctx, absRoot)
	if err != nil {
		return nil, err
	}

	if err := b.probe(ctx, tracks); err != nil {
		return nil, err
	}

	log.Info().Int("tracks", len(tracks)).Msg("Scanning done")
	return NewCatalog(absRoot, tracks), nil
}

// scan walks root in lexical order and parses each audio path
func (b *CatalogBuilder) scan(ctx context.Context, root string) ([]types.Track, error) {
	var tracks []types.Track

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("catalog root unreadable: %w", err)
			}
			log.Warn().Err(err).Str("path", path).Msg("Error accessing path")
			return nil // Continue walking, don't fail entire scan
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if !d.Type().IsRegular() || !hasExtension(path, b.extensions) {
			return nil
		}

		relativePath, err := filepath.Rel(root, path)
		if err != nil {
			log.Warn().Err(&ScanError{Path: path, Err: err}).Msg("Skipping catalog entry")
			return nil
		}

		track, err := ParseTrackPath(relativePath)
		if err != nil {
			log.Warn().Err(&ScanError{Path: path, Err: err}).Msg("Skipping catalog entry")
			return nil
		}

		track.SourcePath = path
		tracks = append(tracks, track)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return tracks, nil
}

// probe fills genre and duration using a bounded pool; results land in their own slot so order is kept
func (b *CatalogBuilder) probe(ctx context.Context, tracks []types.Track) error {
	bar := b.progressBar(len(tracks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for i := range tracks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			meta := FallbackMetadata()
			if b.resolver != nil {
				meta = b.resolver.Resolve(tracks[i].SourcePath)
			}
			tracks[i].Genre = meta.Genre
			tracks[i].Duration = meta.Duration

			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("probe metadata: %w", err)
	}

	if bar != nil {
		_ = bar.Finish()
	}
	return nil
}

func (b *CatalogBuilder) progressBar(total int) *progressbar.ProgressBar {
	if b.Progress == nil || total == 0 {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(b.Progress),
		progressbar.OptionSetDescription("Reading metadata"),
		progressbar.OptionShowCount(),
	)
}
