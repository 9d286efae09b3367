package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/rs/zerolog/log"

	"jukebox/metrics"
	"jukebox/types"
)

// Sequencer interface defines the playback operations.
// Index bounds are enforced by failing: an index outside the catalog returns
// ErrIndexOutOfRange, stops playback and keeps the current index.
type Sequencer interface {
	PlayIndex(index int) error
	PlayCurrent() error
	PlayPath(relativePath string) error
	Stop()
	Next() error
	Previous() error
	Random() error
	State() types.PlaybackState
	Close()
}

// playback is the one player process the sequencer currently owns
type playback struct {
	generation uint64
	index      int
	cancel     context.CancelFunc
	done       chan struct{} // closed once the process has exited
}

// sequencer owns the current index and the player process slot.
// Every mutation happens under mu, including the cancel-old/spawn-new transition.
type sequencer struct {
	catalog    *Catalog
	launcher   Launcher
	extensions []string
	intn       func(n int) int

	mu         sync.Mutex
	current    int
	active     *playback
	generation uint64
	closed     bool

	watchers sync.WaitGroup
}

// NewSequencer creates a new sequencer positioned at index 0
func NewSequencer(catalog *Catalog, launcher Launcher, extensions []string) Sequencer {
	return &sequencer{
		catalog:    catalog,
		launcher:   launcher,
		extensions: extensions,
		intn:       rand.IntN,
	}
}

// PlayIndex cancels the running track and starts catalog[index]
func (s *sequencer) PlayIndex(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playLocked(index)
}

// PlayCurrent restarts the track at the current index
func (s *sequencer) PlayCurrent() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playLocked(s.current)
}

// PlayPath validates an externally supplied relative path and plays the matching track
func (s *sequencer) PlayPath(relativePath string) error {
	if err := ValidateTrackPath(relativePath, s.extensions); err != nil {
		log.Warn().Err(err).Str("path", relativePath).Msg("Rejected play request")
		return err
	}

	index, ok := s.catalog.IndexOf(relativePath)
	if !ok {
		return fmt.Errorf("%w: %s", ErrTrackNotFound, relativePath)
	}
	return s.PlayIndex(index)
}

// Stop cancels the running track; the current index is kept
func (s *sequencer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Next plays current+1
func (s *sequencer) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playLocked(s.current + 1)
}

// Previous plays current-1
func (s *sequencer) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playLocked(s.current - 1)
}

// Random plays a uniformly chosen track
func (s *sequencer) Random() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.catalog.Len() == 0 {
		return ErrEmptyCatalog
	}
	return s.playLocked(s.intn(s.catalog.Len()))
}

// State returns a copy of the playback state
func (s *sequencer) State() types.PlaybackState {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := types.StatusIdle
	if s.active != nil {
		status = types.StatusPlaying
	}
	return types.PlaybackState{
		CurrentIndex: s.current,
		Status:       status,
		Generation:   s.generation,
	}
}

// Close stops playback, refuses further starts and waits for exit handlers to finish
func (s *sequencer) Close() {
	s.mu.Lock()
	s.closed = true
	s.stopLocked()
	s.mu.Unlock()

	s.watchers.Wait()
}

func (s *sequencer) playLocked(index int) error {
	if s.closed {
		return ErrSequencerClosed
	}
	if !s.catalog.Contains(index) {
		// The request still ends playback; current is kept so boundary calls repeat identically
		s.stopLocked()
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, s.catalog.Len())
	}

	s.current = index
	return s.startLocked()
}

// startLocked replaces whatever is playing with catalog[s.current]
func (s *sequencer) startLocked() error {
	s.stopLocked()

	track, _ := s.catalog.At(s.current)
	s.generation++

	ctx, cancel := context.WithCancel(context.Background())
	p := &playback{
		generation: s.generation,
		index:      s.current,
		cancel:     cancel,
		done:       make(chan struct{}),
	}

	proc, err := s.launcher.Launch(ctx, track.SourcePath)
	if err != nil {
		cancel()
		metrics.PlaybackFailures.Inc()
		log.Error().Err(err).Int("index", s.current).Str("path", track.SourcePath).Msg("Playback failed to start")
		return NewPlayerError("start", track.RelativePath, fmt.Errorf("%w: %v", ErrPlaybackFailed, err))
	}

	metrics.TracksStarted.Inc()
	log.Info().
		Int("index", s.current).
		Uint64("generation", p.generation).
		Str("path", track.SourcePath).
		Msg("Start song")

	s.active = p
	s.watchers.Add(1)
	go s.watch(p, proc)
	return nil
}

// stopLocked cancels the active process and waits until it has exited
func (s *sequencer) stopLocked() {
	p := s.active
	if p == nil {
		return
	}

	s.active = nil
	s.generation++
	log.Info().Int("index", p.index).Uint64("generation", p.generation).Msg("Stop song")

	p.cancel()
	<-p.done
}

// watch waits for the process; done is closed before taking the lock so stopLocked never deadlocks
func (s *sequencer) watch(p *playback, proc Process) {
	defer s.watchers.Done()

	err := proc.Wait()
	close(p.done)
	s.handleExit(p, err)
}

// handleExit advances exactly once when the process that finished is still the active one
func (s *sequencer) handleExit(p *playback, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil || s.active.generation != p.generation {
		log.Debug().Uint64("generation", p.generation).Msg("Ignoring exit of superseded player")
		return
	}

	s.active = nil
	s.generation++
	p.cancel()

	if err != nil {
		track, _ := s.catalog.At(p.index)
		metrics.PlaybackFailures.Inc()
		log.Error().
			Err(NewPlayerError("play", track.RelativePath, fmt.Errorf("%w: %v", ErrPlaybackFailed, err))).
			Int("index", p.index).
			Msg("Player exited with an error, stopping")
		return
	}

	next := p.index + 1
	if !s.catalog.Contains(next) {
		log.Info().Int("index", p.index).Msg("End of catalog reached")
		return
	}

	metrics.AutoAdvances.Inc()
	s.current = next
	if err := s.startLocked(); err != nil {
		log.Error().Err(err).Int("index", next).Msg("Auto-advance failed")
	}
}
