package services

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"jukebox/metrics"
)

// VolumeController interface defines the output volume operations
type VolumeController interface {
	SetVolume(ctx context.Context, percent float64) error
	// Volume returns the last volume set, false before the first successful call
	Volume() (float64, bool)
}

// volumeController drives an amixer-style mixer: "<mixer> sset <control> <N>%"
type volumeController struct {
	mixer   string
	control string
	run     CommandRunner

	runMu   sync.Mutex // one mixer invocation in flight
	mu      sync.RWMutex
	current *float64
}

// NewVolumeController creates a new volume controller
func NewVolumeController(mixer, control string, run CommandRunner) VolumeController {
	if run == nil {
		run = RunCommand
	}
	return &volumeController{
		mixer:   mixer,
		control: control,
		run:     run,
	}
}

// ValidateVolume accepts finite percentages in [0, 100]
func ValidateVolume(percent float64) error {
	if math.IsNaN(percent) || math.IsInf(percent, 0) || percent < 0 || percent > 100 {
		return fmt.Errorf("%w: %v", ErrInvalidVolume, percent)
	}
	return nil
}

// ParseVolume parses a request value such as "40" or "37.5"
func ParseVolume(value string) (float64, error) {
	percent, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidVolume, value)
	}
	if err := ValidateVolume(percent); err != nil {
		return 0, err
	}
	return percent, nil
}

// SetVolume runs the mixer and waits for it; the stored volume only changes on success
func (v *volumeController) SetVolume(ctx context.Context, percent float64) error {
	if err := ValidateVolume(percent); err != nil {
		return err
	}

	v.runMu.Lock()
	defer v.runMu.Unlock()

	level := strconv.FormatFloat(percent, 'f', -1, 64) + "%"
	log.Info().Float64("volume", percent).Msg("Set volume")

	if _, err := v.run(ctx, v.mixer, "sset", v.control, level); err != nil {
		return NewPlayerError("set volume", "", err)
	}

	v.mu.Lock()
	v.current = &percent
	v.mu.Unlock()

	metrics.VolumeChanges.Inc()
	return nil
}

func (v *volumeController) Volume() (float64, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.current == nil {
		return 0, false
	}
	return *v.current, true
}
