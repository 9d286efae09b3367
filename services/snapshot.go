package services

import "jukebox/types"

// TakeSnapshot reads sequencer and volume state without side effects
func TakeSnapshot(seq Sequencer, volume VolumeController, catalog *Catalog) types.Snapshot {
	state := seq.State()
	snapshot := types.Snapshot{
		CurrentIndex: state.CurrentIndex,
		Status:       state.Status,
	}

	if level, ok := volume.Volume(); ok {
		snapshot.CurrentVolume = &level
	}

	if track, ok := catalog.At(state.CurrentIndex); ok {
		snapshot.Track = &track
	}
	return snapshot
}
