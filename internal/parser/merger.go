package parser

import (
	"sort"

	"github.com/geotrack/geotrack/internal/models"
)

// MergePositions merges multiple ParsedTrack results into a single track.
// It handles:
// 1. Concatenating positions in input order (no cross-file deduplication)
// 2. Stable sorting by timestamp, so equal timestamps keep input order
// 3. Computing the time range of the result
func MergePositions(tracks []*models.ParsedTrack) *models.MergedTrack {
	total := 0
	for _, t := range tracks {
		if t != nil {
			total += len(t.Positions)
		}
	}

	all := make([]models.Position, 0, total)
	for _, t := range tracks {
		if t == nil {
			continue
		}
		all = append(all, t.Positions...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp.Before(all[j].Timestamp)
	})

	result := &models.MergedTrack{Positions: all}
	if len(all) > 0 {
		result.TimeRange = &models.TimeRange{
			Start: all[0].Timestamp,
			End:   all[len(all)-1].Timestamp,
		}
	}

	return result
}

// CollectWarnings flattens the warnings of all tracks in input order.
func CollectWarnings(tracks []*models.ParsedTrack) []models.DecodeWarning {
	var out []models.DecodeWarning
	for _, t := range tracks {
		if t != nil {
			out = append(out, t.Warnings...)
		}
	}
	return out
}
