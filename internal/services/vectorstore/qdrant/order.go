package qdrant

import (
	"sort"

	"github.com/ternarybob/quaestor/internal/models"
)

// scoredHit pairs a search hit with the insertion sequence from its payload
type scoredHit struct {
	record   models.ScoredRecord
	sequence int64
}

// orderHits sorts hits by descending score, breaking equal scores by
// ascending insertion sequence so result ordering is deterministic.
func orderHits(hits []scoredHit) []models.ScoredRecord {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].record.Score != hits[j].record.Score {
			return hits[i].record.Score > hits[j].record.Score
		}
		return hits[i].sequence < hits[j].sequence
	})

	records := make([]models.ScoredRecord, len(hits))
	for i, hit := range hits {
		records[i] = hit.record
	}
	return records
}
