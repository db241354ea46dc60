package reconcile

import (
	"context"

	"github.com/wordsync/api/internal/conflict"
	"github.com/wordsync/api/internal/model"
)

// Stats summarizes the central store.
type Stats struct {
	Total              int    `json:"total"`
	Live               int    `json:"live"`
	Deleted            int    `json:"deleted"`
	LatestModifiedTime string `json:"latestModifiedTime"`
}

// Stats counts live and soft-deleted records and reports the newest
// modifiedTime, as compared by the store's ordering.
func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	words, err := e.PullAll(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Summarize(words), nil
}

func Summarize(words []model.Word) Stats {
	var s Stats
	for _, w := range words {
		s.Total++
		if w.IsDeleted {
			s.Deleted++
		} else {
			s.Live++
		}
		if conflict.Later(w.ModifiedTime, s.LatestModifiedTime) {
			s.LatestModifiedTime = w.ModifiedTime
		}
	}
	return s
}
