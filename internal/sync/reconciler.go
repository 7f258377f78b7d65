package sync

import (
	"context"

	"github.com/rs/zerolog"
)

// Tally counts one reconciliation unit's outcomes. Processed is always
// Synced + Failed: every record attempted lands in exactly one bucket.
type Tally struct {
	Processed int `json:"processed"`
	Synced    int `json:"synced"`
	Failed    int `json:"failed"`
}

func (t *Tally) Add(o Tally) {
	t.Processed += o.Processed
	t.Synced += o.Synced
	t.Failed += o.Failed
}

// lister fetches one page of remote records and returns the continuation
// token for the next, empty when exhausted.
type lister[R any] func(ctx context.Context, pageToken string) ([]R, string, error)

// reconcile drains every page of a remote listing and applies each record,
// isolating per-record failures: an apply error is logged with the record's
// natural key and tallied, never raised. A failed page fetch aborts the whole
// unit (the remote data is unavailable, not just one row) and propagates with
// whatever was tallied so far.
func reconcile[R any](ctx context.Context, log zerolog.Logger, list lister[R], key func(R) string, apply func(context.Context, R) error) (Tally, error) {
	var tally Tally

	pageToken := ""
	for {
		items, next, err := list(ctx, pageToken)
		if err != nil {
			return tally, err
		}

		for _, item := range items {
			tally.Processed++
			if err := apply(ctx, item); err != nil {
				log.Error().Err(err).Str("key", key(item)).Msg("Record sync failed")
				tally.Failed++
				continue
			}
			tally.Synced++
		}

		if next == "" {
			return tally, nil
		}
		pageToken = next
	}
}
