package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/bentpower/ercotsum-go/types"
)

// SaveSnapshot upserts one derived snapshot, keyed by its sample time.
// Refreshes between price fetches produce the same as_of_t and simply
// overwrite the previous row.
func (a *Archive) SaveSnapshot(ctx context.Context, snap types.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	_, err = a.write.ExecContext(ctx, `
		INSERT INTO snapshot (as_of_t, as_of, curr_spp_cents, curr_delivered_cents,
			avg_delivered_cents, cost_level, is_low_cost, is_stale, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (as_of_t) DO UPDATE SET
			as_of = excluded.as_of,
			curr_spp_cents = excluded.curr_spp_cents,
			curr_delivered_cents = excluded.curr_delivered_cents,
			avg_delivered_cents = excluded.avg_delivered_cents,
			cost_level = excluded.cost_level,
			is_low_cost = excluded.is_low_cost,
			is_stale = excluded.is_stale,
			data = excluded.data`,
		snap.AsOfT,
		snap.AsOf,
		snap.CurrSppCents,
		snap.CurrDeliveredCents,
		snap.AvgDeliveredCents,
		snap.CostLevel,
		snap.IsLowCost,
		snap.IsStale,
		string(data))
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// GetSnapshotsSince returns archived snapshots at or after the given
// time, oldest first.
func (a *Archive) GetSnapshotsSince(ctx context.Context, since time.Time) ([]types.Snapshot, error) {
	rows, err := a.read.QueryContext(ctx, `
		SELECT data FROM snapshot WHERE as_of_t >= ? ORDER BY as_of_t ASC`,
		since.Unix())
	if err != nil {
		return nil, fmt.Errorf("fetching snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []types.Snapshot
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var snap types.Snapshot
		if err := json.Unmarshal([]byte(data), &snap); err != nil {
			a.logger.Warn("skipping undecodable snapshot row", slog.Any("error", err))
			continue
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading snapshot rows: %w", err)
	}

	return snaps, nil
}

func (a *Archive) PurgeSnapshots(ctx context.Context, retentionDays int) error {
	a.logger.Debug("purging snapshots")
	cutoff := time.Now().Add(-24 * time.Hour * time.Duration(retentionDays)).Unix()
	res, err := a.write.ExecContext(ctx, `DELETE FROM snapshot WHERE as_of_t < ?`, cutoff)
	if err != nil {
		return fmt.Errorf("purging snapshots: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		a.logger.Warn("can't get rows affected by purge", slog.Any("error", err))
	} else {
		a.logger.Debug(fmt.Sprintf("purged %d snapshot rows", rows))
	}
	return nil
}
