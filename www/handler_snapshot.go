package www

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bentpower/ercotsum-go/pricing"
	"github.com/bentpower/ercotsum-go/store"
)

// NewSnapshotHandler serves the snapshot as JSON. ?dam=1 includes the
// full day-ahead table, ?pre=1 returns indented text for reading in a
// terminal or browser without tooling.
func NewSnapshotHandler(logger *slog.Logger, engine *pricing.Engine, cache *store.SnapshotCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		includeDam := r.URL.Query().Get("dam") == "1"
		snap, err := loadSnapshot(engine, cache, includeDam)
		if err != nil {
			if errors.Is(err, pricing.ErrDataUnavailable) {
				http.Error(w, "current price data unavailable", http.StatusServiceUnavailable)
			} else {
				logger.Error("handling snapshot request", slog.Any("error", err))
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}

		if r.URL.Query().Get("pre") == "1" {
			w.Header().Set("Content-Type", "text/plain")
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			if err := enc.Encode(snap); err != nil {
				logger.Error("encoding snapshot", slog.Any("error", err))
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(snap); err != nil {
			logger.Error("encoding snapshot", slog.Any("error", err))
		}
	}
}
