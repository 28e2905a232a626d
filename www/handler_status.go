package www

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/bentpower/ercotsum-go/config"
	"github.com/bentpower/ercotsum-go/pricing"
	"github.com/bentpower/ercotsum-go/store"
	"github.com/bentpower/ercotsum-go/types"
	"github.com/gorilla/sessions"
)

const sessionName = "ercotsum"

// NewStatusHandler serves the human status page. The day-ahead table is a
// per-viewer preference kept in a session cookie, toggled with ?dam=0|1.
func NewStatusHandler(
	logger *slog.Logger,
	cnfg *config.AppConfig,
	engine *pricing.Engine,
	cache *store.SnapshotCache,
	cookies *sessions.CookieStore,
	tm *TemplateManager,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		session, _ := cookies.Get(r, sessionName)
		if v := r.URL.Query().Get("dam"); v != "" {
			session.Values["show_dam"] = v == "1"
			if err := session.Save(r, w); err != nil {
				logger.Warn("saving session", slog.Any("error", err))
			}
		}
		showDam, _ := session.Values["show_dam"].(bool)

		snap, err := loadSnapshot(engine, cache, showDam)
		if err != nil {
			if errors.Is(err, pricing.ErrDataUnavailable) {
				http.Error(w, "current price data unavailable", http.StatusServiceUnavailable)
			} else {
				logger.Error("handling status request", slog.Any("error", err))
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}

		data := struct {
			Status  LiveStatus
			ShowDam bool
			Dam     map[string]types.DamPrices
		}{
			Status:  BuildLiveStatus(snap, cnfg, time.Now()),
			ShowDam: showDam,
			Dam:     snap.Dam,
		}

		w.Header().Set("Content-Type", "text/html")
		if err := tm.ExecuteToWriter("status.html", data, &w); err != nil {
			logger.Error("handling status request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// loadSnapshot serves from the short-lived cache when it can. A cached
// snapshot computed without the day-ahead table cannot satisfy a request
// that wants one.
func loadSnapshot(engine *pricing.Engine, cache *store.SnapshotCache, includeDam bool) (*types.Snapshot, error) {
	if snap, ok := cache.Load(); ok {
		if !includeDam || snap.Dam != nil {
			return snap, nil
		}
	}
	// The snapshot task keeps the cache warm, so a miss here just means
	// computing once from the files.
	return engine.Snapshot(time.Now(), includeDam)
}
