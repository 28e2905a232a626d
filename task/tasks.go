package task

import (
	"context"
	"log/slog"

	"github.com/bentpower/ercotsum-go/archive"
	"github.com/bentpower/ercotsum-go/config"
	"github.com/bentpower/ercotsum-go/ercot"
	"github.com/bentpower/ercotsum-go/pricing"
	"github.com/bentpower/ercotsum-go/store"
	"github.com/bentpower/ercotsum-go/types"
	"github.com/robfig/cron/v3"
)

type Tasks struct {
	cron            *cron.Cron
	cnfg            *config.AppConfig
	RealTimeTask    func()
	DayAheadTask    func()
	SnapshotTask    func()
	MaintenanceTask func()
}

// OnSnapshot is called with every freshly computed snapshot, after it has
// been cached and archived. The web layer hangs its live push off this.
type OnSnapshot func(*types.Snapshot)

func NewTasks(
	client *ercot.Client,
	files *store.Files,
	engine *pricing.Engine,
	db *archive.Archive,
	cache *store.SnapshotCache,
	onSnapshot OnSnapshot,
	cnfg *config.AppConfig,
) *Tasks {
	logger := slog.Default().With("module", "tasks")
	return &Tasks{
		cron:            cron.New(),
		cnfg:            cnfg,
		RealTimeTask:    NewRealTimeTask(logger.With(slog.String("task", "real_time")), client, files, cnfg),
		DayAheadTask:    NewDayAheadTask(logger.With(slog.String("task", "day_ahead")), client, files, cnfg),
		SnapshotTask:    NewSnapshotTask(logger.With(slog.String("task", "snapshot")), engine, db, cache, onSnapshot, cnfg),
		MaintenanceTask: NewMaintenanceTask(logger.With(slog.String("task", "maintenance")), files, db, cnfg),
	}
}

func (t *Tasks) Run() {
	_, err := t.cron.AddFunc(t.cnfg.Ercot.GetRealTimeRunAt(), t.RealTimeTask)
	if err != nil {
		panic(err)
	}
	_, err = t.cron.AddFunc(t.cnfg.Ercot.GetDayAheadRunAt(), t.DayAheadTask)
	if err != nil {
		panic(err)
	}
	_, err = t.cron.AddFunc(t.cnfg.Snapshot.GetRunAt(), t.SnapshotTask)
	if err != nil {
		panic(err)
	}
	_, err = t.cron.AddFunc(t.cnfg.Snapshot.GetMaintenanceRunAt(), t.MaintenanceTask)
	if err != nil {
		panic(err)
	}
	t.cron.Start()
}

func (t *Tasks) Stop() context.Context {
	return t.cron.Stop()
}
