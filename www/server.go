package www

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/bentpower/ercotsum-go/archive"
	"github.com/bentpower/ercotsum-go/config"
	"github.com/bentpower/ercotsum-go/pricing"
	"github.com/bentpower/ercotsum-go/store"
	"github.com/bentpower/ercotsum-go/types"
	"github.com/gorilla/sessions"
)

type Server struct {
	logger *slog.Logger
	cnfg   *config.AppConfig
	db     *archive.Archive
	engine *pricing.Engine
	cache  *store.SnapshotCache
	hub    *Hub
	tm     *TemplateManager
}

//go:embed static
var embeddedStaticDir embed.FS

func StartServer(db *archive.Archive, engine *pricing.Engine, cache *store.SnapshotCache, cnfg *config.AppConfig) *Server {
	logger := slog.Default().With("module", "www")
	tm, err := NewTemplateManager(logger, cnfg.Api.WwwDir)
	if err != nil {
		logger.Error("template manager initialization error", slog.Any("error", err))
	}

	s := &Server{
		logger: logger,
		cnfg:   cnfg,
		db:     db,
		engine: engine,
		cache:  cache,
		hub:    NewHub(logger),
		tm:     tm,
	}

	go s.hub.Run()

	cookies := sessions.NewCookieStore([]byte(cnfg.Api.GetSessionKey()))

	logReqMW := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.logger.Debug("http request",
				slog.String("method", r.Method),
				slog.String("url", r.URL.String()),
				slog.String("remoteAddr", r.RemoteAddr))
			next.ServeHTTP(w, r)
		})
	}

	http.Handle("/", staticFilesHandler(cnfg.Api.WwwDir))

	http.Handle("/status", logReqMW(NewStatusHandler(
		logger.With(slog.String("handler", "status")),
		cnfg,
		engine,
		cache,
		cookies,
		s.tm)))

	http.Handle("/snapshot", logReqMW(NewSnapshotHandler(
		logger.With(slog.String("handler", "snapshot")),
		engine,
		cache)))

	http.Handle("/chart", logReqMW(NewChartHandler(
		logger.With(slog.String("handler", "chart")),
		s.db)))

	http.Handle("/log", logReqMW(NewLogHandler(
		logger.With(slog.String("handler", "log")),
		s.db,
		s.tm)))

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		name := r.Header.Get("User-Agent")
		client, err := NewClient(s.hub, w, r, name)
		if err != nil {
			s.logger.Error("new websocket client failed", slog.Any("error", err))
			return
		}
		s.hub.Register <- client
		go client.WritePump()
	})

	return s
}

// PushSnapshot renders the live status fragment and broadcasts it to
// every connected websocket client. Wired up as the snapshot task hook.
func (s *Server) PushSnapshot(snap *types.Snapshot) {
	status := BuildLiveStatus(snap, s.cnfg, time.Now())
	buf, err := s.tm.Execute("live_status.html", status)
	if err != nil {
		s.logger.Error("template execution failed", slog.Any("error", err))
		return
	}
	s.hub.Broadcast <- buf.Bytes()
}

func (s *Server) Run(ctx context.Context) {
	s.logger.Info("starting server...", "port", s.cnfg.Api.Port)
	srv := &http.Server{
		Addr: fmt.Sprintf("%s:%d", s.cnfg.Api.Address, s.cnfg.Api.Port),
	}

	srvErrors := make(chan error, 1)

	go func() {
		srvErrors <- srv.ListenAndServe()
	}()

	for {
		select {
		case err := <-srvErrors:
			if err != nil {
				s.logger.Error("server error", slog.Any("error", err))
			}

		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
			defer cancel()
			err := srv.Shutdown(shutdownCtx)
			if err != nil {
				s.logger.Error("server shutdown failed", slog.Any("error", err))
			}
			return
		}
	}
}

func staticFilesHandler(extDir *string) http.Handler {
	if extDir != nil && *extDir != "" {
		staticDir := path.Join(*extDir, "static")
		if _, err := os.Stat(staticDir); err == nil {
			return http.FileServer(http.Dir(staticDir))
		}
	}

	fsys, err := fs.Sub(embeddedStaticDir, "static")
	if err != nil {
		log.Panic(err)
	}
	return http.FileServer(http.FS(fsys))
}
