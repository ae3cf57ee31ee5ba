package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"

	"clam-browse/internal/auth"
	"clam-browse/internal/catalog"
	"clam-browse/internal/config"
	"clam-browse/internal/db"
	"clam-browse/internal/featureflags"
	mw "clam-browse/internal/http/middleware"
	"clam-browse/internal/logger"
	"clam-browse/internal/prefs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger.Configure(os.Stderr, cfg.LogFormat, cfg.LogLevel)

	// 1) DB init
	sqlDB, err := db.Init(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}
	defer sqlDB.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Migrate(migrateCtx, sqlDB); err != nil {
		cancelMigrate()
		log.Fatalf("database migrate failed: %v", err)
	}
	cancelMigrate()

	// 2) Feature flags init (non-fatal)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := featureflags.Init(ctx, cfg.RolloutKey); err != nil {
		logger.Warnf("feature flags init warning: %v", err)
	} else {
		logger.SetLevel(featureflags.Values().LogLevel.GetValue(nil))
		logger.Infof("feature flags ready: offline=%v, logLevel=%s, searchPushdown=%v",
			featureflags.Values().Offline.IsEnabled(nil),
			featureflags.Values().LogLevel.GetValue(nil),
			featureflags.Values().SearchPushdown.IsEnabled(nil))
		go watchLogLevel()
	}
	defer featureflags.Shutdown()
	logger.Infof("log level set to %s", logger.GetLevel())

	// 3) Router
	r := mux.NewRouter()
	r.Use(mw.OfflineGate(func() bool { return featureflags.Values().Offline.IsEnabled(nil) }))
	r.Use(mw.LogRequests(mw.WithSkips("/health", "/ready")))

	// 4) Health endpoints
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	r.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := sqlDB.PingContext(r.Context()); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}).Methods(http.MethodGet)

	// 5) Inspect current flag values
	r.HandleFunc("/_flags", func(w http.ResponseWriter, _ *http.Request) {
		resp := map[string]any{
			"offline":        featureflags.Values().Offline.IsEnabled(nil),
			"logLevel":       featureflags.Values().LogLevel.GetValue(nil),
			"searchPushdown": featureflags.Values().SearchPushdown.IsEnabled(nil),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}).Methods(http.MethodGet)

	// 6) Catalog, browse and preference endpoints
	handler := catalog.NewHandler(catalog.NewStore(sqlDB), auth.NewVerifier(cfg.JWTSecret), catalog.Options{
		PageSize:       cfg.PageSize,
		MaxPageSize:    cfg.MaxPageSize,
		SearchPushdown: func() bool { return featureflags.Values().SearchPushdown.IsEnabled(nil) },
		Prefs:          func(session string) prefs.Store { return prefs.NewSQLStore(sqlDB, session) },
	})
	handler.Register(r)

	s := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Infof("clam-browse listening on %s", s.Addr)
	log.Fatal(s.ListenAndServe())
}

// watchLogLevel applies LogLevel flag flips to the process logger
func watchLogLevel() {
	prev := featureflags.Values().LogLevel.GetValue(nil)
	for {
		time.Sleep(5 * time.Second)
		cur := featureflags.Values().LogLevel.GetValue(nil)
		if cur != prev {
			logger.SetLevel(cur)
			logger.Infof("log level changed to %s", logger.GetLevel())
			prev = cur
		}
	}
}
