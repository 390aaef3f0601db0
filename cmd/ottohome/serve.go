package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/ottohome/internal/engine"
	"github.com/hammamikhairi/ottohome/internal/metrics"
	"github.com/hammamikhairi/ottohome/internal/server"
	"github.com/hammamikhairi/ottohome/internal/session"
	"github.com/hammamikhairi/ottohome/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat over HTTP and websockets",
	Long: `Each client creates a session with POST /sessions and talks to it with
POST /sessions/{id}/messages or over GET /sessions/{id}/ws. Every session has
its own devices. Idle sessions expire after server.session_ttl.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().Int("max-sessions", 0, "cap on live sessions (overrides server.max_sessions)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := app.cfg
	if f := cmd.Flags(); f.Changed("addr") {
		cfg.Server.Addr, _ = f.GetString("addr")
	}
	if f := cmd.Flags(); f.Changed("max-sessions") {
		cfg.Server.MaxSessions, _ = f.GetInt("max-sessions")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recipes, err := catalog()
	if err != nil {
		return err
	}
	m := metrics.New()
	mgr := session.NewManager(storage.NewMemoryStore(app.log), recipes, app.log,
		session.WithTTL(cfg.SessionTTL()),
		session.WithMaxSessions(cfg.Server.MaxSessions),
		session.WithEngineOptions(engine.WithObserver(m.ObserveIntent)),
		session.WithActiveHook(m.SetActiveSessions),
	)
	go mgr.Run(ctx, sweepInterval(cfg.SessionTTL()))

	app.log.Info("serving on %s (ttl=%s, max_sessions=%d)", cfg.Server.Addr, cfg.SessionTTL(), cfg.Server.MaxSessions)
	cmd.Printf("ottohome listening on %s\n", cfg.Server.Addr)
	return server.New(mgr, m, app.log).ListenAndServe(ctx, cfg.Server.Addr)
}

// sweepInterval checks for idle sessions a few times per TTL.
func sweepInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return time.Hour
	}
	return max(ttl/4, time.Second)
}

