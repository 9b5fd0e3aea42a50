package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/poly-watch/pkg/analytics"
	"github.com/poly-watch/pkg/config"
	"github.com/poly-watch/pkg/dashboard"
	"github.com/poly-watch/pkg/polymarket"
	"github.com/poly-watch/pkg/render"
	"github.com/poly-watch/pkg/session"
	"github.com/poly-watch/pkg/store"
	"github.com/poly-watch/pkg/tui"
	"github.com/poly-watch/pkg/wallet"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
	log.Info().Msg("👁 Poly Watch starting...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config invalid")
	}

	client := polymarket.NewClient(cfg.DataAPIURL, cfg.CLOBAPIURL, cfg.HTTPTimeout, cfg.FetchMaxElapsed)

	switch cfg.Mode {
	case config.ModeOnce:
		if err := runOnce(cfg, client); err != nil {
			log.Fatal().Err(err).Msg("fetch failed")
		}
	case config.ModeWatch:
		addrs := mustAddresses(cfg.WatchAddresses)
		if err := tui.Run(client.FetchSnapshot, addrs, cfg.WatchInterval); err != nil {
			log.Fatal().Err(err).Msg("watch failed")
		}
	case config.ModeServe:
		if err := runServe(cfg, client); err != nil {
			log.Fatal().Err(err).Msg("server failed")
		}
	}

	log.Info().Msg("goodbye 👋")
}

func mustAddresses(raw []string) []string {
	addrs, err := wallet.ValidateAddresses(strings.Join(raw, ","))
	if err != nil {
		log.Fatal().Err(err).Msg("WATCH_ADDRESSES invalid")
	}
	return addrs
}

func runOnce(cfg *config.Config, client *polymarket.Client) error {
	addrs := mustAddresses(cfg.WatchAddresses)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	snap, err := client.FetchSnapshot(ctx, addrs)
	if err != nil {
		return err
	}
	fmt.Print(render.Render(snap, render.Options{ShowRaw: false}))
	return nil
}

func runServe(cfg *config.Config, client *polymarket.Client) error {
	st, err := store.NewStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	engine := analytics.NewEngine(st, cfg.AnalyticsWindow)
	if err := engine.Refresh(); err != nil {
		log.Warn().Err(err).Msg("initial analytics refresh failed")
	}

	srv := dashboard.New(st, engine, client.FetchSnapshot, cfg.DashboardPort)

	// Background session for addresses configured at boot; the dashboard
	// form drives its own sessions client-side.
	ctrl := session.New(client.FetchSnapshot,
		func(snap *polymarket.Snapshot) {
			if _, err := st.SaveSnapshot(snap); err != nil {
				log.Warn().Err(err).Msg("snapshot not persisted")
			}
			srv.Publish(snap)
		},
		nil,
	)
	defer ctrl.Close()

	if len(cfg.WatchAddresses) > 0 {
		ctrl.Start(mustAddresses(cfg.WatchAddresses), cfg.WatchInterval)
	}

	cr := cron.New()
	if _, err := cr.AddFunc(fmt.Sprintf("@every %s", cfg.AnalyticsRefresh), func() {
		if err := engine.Refresh(); err != nil {
			log.Warn().Err(err).Msg("analytics refresh failed")
		}
	}); err != nil {
		return err
	}
	cr.Start()
	defer cr.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Run)
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
