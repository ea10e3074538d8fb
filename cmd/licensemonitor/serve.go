package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"license-monitor/internal/httpapi"
	"license-monitor/internal/telegram"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the HTTP API and, when configured, the Telegram bot",
		Action: withRuntime(runServe),
	}
}

func runServe(c *cli.Context, rt *deps) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	api := httpapi.New(rt.inv, rt.cfg.HTTP.RateLimit)
	httpServer := &http.Server{
		Addr:              rt.cfg.HTTP.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		log.Info().Str("addr", rt.cfg.HTTP.Addr).Msg("http listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if tg := rt.cfg.Telegram; tg.Token != "" {
		bot, err := telegram.NewBot(tg.Token, tg.AdminChatID, rt.inv)
		if err != nil {
			stop()
			_ = g.Wait()
			return err
		}
		g.Go(func() error { return bot.Run(ctx) })
		g.Go(func() error { return bot.RunDigest(ctx, tg.DigestInterval) })
		log.Info().Int64("admin_chat_id", tg.AdminChatID).Dur("digest_interval", tg.DigestInterval).Msg("telegram bot started")
	} else {
		log.Info().Msg("telegram.token not set, bot disabled")
	}

	return g.Wait()
}
