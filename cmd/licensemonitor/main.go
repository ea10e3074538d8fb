package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"license-monitor/internal/config"
	"license-monitor/internal/inventory"
	"license-monitor/internal/license"
	"license-monitor/internal/logging"
	"license-monitor/internal/store"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "licensemonitor",
		Usage: "Track software licenses, seat assignments and expirations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML configuration file",
				EnvVars: []string{"LICMON_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			licenseCommand(),
			userCommand(),
			assignCommand(),
			unassignCommand(),
			alertsCommand(),
			statsCommand(),
			exportCommand(),
			seedCommand(),
			configCommand(),
		},
	}
}

// deps bundles what every data command needs.
type deps struct {
	cfg *config.Config
	kv  store.KV
	inv *inventory.Store
}

func (d *deps) Close() {
	if err := d.kv.Close(); err != nil {
		log.Warn().Err(err).Msg("closing store")
	}
}

func openRuntime(c *cli.Context) (*deps, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := logging.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	kv, err := store.Open(ctx, store.Options{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.Storage.Path,
		RedisAddr:   cfg.Storage.RedisAddr,
		RedisPrefix: cfg.Storage.RedisPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Driver, err)
	}
	inv, err := inventory.Open(ctx, kv, license.SystemClock{Loc: loc})
	if err != nil {
		_ = kv.Close()
		return nil, err
	}
	if cfg.Seed.OnStart {
		if _, err := inv.Seed(ctx); err != nil {
			_ = kv.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}
	return &deps{cfg: cfg, kv: kv, inv: inv}, nil
}

// withRuntime adapts a command body that needs an open inventory.
func withRuntime(fn func(c *cli.Context, rt *deps) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		rt, err := openRuntime(c)
		if err != nil {
			return err
		}
		defer rt.Close()
		return fn(c, rt)
	}
}
