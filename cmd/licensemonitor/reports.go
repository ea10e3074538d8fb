package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"license-monitor/internal/config"
	"license-monitor/internal/export"
	"license-monitor/internal/report"
)

func alertsCommand() *cli.Command {
	return &cli.Command{
		Name:  "alerts",
		Usage: "Show expiration and seat availability alerts",
		Flags: []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "Print as JSON"}},
		Action: withRuntime(func(c *cli.Context, rt *deps) error {
			alerts := report.Alerts(rt.inv.Snapshot(), rt.inv.Now())
			if c.Bool("json") {
				return printJSON(alerts)
			}
			if len(alerts) == 0 {
				fmt.Println("All licenses are in good standing!")
				return nil
			}
			for _, a := range alerts {
				fmt.Printf("[%s] %s\n    %s\n", a.Severity, a.Title, a.Message)
			}
			return nil
		}),
	}
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show dashboard statistics",
		Action: withRuntime(func(c *cli.Context, rt *deps) error {
			return printJSON(report.ComputeStats(rt.inv.Snapshot(), rt.inv.Now()))
		}),
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write the license report workbook",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Value: export.FormatXLSX, Usage: "xlsx or csv"},
			&cli.StringFlag{Name: "out", Value: ".", Usage: "Output directory"},
		},
		Action: withRuntime(func(c *cli.Context, rt *deps) error {
			now := rt.inv.Now()
			format := c.String("format")
			exp := report.BuildExport(rt.inv.Snapshot(), now)

			path := filepath.Join(c.String("out"), export.Filename(now, format))
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			if err := export.Write(f, format, exp); err != nil {
				_ = f.Close()
				_ = os.Remove(path)
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", path)
			return nil
		}),
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Load sample licenses and users into an empty store",
		Action: withRuntime(func(c *cli.Context, rt *deps) error {
			seeded, err := rt.inv.Seed(c.Context)
			if err != nil {
				return err
			}
			if !seeded {
				fmt.Println("Store is not empty, nothing seeded")
				return nil
			}
			fmt.Println("Sample data loaded")
			return nil
		}),
	}
}

// configCommand returns the config command
func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage configuration",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Initialize a new configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
						Value:   "licmon.toml",
					},
				},
				Action: func(c *cli.Context) error {
					out := c.String("output")
					if err := config.InitConfig(out); err != nil {
						return fmt.Errorf("failed to initialize config: %w", err)
					}
					fmt.Printf("Created configuration file at %s\n", out)
					return nil
				},
			},
			{
				Name:  "validate",
				Usage: "Validate the configuration",
				Action: func(c *cli.Context) error {
					cfg, err := config.LoadConfig(c.String("config"))
					if err != nil {
						return fmt.Errorf("failed to load config: %w", err)
					}
					if err := config.Validate(cfg); err != nil {
						return fmt.Errorf("invalid configuration: %w", err)
					}
					fmt.Println("Configuration is valid")
					return nil
				},
			},
		},
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
