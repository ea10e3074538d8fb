package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"license-monitor/internal/license"
)

func licenseCommand() *cli.Command {
	return &cli.Command{
		Name:  "license",
		Usage: "Manage licenses",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a license",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Software name", Required: true},
					&cli.StringFlag{Name: "key", Usage: "License key (generated when empty)"},
					&cli.IntFlag{Name: "seats", Usage: "Total seats", Required: true},
					&cli.StringFlag{Name: "expires", Usage: "Expiration date, YYYY-MM-DD", Required: true},
				},
				Action: withRuntime(func(c *cli.Context, rt *deps) error {
					lic, err := rt.inv.AddLicense(c.Context, license.LicenseInput{
						SoftwareName:   c.String("name"),
						LicenseKey:     c.String("key"),
						TotalSeats:     c.Int("seats"),
						ExpirationDate: c.String("expires"),
					})
					if err != nil {
						return err
					}
					fmt.Printf("Added license %s (%s)\n", lic.ID, lic.LicenseKey)
					return nil
				}),
			},
			{
				Name:  "list",
				Usage: "List licenses",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "available", Usage: "Only licenses with free seats"},
				},
				Action: withRuntime(func(c *cli.Context, rt *deps) error {
					list := rt.inv.Licenses()
					if c.Bool("available") {
						list = rt.inv.AvailableLicenses()
					}
					now := rt.inv.Now()
					tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "ID\tSOFTWARE\tKEY\tTOTAL\tUSED\tAVAILABLE\tEXPIRES\tSTATUS")
					for _, l := range list {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n", l.ID, l.SoftwareName, l.LicenseKey,
							l.TotalSeats, l.UsedSeats, l.Available(), l.ExpirationDate.Display(),
							license.StatusAt(l.ExpirationDate, now))
					}
					return tw.Flush()
				}),
			},
			{
				Name:      "delete",
				Usage:     "Delete a license and its assignments",
				ArgsUsage: "<license-id>",
				Action: withRuntime(func(c *cli.Context, rt *deps) error {
					id, err := oneArg(c)
					if err != nil {
						return err
					}
					return rt.inv.DeleteLicense(c.Context, id)
				}),
			},
		},
	}
}

func userCommand() *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Manage users",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "department"},
				},
				Action: withRuntime(func(c *cli.Context, rt *deps) error {
					u, err := rt.inv.AddUser(c.Context, license.UserInput{
						Name:       c.String("name"),
						Email:      c.String("email"),
						Department: c.String("department"),
					})
					if err != nil {
						return err
					}
					fmt.Printf("Added user %s\n", u.ID)
					return nil
				}),
			},
			{
				Name:  "list",
				Usage: "List users",
				Action: withRuntime(func(c *cli.Context, rt *deps) error {
					snap := rt.inv.Snapshot()
					active := map[string]int{}
					for _, a := range snap.Assignments {
						active[a.UserID]++
					}
					tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tDEPARTMENT\tLICENSES")
					for _, u := range snap.Users {
						dept := u.Department
						if dept == "" {
							dept = "-"
						}
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", u.ID, u.Name, u.Email, dept, active[u.ID])
					}
					return tw.Flush()
				}),
			},
			{
				Name:      "delete",
				Usage:     "Delete a user and release their seats",
				ArgsUsage: "<user-id>",
				Action: withRuntime(func(c *cli.Context, rt *deps) error {
					id, err := oneArg(c)
					if err != nil {
						return err
					}
					return rt.inv.DeleteUser(c.Context, id)
				}),
			},
		},
	}
}

func assignCommand() *cli.Command {
	return &cli.Command{
		Name:  "assign",
		Usage: "Assign a license seat to a user",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Required: true},
			&cli.StringFlag{Name: "license", Required: true},
			&cli.StringFlag{Name: "date", Usage: "Access date, YYYY-MM-DD (default today)"},
		},
		Action: withRuntime(func(c *cli.Context, rt *deps) error {
			a, err := rt.inv.Assign(c.Context, license.AssignInput{
				UserID:     c.String("user"),
				LicenseID:  c.String("license"),
				AccessDate: c.String("date"),
			})
			if err != nil {
				return err
			}
			fmt.Printf("Assigned %s\n", a.ID)
			return nil
		}),
	}
}

func unassignCommand() *cli.Command {
	return &cli.Command{
		Name:      "unassign",
		Usage:     "Remove an assignment and release its seat",
		ArgsUsage: "<assignment-id>",
		Action: withRuntime(func(c *cli.Context, rt *deps) error {
			id, err := oneArg(c)
			if err != nil {
				return err
			}
			return rt.inv.Unassign(c.Context, id)
		}),
	}
}

func oneArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("usage: %s %s", c.Command.FullName(), c.Command.ArgsUsage)
	}
	return c.Args().First(), nil
}
