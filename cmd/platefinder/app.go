package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/platefinder/internal/config"
	"github.com/okian/platefinder/internal/domain/criteria"
	"github.com/urfave/cli/v3"
)

const name = "platefinder"

// overridden during build with ldflags
var version = "dev"

var errNoQuery = errors.New("parse: query required")

func newApp() *cli.Command {
	return &cli.Command{
		Name:    name,
		Usage:   "Restaurant recommendations from free-text queries",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file (defaults to $PLATEFINDER_CONFIG)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "override log_level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "override the HTTP listen address",
			},
		},
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API (default)",
				Action: serveAction,
			},
			{
				Name:      "parse",
				Usage:     "Print the criteria read from a query",
				ArgsUsage: "<query words...>",
				Action:    parseAction,
			},
		},
	}
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}
	if v := cmd.String("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v := cmd.String("addr"); v != "" {
		cfg.Addr = v
	}
	return serve(ctx, cfg)
}

func parseAction(_ context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if query == "" {
		return errNoQuery
	}
	out, err := json.MarshalIndent(criteria.Parse(query), "", "  ")
	if err != nil {
		return fmt.Errorf("encode criteria: %w", err)
	}
	_, err = fmt.Fprintln(cmd.Root().Writer, string(out))
	return err
}
