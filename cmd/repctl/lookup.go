package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/promptmyrep/civic/cmd/api/container"
	"github.com/promptmyrep/civic/cmd/api/models"
	"github.com/promptmyrep/civic/cmd/api/repository"
	"github.com/promptmyrep/civic/cmd/api/service"
	"github.com/promptmyrep/civic/common/bootstrap"
	"github.com/promptmyrep/civic/common/clients"
	"github.com/promptmyrep/civic/common/config"
	"github.com/promptmyrep/civic/common/logger"
	"github.com/spf13/cobra"
)

const serviceName = "repctl"

// dryRunResult is printed when no user is given
type dryRunResult struct {
	Match           *models.AddressMatch     `json:"match"`
	Representatives []*models.Representative `json:"representatives"`
	Count           int                      `json:"count"`
}

func lookupCmd() *cobra.Command {
	var (
		userFlag        string
		includeGovernor bool
	)

	cmd := &cobra.Command{
		Use:   "lookup [address]",
		Short: "Resolve the representatives for an address",
		Long: `Geocode an address and resolve its federal and state representatives.

Without --user nothing is written and the resolved records are printed.
With --user the records are saved and linked to that user in Postgres.

Examples:
  repctl lookup "101 City Hall Plaza, Durham, NC 27701"
  repctl lookup "101 City Hall Plaza, Durham, NC 27701" --user 6f1c1d1e-2b3a-4c5d-8e9f-0a1b2c3d4e5f`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			level, _ := cmd.Flags().GetString("log-level")
			opts := lookupOptions{
				address:         args[0],
				includeGovernor: includeGovernor,
				logLevel:        level,
			}
			if userFlag != "" {
				id, err := uuid.Parse(userFlag)
				if err != nil {
					return fmt.Errorf("invalid --user: %w", err)
				}
				opts.userID = id
			}
			return runLookup(ctx, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&userFlag, "user", "u", "", "save results for this user id (requires database)")
	cmd.Flags().BoolVar(&includeGovernor, "governor", false, "also resolve the state governor")

	return cmd
}

type lookupOptions struct {
	address         string
	userID          uuid.UUID
	includeGovernor bool
	logLevel        string
}

func runLookup(ctx context.Context, opts lookupOptions, out io.Writer) error {
	cfg, err := config.Parse(serviceName)
	if err != nil {
		return err
	}
	cfg.Features.LookupIncludeGovernor = cfg.Features.LookupIncludeGovernor || opts.includeGovernor

	setupOpts := []bootstrap.Option{
		bootstrap.WithCustomConfig(cfg),
		bootstrap.WithCustomLogger(logger.NewWithWriter(os.Stderr, opts.logLevel, cfg.Service.LogFormat)),
		bootstrap.WithoutRedis(),
		bootstrap.WithoutTelemetry(),
	}
	dryRun := opts.userID == uuid.Nil
	if dryRun {
		setupOpts = append(setupOpts, bootstrap.WithoutDB())
	}

	components, err := bootstrap.Setup(ctx, serviceName, setupOpts...)
	if err != nil {
		return err
	}
	defer components.Shutdown(ctx)

	census, congress, openStates := container.NewDirectories(components, clients.NewHTTPClient(nil, components.Logger))

	var store service.RepresentativeStore
	if !dryRun {
		store = repository.NewRepresentativeRepository(components.DB)
	}
	lookup := service.NewLookupService(
		census,
		congress,
		openStates,
		store,
		nil,
		components.Logger,
		service.LookupOptions{IncludeGovernor: cfg.Features.LookupIncludeGovernor},
	)

	if !dryRun {
		summary, err := lookup.Lookup(ctx, opts.userID, opts.address)
		if err != nil {
			return err
		}
		return writeJSON(out, summary)
	}

	match, err := lookup.Locate(ctx, opts.address)
	if err != nil {
		return err
	}
	reps := lookup.Resolve(ctx, match)
	return writeJSON(out, dryRunResult{
		Match:           match,
		Representatives: reps,
		Count:           len(reps),
	})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
