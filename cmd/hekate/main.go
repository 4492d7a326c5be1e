package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/hekate/internal/cli"
	"github.com/julianstephens/hekate/internal/config"
	"github.com/julianstephens/hekate/internal/constants"
	herrors "github.com/julianstephens/hekate/internal/errors"
	"github.com/julianstephens/hekate/internal/logger"
	"github.com/julianstephens/hekate/internal/storage"
	"github.com/julianstephens/hekate/internal/storage/postgres"
	"github.com/julianstephens/hekate/internal/storage/sqlite"
)

var CLI struct {
	Version   kong.VersionFlag
	ConfigDir string `name:"config-dir" help:"Configuration directory." type:"path" default:"${config_dir}"`
	APIURL    string `name:"api-url" help:"Hekate API base URL (overrides HEKATE_API_URL)."`
	CacheAt   string `name:"cache" help:"Cache location: a SQLite file or a PostgreSQL connection string without embedded credentials."`
	NoCache   bool   `name:"no-cache" help:"Keep the cache in memory only."`
	Verbose   bool   `name:"debug" help:"Verbose logging to stderr."`

	Init     cli.InitCmd     `cmd:"" help:"Initialize the local cache."`
	Doctor   cli.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Tui      cli.TuiCmd      `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Auth     cli.AuthCmd     `cmd:"" help:"Manage your account and session."`
	Dream    cli.DreamCmd    `cmd:"" help:"Manage dreams."`
	Image    cli.ImageCmd    `cmd:"" help:"Manage dream images."`
	Routine  cli.RoutineCmd  `cmd:"" help:"Manage the private weekly routine."`
	Read     cli.ReadCmd     `cmd:"" help:"Show the reading of the day."`
	Cache    cli.CacheCmd    `cmd:"" help:"Inspect or clear cached queries."`
	Validate cli.ValidateCmd `cmd:"" help:"Check server data for inconsistencies."`
	Debug    cli.DebugCmd    `cmd:"" help:"Debug commands for troubleshooting."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Dreams, private routines and daily reads from the terminal"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":    constants.Version,
			"config_dir": constants.DefaultConfigDir,
		},
	)

	cfg, err := config.Load(CLI.ConfigDir)
	if err != nil {
		herrors.Fatal(err)
	}
	if CLI.APIURL != "" {
		cfg.APIURL = CLI.APIURL
	}
	if CLI.CacheAt != "" {
		cfg.CachePath = CLI.CacheAt
	}
	cfg.Debug = cfg.Debug || CLI.Verbose

	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: cfg.ConfigDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	// Doctor reports a bad configuration itself.
	if ctx.Command() != "doctor" {
		if err := cfg.Validate(); err != nil {
			herrors.Fatal(err)
		}
	}

	var store storage.Provider
	if !CLI.NoCache {
		store, err = openStore(cfg.CachePath)
		if err != nil {
			herrors.Fatalf("failed to open cache (use --no-cache to skip it): %v", err)
		}
		defer store.Close()
	}

	appCtx, err := cli.NewContext(cfg, cli.Deps{Store: store})
	if err != nil {
		herrors.Fatal(err)
	}
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	appCtx.Ctx = runCtx

	if err := ctx.Run(appCtx); err != nil {
		logger.Debug("Command failed", "command", ctx.Command())
		stop()
		if store != nil {
			store.Close()
		}
		herrors.Fatal(err)
	}
}

// openStore picks the cache backend from the location's form.
func openStore(location string) (storage.Provider, error) {
	if storage.IsPostgres(location) {
		if err := postgres.ValidateConnString(location); err != nil {
			fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)
			fmt.Fprintf(os.Stderr, "       Put the password in ~/.pgpass or PGPASSWORD instead:\n")
			fmt.Fprintf(os.Stderr, "       postgresql://user@host:5432/hekate\n")
			return nil, err
		}
		store := postgres.New(location)
		if err := store.Load(); err != nil {
			return nil, err
		}
		return store, nil
	}

	store := sqlite.NewStore(location)
	if err := store.Load(); err != nil {
		return nil, err
	}
	return store, nil
}
