package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/julianstephens/timeledger/internal/cli"
	"github.com/julianstephens/timeledger/internal/config"
	"github.com/julianstephens/timeledger/internal/constants"
	apperrors "github.com/julianstephens/timeledger/internal/errors"
	"github.com/julianstephens/timeledger/internal/logger"
	"github.com/julianstephens/timeledger/internal/storage"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Config file path. Defaults to $TIMELEDGER_CONFIG or ~/.config/timeledger/config.yaml." type:"path"`
	Database string `help:"SQLite path, PostgreSQL connection string, firestore://project or 'keyring'. Overrides $TIMELEDGER_DB_CONNECTION and the config file. PostgreSQL credentials must NOT be embedded; use .pgpass, PGPASSWORD or the OS keyring."`
	Timezone string `help:"IANA timezone used for days and report times."`
	Debug    bool   `help:"Enable debug logging."`

	Start  cli.StartCmd  `cmd:"" help:"Start the workday."`
	Pause  cli.PauseCmd  `cmd:"" help:"Take a break."`
	Resume cli.ResumeCmd `cmd:"" help:"Return from a break."`
	End    cli.EndCmd    `cmd:"" help:"End the workday."`
	Status cli.StatusCmd `cmd:"" help:"Show the day's state and time figures."`
	Report cli.ReportCmd `cmd:"" help:"Write the daily report."`
	Verify cli.VerifyCmd `cmd:"" help:"Check a report against its recorded SHA-256."`
	Stats  cli.StatsCmd  `cmd:"" help:"Total work over a range of days."`
	Tui    cli.TuiCmd    `cmd:"" help:"Launch the interactive dashboard." default:"1"`

	Init     cli.InitCmd     `cmd:"" help:"Initialize timeledger storage."`
	Migrate  cli.MigrateCmd  `cmd:"" help:"Run database migrations."`
	Doctor   cli.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Backup   cli.BackupCmd   `cmd:"" help:"Manage SQLite snapshots."`
	Keyring  cli.KeyringCmd  `cmd:"" help:"Manage the database connection string in the OS keyring."`
	Settings cli.SettingsCmd `cmd:"" help:"Manage application settings."`
	DebugCmd cli.DebugCmd    `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Workday event ledger: start, pause, resume and end your day"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to read .env: %v\n", err)
	}

	configPath, err := config.Path(CLI.Config)
	if err != nil {
		apperrors.Fatal(err)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		apperrors.Fatal(err)
	}
	if CLI.Timezone != "" {
		cfg.Timezone = CLI.Timezone
	}
	if CLI.Debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		apperrors.Fatal(err)
	}

	configDir := filepath.Dir(configPath)
	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: configDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	command := ""
	if fields := strings.Fields(ctx.Command()); len(fields) > 0 {
		command = fields[0]
	}

	// keyring and settings must work before a usable database exists.
	var store storage.Provider
	if command != "keyring" && command != "settings" {
		store, err = cli.OpenStore(cli.ResolveDatabase(CLI.Database, cfg))
		if err != nil {
			apperrors.Fatal(err)
		}
		defer store.Close()
	}

	appCtx, err := cli.NewContext(store, cfg, nil)
	if err != nil {
		apperrors.Fatal(err)
	}
	appCtx.ConfigPath = configPath
	appCtx.ConfigDir = configDir

	// Load the store before running the command (init and doctor handle their own loading)
	if store != nil && command != "init" && command != "doctor" {
		if err := store.Load(); err != nil {
			apperrors.Fatal(err)
		}
	}

	if err := ctx.Run(appCtx); err != nil {
		if store != nil {
			store.Close()
		}
		apperrors.Fatal(err)
	}
}
