package main

import (
	"os"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitd/internal/cli"
	"github.com/julianstephens/habitd/internal/cli/backups"
	"github.com/julianstephens/habitd/internal/cli/system"
	"github.com/julianstephens/habitd/internal/constants"
	"github.com/julianstephens/habitd/internal/errors"
	"github.com/julianstephens/habitd/internal/logger"
	"github.com/julianstephens/habitd/internal/utils"
)

var CLI struct {
	Version  kong.VersionFlag
	DB       string `help:"SQLite file path, PostgreSQL connection string, or 'keyring'. PostgreSQL credentials must NOT be embedded in the connection string." env:"HABITD_DB" default:"~/.config/habitd/habitd.db"`
	Timezone string `help:"IANA timezone that defines day boundaries." env:"HABITD_TIMEZONE" default:"Local"`
	Debug    bool   `help:"Enable debug logging." env:"HABITD_DEBUG"`

	Serve   system.ServeCmd   `cmd:"" help:"Run the HTTP API." default:"withargs"`
	Migrate system.MigrateCmd `cmd:"" help:"Apply pending database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Backup  struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage SQLite database backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store the PostgreSQL connection string."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check keyring availability."`
	} `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracking REST API"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Configuration(kong.JSON, constants.DefaultConfigFile, "/etc/habitd/config.json"),
		kong.Vars{"version": constants.Version},
	)

	configDir, err := utils.ExpandPath(constants.DefaultConfigDir)
	if err != nil {
		errors.Fatal(err)
	}
	isServe := ctx.Command() == "serve"
	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: configDir, Console: isServe}); err != nil {
		os.Stderr.WriteString(errors.Formatf("failed to initialize logger: %v\n", err))
	}

	store, err := cli.OpenStore(CLI.DB)
	if err != nil {
		errors.Fatal(err)
	}
	defer store.Close()

	appCtx := &cli.Context{
		Store:    store,
		Timezone: CLI.Timezone,
		Debug:    CLI.Debug,
	}

	if err := ctx.Run(appCtx); err != nil {
		store.Close()
		errors.Fatal(err)
	}
}
