package cli

import (
	"fmt"
	"time"

	"github.com/julianstephens/timeledger/internal/config"
	"github.com/julianstephens/timeledger/internal/storage/postgres"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Database     *string        `help:"Database path, connection string, firestore://project or 'keyring'."`
	Timezone     *string        `help:"IANA timezone used for days and report times."`
	ReportDir    *string        `help:"Directory reports are written to."`
	StoreTimeout *time.Duration `help:"Timeout for a single store call."`
	Debug        *bool          `help:"Enable debug logging."`
}

func (c *SettingsCmd) Run(ctx *Context) error {
	settings, err := config.Load(ctx.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}

	if c.List {
		ctx.Printf("Settings (%s):\n", ctx.ConfigPath)
		ctx.Printf("  Database:       %s\n", maskPassword(settings.Database))
		ctx.Printf("  Timezone:       %s\n", settings.Timezone)
		ctx.Printf("  Report Dir:     %s\n", settings.ReportDir)
		ctx.Printf("  Store Timeout:  %s\n", settings.StoreTimeout)
		ctx.Printf("  Debug:          %v\n", settings.Debug)
		return nil
	}

	updated := false
	if c.Database != nil {
		if postgres.IsConnString(*c.Database) {
			if err := postgres.ValidateConnString(*c.Database); err != nil {
				return err
			}
		}
		settings.Database = *c.Database
		updated = true
	}
	if c.Timezone != nil {
		settings.Timezone = *c.Timezone
		updated = true
	}
	if c.ReportDir != nil {
		settings.ReportDir = *c.ReportDir
		updated = true
	}
	if c.StoreTimeout != nil {
		settings.StoreTimeout = *c.StoreTimeout
		updated = true
	}
	if c.Debug != nil {
		settings.Debug = *c.Debug
		updated = true
	}

	if !updated {
		ctx.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := config.Save(ctx.ConfigPath, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	ctx.Println("Settings updated successfully.")
	return nil
}
