package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/julianstephens/timeledger/internal/backup"
	"github.com/julianstephens/timeledger/internal/logger"
	"github.com/julianstephens/timeledger/internal/storage/sqlite"
)

type BackupCmd struct {
	Create BackupCreateCmd `cmd:"" help:"Snapshot the SQLite event log." default:"1"`
	List   BackupListCmd   `cmd:"" help:"List available snapshots."`
}

// backupManager returns the snapshot manager for a SQLite store.
func (c *Context) backupManager() (*backup.Manager, error) {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return nil, errors.New("backups are only available for SQLite databases")
	}
	return backup.NewManager(c.Store.GetConfigPath()), nil
}

// AutoBackup snapshots a SQLite log and only logs failures.
func (c *Context) AutoBackup() {
	mgr, err := c.backupManager()
	if err != nil {
		return
	}
	if _, err := mgr.Create(c.Now()); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *Context) error {
	mgr, err := ctx.backupManager()
	if err != nil {
		return err
	}
	path, err := mgr.Create(ctx.Now())
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	ctx.Printf("✓ Backup created: %s\n", filepath.Base(path))
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *Context) error {
	mgr, err := ctx.backupManager()
	if err != nil {
		return err
	}
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		ctx.Println("No backups found.")
		ctx.Printf("Backups are stored in: %s\n", mgr.Dir())
		return nil
	}

	ctx.Printf("Available backups (%d total, keeping most recent %d):\n\n", len(backups), backup.MaxBackups)
	for _, b := range backups {
		ctx.Printf("  %s  %s  (%.1f KB)\n",
			b.Timestamp.In(ctx.Location).Format("2006-01-02 15:04:05"),
			filepath.Base(b.Path),
			float64(b.Size)/1024.0)
	}
	ctx.Printf("\nBackup directory: %s\n", mgr.Dir())
	ctx.Println("Copy a snapshot into a fresh database with 'timeledger init --source <file>'.")
	return nil
}
