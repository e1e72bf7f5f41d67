package cli

import "fmt"

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *Context) error {
	sctx, cancel := ctx.StoreContext()
	defer cancel()

	count, err := ctx.Store.Migrate(sctx, func(msg string) {
		ctx.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		ctx.Println("No migrations to apply. Database is up to date.")
	} else {
		ctx.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
