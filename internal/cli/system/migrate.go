package system

import (
	"fmt"

	"github.com/julianstephens/habitd/internal/cli"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Init(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	defer ctx.Store.Close()

	current, latest, err := ctx.Store.SchemaStatus()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	ctx.OK("Database at schema version %d (latest %d)", current, latest)
	return nil
}
