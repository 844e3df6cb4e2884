package system

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/habitd/internal/backup"
	"github.com/julianstephens/habitd/internal/cli"
	"github.com/julianstephens/habitd/internal/storage/sqlite"
)

type DoctorCmd struct {
	Timeout time.Duration `help:"Timeout for database checks." default:"5s"`
}

type check struct {
	name    string
	needsDB bool
	warning bool
	run     func(context.Context, *cli.Context) error
}

var checks = []check{
	{name: "Database reachable", run: checkDBReachable},
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Orphaned rows", needsDB: true, run: checkOrphans},
	{name: "Timezone", run: checkTimezone},
	{name: "Backups present", warning: true, run: checkBackupsPresent},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println(cli.Bold.Render("Running diagnostics..."))
	ctx.Println()
	defer ctx.Store.Close()

	timeout := cmd.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	runCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	failed := false
	dbReachable := true
	for _, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Skip("%s: SKIPPED (database not reachable)", c.name)
			continue
		}

		err := c.run(runCtx, ctx)
		switch {
		case err == nil:
			ctx.OK("%s: OK", c.name)
		case c.warning:
			ctx.Warn("%s: WARNING", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Fail("%s: FAIL", c.name)
			ctx.Printf("   Error: %v\n", err)
			failed = true
			if c.name == "Database reachable" {
				dbReachable = false
			}
		}
	}

	ctx.Println()
	if failed {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

// checkDBReachable only cares about the connection. Load also rejects
// unsupported schema versions, which the schema check reports on its own.
func checkDBReachable(runCtx context.Context, ctx *cli.Context) error {
	loadErr := ctx.Store.Load()
	if err := ctx.Store.Ping(runCtx); err != nil {
		if loadErr != nil {
			return fmt.Errorf("failed to load database: %w", loadErr)
		}
		return err
	}
	return nil
}

func checkSchemaVersion(_ context.Context, ctx *cli.Context) error {
	current, latest, err := ctx.Store.SchemaStatus()
	if err != nil {
		return err
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'habitd migrate')", current, latest)
	}
	return nil
}

func checkOrphans(runCtx context.Context, ctx *cli.Context) error {
	n, err := ctx.Store.CountOrphans(runCtx)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%d week day or completion rows reference missing habits or days", n)
	}
	return nil
}

func checkTimezone(_ context.Context, ctx *cli.Context) error {
	loc, err := ctx.Location()
	if err != nil {
		return err
	}
	now := time.Now().In(loc)
	if now.Year() < 2000 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	return nil
}

func checkBackupsPresent(_ context.Context, ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return fmt.Errorf("backups are managed by the database server for this store")
	}
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found in %s (run 'habitd backup create')", mgr.Dir())
	}
	return nil
}
