package system

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/julianstephens/habitd/internal/api"
	"github.com/julianstephens/habitd/internal/cli"
	"github.com/julianstephens/habitd/internal/logger"
)

type ServeCmd struct {
	Host            string        `help:"Interface to listen on." env:"HOST" default:""`
	Port            int           `help:"Port to listen on." env:"PORT" default:"3001"`
	Migrate         bool          `help:"Apply pending migrations before serving." default:"true" negatable:""`
	RequestTimeout  time.Duration `help:"Upper bound for a single request." default:"10s"`
	ShutdownTimeout time.Duration `help:"Time allowed for in-flight requests on shutdown." default:"10s"`
}

func (c *ServeCmd) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	loc, err := ctx.Location()
	if err != nil {
		return err
	}

	if c.Migrate {
		err = ctx.Store.Init()
	} else {
		err = ctx.Store.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer ctx.Store.Close()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(ctx.Store,
		api.WithLocation(loc),
		api.WithRequestTimeout(c.RequestTimeout),
		api.WithDebug(ctx.Debug),
	)

	logger.Info("Starting habitd", "addr", c.Addr(), "timezone", loc.String(), "store", ctx.Store.GetConfigPath())
	ctx.Printf("habitd listening on %s\n", c.Addr())
	if err := server.Run(sigCtx, c.Addr(), c.ShutdownTimeout); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	logger.Info("habitd stopped")
	return nil
}
