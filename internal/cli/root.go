package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitd/internal/constants"
	"github.com/julianstephens/habitd/internal/keyring"
	"github.com/julianstephens/habitd/internal/storage"
	"github.com/julianstephens/habitd/internal/storage/postgres"
	"github.com/julianstephens/habitd/internal/storage/sqlite"
	"github.com/julianstephens/habitd/internal/utils"
)

type Context struct {
	Store    storage.Provider
	Timezone string
	Debug    bool

	Out io.Writer
	In  io.Reader
}

// Location resolves the configured timezone.
func (c *Context) Location() (*time.Location, error) {
	loc, err := utils.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.out(), args...)
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Input() io.Reader {
	if c.In == nil {
		return os.Stdin
	}
	return c.In
}

var (
	okMark   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Render("✓")
	failMark = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render("✗")
	warnMark = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Render("⚠")
	skipMark = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("⊘")
	Bold     = lipgloss.NewStyle().Bold(true)
)

func (c *Context) OK(format string, args ...interface{}) {
	c.Printf("%s %s\n", okMark, fmt.Sprintf(format, args...))
}

func (c *Context) Fail(format string, args ...interface{}) {
	c.Printf("%s %s\n", failMark, fmt.Sprintf(format, args...))
}

func (c *Context) Warn(format string, args ...interface{}) {
	c.Printf("%s %s\n", warnMark, fmt.Sprintf(format, args...))
}

func (c *Context) Skip(format string, args ...interface{}) {
	c.Printf("%s %s\n", skipMark, fmt.Sprintf(format, args...))
}

// OpenStore picks the storage backend for location: the keyring marker, a
// PostgreSQL connection string, or otherwise a SQLite file path.
// The store is returned unopened.
func OpenStore(location string) (storage.Provider, error) {
	switch {
	case location == constants.KeyringLocation:
		connStr, err := keyring.ResolveConnectionString()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve connection string: %w", err)
		}
		if !postgres.IsConnString(connStr) {
			return nil, fmt.Errorf("stored connection string is not a PostgreSQL connection string")
		}
		return postgres.New(connStr), nil

	case postgres.IsConnString(location):
		if _, err := postgres.ValidateConnString(location); err != nil {
			return nil, fmt.Errorf("%w (store credentials with 'habitd keyring set' or use .pgpass)", err)
		}
		return postgres.New(location), nil

	default:
		path, err := utils.ExpandPath(location)
		if err != nil {
			return nil, err
		}
		return sqlite.NewStore(path), nil
	}
}
