package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/julianstephens/hekate/internal/api"
	"github.com/julianstephens/hekate/internal/auth"
	"github.com/julianstephens/hekate/internal/cache"
	"github.com/julianstephens/hekate/internal/config"
	"github.com/julianstephens/hekate/internal/dreams"
	"github.com/julianstephens/hekate/internal/keyring"
	"github.com/julianstephens/hekate/internal/logger"
	"github.com/julianstephens/hekate/internal/models"
	"github.com/julianstephens/hekate/internal/notify"
	"github.com/julianstephens/hekate/internal/optimistic"
	"github.com/julianstephens/hekate/internal/reads"
	"github.com/julianstephens/hekate/internal/routine"
	"github.com/julianstephens/hekate/internal/storage"
)

// Context is what every command runs against.
type Context struct {
	Ctx      context.Context
	Config   config.Config
	Store    storage.Provider
	Cache    *cache.Store
	API      *api.Client
	Tokens   auth.TokenStore
	Notifier notify.Notifier
	Runner   *optimistic.Runner

	Auth    *auth.Service
	Dreams  *dreams.Service
	Routine *routine.Service
	Reads   *reads.Service

	Out io.Writer
}

// Deps are the pieces NewContext cannot build itself. Zero values pick the
// defaults used by the real binary.
type Deps struct {
	Store    storage.Provider
	Tokens   auth.TokenStore
	Notifier notify.Notifier
	Out      io.Writer
}

// NewContext wires the services. The store must already be loaded; a nil
// store keeps the cache in memory only.
func NewContext(cfg config.Config, deps Deps) (*Context, error) {
	if deps.Tokens == nil {
		deps.Tokens = keyring.NewTokens()
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Multi{notify.NewToast(os.Stderr), notify.NewTray()}
	}
	if deps.Out == nil {
		deps.Out = os.Stdout
	}

	client, err := api.New(cfg.APIURL,
		api.WithTokenSource(deps.Tokens),
		api.WithTimeout(cfg.RequestTimeout),
	)
	if err != nil {
		return nil, err
	}

	opts := cache.Options{TTL: cfg.CacheTTL}
	if deps.Store != nil {
		opts.Persister = deps.Store
	}
	store, err := cache.New(opts)
	if err != nil {
		return nil, err
	}
	if err := store.Hydrate(); err != nil {
		logger.Warn("Failed to restore cached queries", "error", err)
	}

	c := &Context{
		Ctx:    context.Background(),
		Config: cfg,
		Store:  deps.Store,
		Cache:  store,
		API:    client,
		Tokens: deps.Tokens,
		Out:    deps.Out,
	}
	return c.WithNotifier(deps.Notifier), nil
}

// WithNotifier returns a copy of c whose services report to n. The cache is
// shared with c.
func (c *Context) WithNotifier(n notify.Notifier, opts ...optimistic.Option) *Context {
	out := *c
	out.Notifier = n
	out.Runner = optimistic.NewRunner(c.Cache, n, opts...)
	out.Auth = auth.New(c.API, out.Runner, c.Tokens)
	out.Dreams = dreams.New(c.API, out.Runner)
	out.Routine = routine.New(c.API, out.Runner, n)
	out.Reads = reads.New(c.API, c.Cache)
	return &out
}

func (c *Context) printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) println(args ...any) {
	fmt.Fprintln(c.Out, args...)
}

// ParseWeekDays parses a comma-separated weekday list such as "mon,wed".
func ParseWeekDays(s string) ([]models.WeekDay, error) {
	return models.ParseWeekDays(s)
}

func formatBlock(b models.RoutineBlock) string {
	line := fmt.Sprintf("%2d. %-30s [%s]", b.Order, b.Title, b.Status.Label())
	if b.Color != "" {
		line += " " + b.Color
	}
	return line
}

func formatDream(d models.Dream) string {
	mark := " "
	if d.Visualized() {
		mark = "✓"
	}
	title := d.Title
	if d.IsArchived {
		title += " (archivado)"
	}
	return fmt.Sprintf("[%s] %s  %s", mark, d.ID, title)
}

func indent(text, prefix string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
