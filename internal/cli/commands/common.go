package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/eventmgmt/eventctl/internal/cli/auth"
	"github.com/eventmgmt/eventctl/internal/cli/client"
	"github.com/eventmgmt/eventctl/internal/cli/config"
	"github.com/eventmgmt/eventctl/internal/cli/envselect"
	"github.com/eventmgmt/eventctl/internal/cli/session"
	"github.com/eventmgmt/eventctl/internal/cli/storage"
	appconfig "github.com/eventmgmt/eventctl/internal/config"
	"github.com/eventmgmt/eventctl/internal/logger"
)

// deps holds the injectable dependencies of a command run
type deps struct {
	envName  string
	env      *config.Environment
	storage  storage.Storage
	out      io.Writer
	settings *appconfig.Config
}

// Option overrides a dependency, mainly for tests
type Option func(*deps)

// WithEnvName selects an environment from eventctl.json by name
func WithEnvName(name string) Option {
	return func(d *deps) { d.envName = name }
}

// WithEnvironment skips config lookup and uses env directly
func WithEnvironment(env *config.Environment) Option {
	return func(d *deps) { d.env = env }
}

// WithStorage sets the session storage backend. The runtime closes it when
// the command finishes if it implements io.Closer.
func WithStorage(s storage.Storage) Option {
	return func(d *deps) { d.storage = s }
}

// WithOutput redirects command output
func WithOutput(w io.Writer) Option {
	return func(d *deps) { d.out = w }
}

// WithSettings sets runtime settings instead of reading the environment
func WithSettings(cfg *appconfig.Config) Option {
	return func(d *deps) { d.settings = cfg }
}

// runtime is everything a command needs once dependencies are resolved
type runtime struct {
	env     *config.Environment
	session *session.Session
	api     *client.Client
	store   *auth.Store
	out     io.Writer
	storage storage.Storage
}

// Close releases the session storage (the SQLite backend holds a database handle)
func (r *runtime) Close() error {
	if c, ok := r.storage.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (r *runtime) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.out, format, args...)
}

func (r *runtime) println(args ...interface{}) {
	fmt.Fprintln(r.out, args...)
}

func buildRuntime(opts ...Option) (*runtime, error) {
	d := &deps{out: os.Stdout}
	for _, opt := range opts {
		opt(d)
	}

	if d.settings == nil {
		settings, err := appconfig.Load()
		if err != nil {
			return nil, err
		}
		d.settings = settings
	}

	if d.env == nil {
		env, err := resolveEnvironment(d.settings, d.envName)
		if err != nil {
			return nil, err
		}
		d.env = env
	}

	if err := d.env.Validate(); err != nil {
		return nil, err
	}

	if d.storage == nil {
		s, err := storage.Open(d.settings.Storage, d.env.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to open session storage: %w", err)
		}
		d.storage = s
	}

	log := logger.GetLogger()

	sess, err := session.New(d.storage, log)
	if err != nil {
		if c, ok := d.storage.(io.Closer); ok {
			_ = c.Close()
		}
		return nil, err
	}

	timeout := d.settings.API.Timeout
	if timeout == 0 {
		timeout = appconfig.DefaultTimeout
	}
	api := client.New(d.env.BaseURL, sess,
		client.WithLogger(log),
		client.WithTimeout(timeout),
	)

	return &runtime{
		env:     d.env,
		session: sess,
		api:     api,
		store:   auth.NewStore(sess, api, log),
		out:     d.out,
		storage: d.storage,
	}, nil
}

// resolveEnvironment picks the API environment. EVENTCTL_API_BASE_URL wins
// over eventctl.json; without either the local API is used.
func resolveEnvironment(settings *appconfig.Config, name string) (*config.Environment, error) {
	if settings.API.BaseURL != "" && name == "" {
		return &config.Environment{Name: "override", BaseURL: settings.API.BaseURL}, nil
	}

	cfg, err := config.LoadFromCurrentDir()
	if errors.Is(err, config.ErrNotFound) {
		def := config.DefaultConfig()
		env, err := def.GetEnvironment(nameOr(name, def.Environments[0].Name))
		if err != nil {
			return nil, fmt.Errorf("%w\nRun 'eventctl init' to create a configuration file", err)
		}
		l := logger.GetLogger()
		l.Debug().
			Str("environment", env.Name).
			Str("base_url", env.BaseURL).
			Msgf("No %s found, using the default environment", config.ConfigFileName)
		return env, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w\nRun 'eventctl init' to create a configuration file", err)
	}

	return envselect.ResolveEnvironment(cfg, name)
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
