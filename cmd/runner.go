package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/postx/internal/repositories"
	"github.com/desertthunder/postx/internal/services"
	"github.com/desertthunder/postx/internal/shared"
	"github.com/desertthunder/postx/internal/store"
	"github.com/desertthunder/postx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database, store and wizard are opened lazily by the first command that needs them.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	openURL    func(string) error

	db       *sql.DB
	ownsDB   bool
	backend  services.Backend
	api      *services.APIService
	wizard   *tasks.Wizard
	project  *repositories.ProjectRepository
	prefs    *repositories.PreferencesRepository
	archive  *repositories.SocialPostRepository
	archiver tasks.PostArchiver
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	// DB is used instead of opening database.path. The caller closes it.
	DB *sql.DB
	// Backend is used instead of building one from the config.
	Backend services.Backend
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		openURL:    shared.OpenBrowser,
		db:         opts.DB,
		backend:    opts.Backend,
	}
}

// SetLogger replaces the logger used by commands and anything opened after the call.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		initCommand, setupCommand, tuiCommand, projectCommand, articleCommand, bulletsCommand, slidesCommand,
		logoCommand, frameCommand, socialCommand, musicCommand, videoCommand, exportCommand, apiCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the .env file and config, then applies environment and flag overrides.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if err := shared.LoadEnv(); err != nil {
		return ctx, err
	}

	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}
	if r.configPath != "" {
		if _, err := os.Stat(r.configPath); err == nil {
			config, err := shared.LoadConfig(r.configPath)
			if err != nil {
				return ctx, err
			}
			r.config = config
		} else {
			r.logger.Debug("config file not found, using defaults", "path", r.configPath)
		}
	}

	if err := shared.ApplyEnv(r.config); err != nil {
		return ctx, err
	}
	if cmd.Bool("mock") {
		r.config.Backend.Mock = true
	}
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	return ctx, r.config.Validate()
}

// Close releases the database if the runner opened it.
func (r *Runner) Close() error {
	if r.db != nil && r.ownsDB {
		r.ownsDB = false
		return r.db.Close()
	}
	return nil
}

// database returns the open database, migrating it on first use.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, err
	}
	r.db, r.ownsDB = db, true
	return db, nil
}

// apiService builds the HTTP client for the configured backend, with the bearer token if set.
func (r *Runner) apiService(ctx context.Context) *services.APIService {
	if r.api != nil {
		return r.api
	}
	client := r.httpClient
	if r.config.Backend.Token != "" {
		client = services.NewAuthorizedClient(ctx, r.config.Backend.Token)
	}
	r.api = services.NewAPIService(r.config.Backend.URL, client).
		WithTimeouts(r.config.Backend.Timeout.Duration, r.config.Backend.ImageTimeout.Duration)
	return r.api
}

func (r *Runner) newBackend(ctx context.Context) services.Backend {
	if r.backend != nil {
		return r.backend
	}
	if r.config.UseMock() {
		r.logger.Debug("using mock backend", "delay", r.config.Backend.MockDelay.Duration)
		r.backend = services.NewMockBackend(services.WithDelay(r.config.Backend.MockDelay.Duration))
	} else {
		r.backend = services.NewHTTPBackend(r.apiService(ctx))
	}
	return r.backend
}

// open loads the persisted project and builds the wizard over it.
func (r *Runner) open(ctx context.Context) (*tasks.Wizard, error) {
	if r.wizard != nil {
		return r.wizard, nil
	}
	db, err := r.database()
	if err != nil {
		return nil, err
	}

	r.project = repositories.NewProjectRepository(db, store.StorageKey)
	r.prefs = repositories.NewPreferencesRepository(db)
	r.archive = repositories.NewSocialPostRepository(db)
	r.archiver = repositories.NewSocialPostArchiver(r.archive)

	rev, err := r.project.Revision()
	if err != nil {
		return nil, err
	}

	st := store.New(
		store.WithPersister(r.project),
		store.WithLogger(shared.WithLogger(r.logger, "component", "store")),
	)
	if rev == 0 {
		st.SetSettings(tasks.SettingsFromConfig(r.config))
	}

	opts := tasks.OptsFromConfig(r.config)
	opts.Archiver = r.archiver
	r.wizard = tasks.NewWizard(st, r.newBackend(ctx), shared.WithLogger(r.logger, "component", "wizard"), opts)
	return r.wizard, nil
}

// track prints progress updates until the returned stop func is called.
//
// With --json the updates go to the debug log so stdout stays parseable.
func (r *Runner) track(cmd *cli.Command) (chan tasks.ProgressUpdate, func()) {
	quiet := cmd.Bool("json")
	ch := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range ch {
			switch {
			case update.Message == "":
			case quiet:
				r.logger.Debug(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
			case update.Total > 0:
				r.writePlain("  [%d/%d] %s\n", update.Step, update.Total, update.Message)
			default:
				r.writePlain("  %s\n", update.Message)
			}
		}
	}()
	return ch, func() {
		close(ch)
		<-done
	}
}

// emit writes data as JSON when --json is set, otherwise calls plain.
func (r *Runner) emit(cmd *cli.Command, data any, plain func()) error {
	if cmd.Bool("json") {
		return r.writeJSON(data, true)
	}
	plain()
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
