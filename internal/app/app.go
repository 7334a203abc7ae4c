package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/five82/shelf/internal/config"
	"github.com/five82/shelf/internal/library"
	"github.com/five82/shelf/internal/prefs"
	"github.com/five82/shelf/internal/session"
	"github.com/five82/shelf/internal/ui"
)

// Options configure the shelf application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/shelf/prefs.toml
	APIURL     string // overrides config and environment when set
	Debug      bool
	// LogToStderr sends logs to stderr instead of log_file. The TUI owns the
	// terminal, so only CLI subcommands set it.
	LogToStderr bool
}

// Env holds the wired dependencies shared by the TUI and the CLI commands.
type Env struct {
	Config  config.Config
	Prefs   prefs.Prefs
	Logger  *zap.Logger
	Session *session.Store
	Client  *library.Client

	prefsPath string
}

// Setup loads configuration and builds the logger, session store and API
// client. Callers must Close the returned Env.
func Setup(opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.APIURL != "" {
		cfg.APIURL = opts.APIURL
	}
	if opts.Debug {
		cfg.LogLevel = "debug"
	}

	logger, err := NewLogger(cfg, opts.LogToStderr)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	var file *session.File
	if cfg.RememberSession {
		file = &session.File{Path: cfg.SessionFile}
	}
	store := session.NewStore(file, logger.Named("session"))
	store.Restore()

	client, err := library.NewClient(cfg.APIURL, store, logger.Named("api"))
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("init api client: %w", err)
	}

	return &Env{
		Config:    cfg,
		Prefs:     userPrefs,
		Logger:    logger,
		Session:   store,
		Client:    client,
		prefsPath: opts.PrefsPath,
	}, nil
}

// Close flushes buffered log entries.
func (e *Env) Close() {
	if e == nil || e.Logger == nil {
		return
	}
	_ = e.Logger.Sync()
}

// Run boots the shelf TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	env, err := Setup(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	env.Logger.Info("starting shelf",
		zap.String("api_url", env.Client.BaseURL()),
		zap.Bool("restored_session", env.Session.IsAuthenticated()),
	)

	return ui.Run(ui.Options{
		Context:   ctx,
		API:       env.Client,
		Session:   env.Session,
		Logger:    env.Logger.Named("ui"),
		ThemeName: env.Prefs.Theme,
		LastEmail: env.Prefs.LastEmail,
		PrefsPath: env.prefsPath,
		BaseURL:   env.Client.BaseURL(),
	})
}

// SignIn authenticates against the API and records the email in prefs.
func (e *Env) SignIn(ctx context.Context, email, password string) (session.Snapshot, error) {
	snap, err := session.SignIn(ctx, e.Client, e.Session, email, password, e.Logger)
	if err != nil {
		return session.Snapshot{}, err
	}
	if err := prefs.Update(e.prefsPath, func(p *prefs.Prefs) { p.LastEmail = email }); err != nil {
		e.Logger.Warn("save last email failed", zap.Error(err))
	}
	return snap, nil
}
