// Package bootstrap wires all dependencies and starts the application.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/formworks/formworks/adapters/auth"
	"github.com/formworks/formworks/adapters/clock"
	"github.com/formworks/formworks/adapters/hasher"
	apihttp "github.com/formworks/formworks/adapters/http"
	"github.com/formworks/formworks/adapters/idgen"
	"github.com/formworks/formworks/adapters/metrics"
	"github.com/formworks/formworks/adapters/sqlite"
	"github.com/formworks/formworks/app"
	"github.com/formworks/formworks/config"
)

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	Config     *config.Holder
	DB         *sqlite.DB
	HTTPServer *http.Server
	Metrics    *metrics.Collector

	Auth        *app.AuthService
	Forms       *app.FormService
	Submissions *app.SubmissionService
}

// New creates and initializes the application from a config file path.
// An empty path falls back to FORMWORKS_* environment variables.
func New(configPath string) (*App, error) {
	cfg, err := config.LoadWithFallback(configPath)
	if err != nil {
		return nil, err
	}

	logger := setupLogger(cfg.Logging)
	logger.Info().Msg("initializing formworks")

	a := &App{Logger: logger}

	// Config hot reload is only wired when a real file backs the config.
	if configPath != "" {
		if _, statErr := os.Stat(configPath); statErr == nil {
			holder, err := config.NewHolder(configPath, logger)
			if err != nil {
				return nil, err
			}
			a.Config = holder
		}
	}

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	a.DB = db
	logger.Info().Str("path", cfg.Database.Path).Msg("database ready")

	if cfg.Metrics.Enabled {
		a.Metrics = metrics.New()
		logger.Info().Msg("prometheus metrics enabled")
	}

	formStore := sqlite.NewFormStore(db)
	fieldStore := sqlite.NewFieldStore(db)
	submissionStore := sqlite.NewSubmissionStore(db)
	adminStore := sqlite.NewAdminStore(db)

	realClock := clock.Real{}
	ids := idgen.UUID{}
	bcrypt := hasher.NewBcrypt(0)

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = auth.GenerateSecret()
		logger.Warn().Msg("no jwt_secret configured, generated an ephemeral one; tokens will not survive restarts")
	}
	tokens := auth.NewTokenService(secret, cfg.Auth.TokenExpiration)

	a.Auth = app.NewAuthService(app.AuthDeps{
		Admins: adminStore,
		Hasher: bcrypt,
		Tokens: tokens,
		Clock:  realClock,
		IDGen:  ids,
		Logger: logger,
	})
	a.Forms = app.NewFormService(app.FormDeps{
		Forms:       formStore,
		Fields:      fieldStore,
		Submissions: submissionStore,
		Clock:       realClock,
		IDGen:       ids,
		Logger:      logger,
	})
	a.Submissions = app.NewSubmissionService(app.SubmissionDeps{
		Forms:       formStore,
		Submissions: submissionStore,
		Clock:       realClock,
		IDGen:       ids,
		Logger:      logger,
	})

	if cfg.Admin.Password != "" {
		if err := a.Auth.Seed(context.Background(), cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.Email); err != nil {
			return nil, fmt.Errorf("seed admin: %w", err)
		}
	}

	handler := apihttp.New(apihttp.Deps{
		Auth:        a.Auth,
		Forms:       a.Forms,
		Submissions: a.Submissions,
		Logger:      logger,
		Metrics:     a.Metrics,
	})

	a.HTTPServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	if a.Config != nil {
		a.Config.OnChange(a.applyReload)
		a.Config.OnReloadError(a.countReloadError)
	}

	return a, nil
}

func (a *App) countReloadError(error) {
	if a.Metrics != nil {
		a.Metrics.ConfigReloadErrors.Inc()
	}
}

// applyReload applies the reloadable settings from a freshly loaded config:
// log level and the admin seed account. Server binding, database path, and
// the JWT secret need a restart; the Holder warns about those.
func (a *App) applyReload(cfg *config.Config) {
	if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	if cfg.Admin.Password != "" {
		if err := a.Auth.Seed(context.Background(), cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.Email); err != nil {
			a.Logger.Error().Err(err).Msg("admin seed on reload failed")
		}
	}

	if a.Metrics != nil {
		a.Metrics.ConfigReloads.Inc()
		a.Metrics.ConfigLastReload.SetToCurrentTime()
	}
	a.Logger.Info().Str("level", cfg.Logging.Level).Msg("reloadable settings applied")
}

// Run starts the HTTP server and blocks until interrupted.
func (a *App) Run() error {
	if a.Config != nil {
		if err := a.Config.WatchFile(); err != nil {
			a.Logger.Warn().Err(err).Msg("config file watching unavailable")
		}
		a.Config.WatchSignals()
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("addr", a.HTTPServer.Addr).
			Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.Config != nil {
		a.Config.Stop()
	}

	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return nil
}

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
