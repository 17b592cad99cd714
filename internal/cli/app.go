package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/roboco-io/pubrender/internal/config"
	"github.com/roboco-io/pubrender/internal/logger"
	"github.com/roboco-io/pubrender/internal/render"
	"github.com/roboco-io/pubrender/internal/render/pdf"
	"github.com/roboco-io/pubrender/internal/store"
	"github.com/roboco-io/pubrender/internal/store/filestore"
	"github.com/roboco-io/pubrender/internal/store/pgstore"
)

// app holds what a command needs after configuration is resolved.
type app struct {
	cfg   *config.Config
	log   *logger.Log
	store store.Store
	close func() error
}

func newLoader() (*config.Loader, error) {
	if configFile != "" {
		return config.NewLoaderWithPath(configFile), nil
	}
	return config.NewLoader()
}

func loadConfig() (*config.Config, error) {
	loader, err := newLoader()
	if err != nil {
		return nil, fmt.Errorf("config loader: %w", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		if err := cfg.Set("log.level", logLevel); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// newApp loads configuration and the logger. The store is opened only when
// withStore is set.
func newApp(ctx context.Context, withStore bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New().
		Level(cfg.Log.Level).
		FromPath(cfg.Log.File).
		Console(cfg.Log.File == "").
		Make()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log, close: func() error { return nil }}
	if !withStore {
		return a, nil
	}

	s, closeStore, err := openStore(ctx, cfg.Store, log.Logger)
	if err != nil {
		log.Close()
		return nil, err
	}
	a.store = s
	a.close = closeStore
	return a, nil
}

func (a *app) Close() {
	if err := a.close(); err != nil {
		a.log.Logger.Warn().Err(err).Msg("close store")
	}
	a.log.Close()
}

func openStore(ctx context.Context, cfg config.StoreConfig, log zerolog.Logger) (store.Store, func() error, error) {
	switch cfg.Backend {
	case "postgres":
		if cfg.DSN == "" {
			return nil, nil, fmt.Errorf("store.dsn is required for the postgres backend")
		}
		s, err := pgstore.Open(ctx, cfg.DSN, log)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "", "file":
		s, err := filestore.New(cfg.Dir, log)
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// profile builds the render profile from the config, with an optional
// template name taking precedence.
func profile(cfg *config.Config, template string) (render.Profile, error) {
	if template == "" {
		template = cfg.Export.Template
	}
	t, err := render.ParseTemplate(template)
	if err != nil {
		return render.Profile{}, err
	}
	p := render.Profile{Template: t}
	if c := cfg.Export.Colors; c != nil {
		p.Colors = &render.BrandColors{Primary: c.Primary, Secondary: c.Secondary, Accent: c.Accent}
	}
	return p, nil
}

// pdfOptions builds rasterizer options from the config. Non-empty page and
// orientation arguments take precedence.
func pdfOptions(cfg config.PDFConfig, page, orientation string) (pdf.Options, error) {
	if page == "" {
		page = cfg.PageFormat
	}
	if orientation == "" {
		orientation = cfg.Orientation
	}
	format, err := pdf.ParsePageFormat(page)
	if err != nil {
		return pdf.Options{}, err
	}
	orient, err := pdf.ParseOrientation(orientation)
	if err != nil {
		return pdf.Options{}, err
	}
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return pdf.Options{}, err
	}
	opts := pdf.Options{
		PageFormat:    format,
		Orientation:   orient,
		ViewportWidth: float64(cfg.ViewportWidth),
		Timeout:       timeout,
	}
	if cfg.SecondaryFont != "" {
		font, err := os.ReadFile(cfg.SecondaryFont)
		if err != nil {
			return pdf.Options{}, fmt.Errorf("pdf.secondary_font: %w", err)
		}
		opts.SecondaryFont = font
	}
	return opts, nil
}
