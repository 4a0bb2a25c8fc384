package ui

import (
	"io"

	"github.com/bamsammich/noteworm/internal/stats"
)

// Presenter consumes events and displays progress.
type Presenter interface {
	// Run consumes events until the channel closes. Blocks until done.
	Run(events <-chan Event) error
	// Summary returns the final summary line.
	Summary() string
}

// Config configures a Presenter.
type Config struct {
	Writer    io.Writer
	ErrWriter io.Writer
	Stats     stats.Reader
	Theme     Theme
	IsTTY     bool
	Quiet     bool
	Verbose   bool
	NoColor   bool
	DryRun    bool
}

// NewPresenter creates the appropriate presenter based on configuration.
//
//nolint:ireturn // factory function returns interface by design
func NewPresenter(cfg Config) Presenter {
	if cfg.Quiet {
		return &quietPresenter{}
	}
	theme := cfg.Theme
	if theme.Copy == nil {
		theme = DefaultTheme()
	}
	return &plainPresenter{
		w:        cfg.Writer,
		errW:     cfg.ErrWriter,
		stats:    cfg.Stats,
		theme:    theme,
		color:    cfg.IsTTY && !cfg.NoColor,
		progress: !cfg.IsTTY,
		verbose:  cfg.Verbose,
		dryRun:   cfg.DryRun,
	}
}
