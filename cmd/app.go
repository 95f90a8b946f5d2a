package cmd

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"ts-fixer/internal/config"
	"ts-fixer/internal/logger"
)

// app carries what every command needs: settings and the diagnostic logger.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	closeLog func() error
	tty      bool
}

func newApp() (*app, error) {
	cfg, err := config.Load(os.Getenv("TS_FIXER_CONFIG"))
	if err != nil {
		return nil, err
	}

	tty := term.IsTerminal(int(os.Stderr.Fd()))

	log, closeLog, err := logger.New(logger.Options{
		FilePath: cfg.Path(cfg.DiagnosticLog),
		Console:  os.Stderr,
		Level:    cfg.Level(),
		Color:    tty,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	return &app{cfg: cfg, log: log, closeLog: closeLog, tty: tty}, nil
}

func (a *app) Close() {
	_ = a.log.Sync()
	_ = a.closeLog()
}
