package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/angeloszaimis/augur-config/config"
	"github.com/angeloszaimis/augur-config/pkg/logger"
)

func main() {
	if err := run(os.Stdout, config.DefaultFile); err != nil {
		os.Exit(1)
	}
}

// run resolves the settings once and reports them. Only a broken catalog or
// a value that cannot be coerced fails; anything else is logged and the
// process carries on.
func run(w io.Writer, path string, opts ...config.Option) error {
	boot := logger.New(w, config.LogLevelInfo, false, config.EnvDev)

	if err := config.ValidateCatalog(); err != nil {
		boot.Error("invalid settings catalog", slog.Any("err", err))
		return err
	}

	resolver := config.New(path, append([]config.Option{config.WithLogger(boot)}, opts...)...)

	settings, err := resolver.Settings()
	if err != nil {
		boot.Error("failed to resolve settings", slog.Any("err", err))
		return err
	}

	log := logger.New(w, settings.Logging.Level, settings.Logging.AddSource, settings.Application.Environment)

	if err := settings.Validate(); err != nil {
		log.Warn("settings failed validation, continuing", slog.Any("err", err))
	}

	report(log, resolver, settings)

	return nil
}
