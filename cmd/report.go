package main

import (
	"log/slog"

	"github.com/angeloszaimis/augur-config/config"
)

const redacted = "***"

// report logs every catalog entry with the source it was resolved from,
// followed by the database URL. The password never reaches the log.
func report(log *slog.Logger, resolver *config.Resolver, settings *config.Settings) {
	for _, s := range config.Catalog {
		value, src, ok := resolver.Lookup(s.Key)
		if !ok {
			value = s.Default
		}

		log.Info("resolved setting",
			slog.String("key", s.Key),
			slog.String("source", src.String()),
			slog.Any("value", redact(s, value)))
	}

	db := settings.Database
	if db.Password != "" {
		db.Password = redacted
	}
	log.Info("database", slog.String("url", db.URL()))
}

func redact(s config.Setting, value any) any {
	if s == config.DBPassword && value != "" {
		return redacted
	}
	return value
}
