package config

import (
	"errors"
	"fmt"
	"log/slog"
)

// DatabaseURLTemplate is filled with user, password, host, port and name.
// Components are not escaped.
const DatabaseURLTemplate = "postgresql+psycopg2://%s:%s@%s:%s/%s"

// value resolves s and coerces it to want. Coercion errors carry the source
// that supplied the bad value.
func (r *Resolver) value(s Setting, want Kind) (any, error) {
	if s.Kind != want {
		return nil, fmt.Errorf("%w: %s is %s, not %s", ErrKindMismatch, s.Key, s.Kind, want)
	}

	raw, src, ok := r.Lookup(s.Key)
	if !ok {
		raw = s.Default
	}

	v, err := s.Coerce(raw)
	if err != nil {
		var ce *CoercionError
		if errors.As(err, &ce) {
			ce.Source = src
		}
		return nil, err
	}

	r.logger.Debug("resolved setting",
		slog.String("key", s.Key),
		slog.String("source", src.String()))

	return v, nil
}

// String resolves a string setting.
func (r *Resolver) String(s Setting) (string, error) {
	v, err := r.value(s, KindString)
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Int resolves an integer setting.
func (r *Resolver) Int(s Setting) (int, error) {
	v, err := r.value(s, KindInt)
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

// Float resolves a floating-point setting.
func (r *Resolver) Float(s Setting) (float64, error) {
	v, err := r.value(s, KindFloat)
	if err != nil {
		return 0, err
	}
	return v.(float64), nil
}

// Bool resolves a boolean setting.
func (r *Resolver) Bool(s Setting) (bool, error) {
	v, err := r.value(s, KindBool)
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (r *Resolver) DBUser() (string, error)     { return r.String(DBUser) }
func (r *Resolver) DBPassword() (string, error) { return r.String(DBPassword) }
func (r *Resolver) DBHost() (string, error)     { return r.String(DBHost) }
func (r *Resolver) DBName() (string, error)     { return r.String(DBName) }
func (r *Resolver) DBPort() (string, error)     { return r.String(DBPort) }

func (r *Resolver) StreamlitServerPort() (int, error)       { return r.Int(StreamlitServerPort) }
func (r *Resolver) StreamlitServerAddress() (string, error) { return r.String(StreamlitServerAddress) }
func (r *Resolver) Environment() (string, error)            { return r.String(Environment) }

func (r *Resolver) DefaultTenureWeight() (float64, error)  { return r.Float(DefaultTenureWeight) }
func (r *Resolver) DefaultEquityWeight() (float64, error)  { return r.Float(DefaultEquityWeight) }
func (r *Resolver) DefaultLegalWeight() (float64, error)   { return r.Float(DefaultLegalWeight) }
func (r *Resolver) DefaultPermitWeight() (float64, error)  { return r.Float(DefaultPermitWeight) }
func (r *Resolver) DefaultListingWeight() (float64, error) { return r.Float(DefaultListingWeight) }

func (r *Resolver) TimeDecayHalfLifeDays() (int, error) { return r.Int(TimeDecayHalfLifeDays) }

func (r *Resolver) OptunaNTrials() (int, error)        { return r.Int(OptunaNTrials) }
func (r *Resolver) OptunaTimeoutSeconds() (int, error) { return r.Int(OptunaTimeoutSeconds) }

func (r *Resolver) TopKDefault() (int, error)        { return r.Int(TopKDefault) }
func (r *Resolver) GHLExportFormat() (string, error) { return r.String(GHLExportFormat) }

func (r *Resolver) LogLevel() (string, error)   { return r.String(LogLevel) }
func (r *Resolver) LogAddSource() (bool, error) { return r.Bool(LogAddSource) }

// DatabaseURL builds the SQLAlchemy-style connection string from the five
// database settings.
func (r *Resolver) DatabaseURL() (string, error) {
	parts := make([]any, 0, 5)
	for _, s := range []Setting{DBUser, DBPassword, DBHost, DBPort, DBName} {
		v, err := r.String(s)
		if err != nil {
			return "", err
		}
		parts = append(parts, v)
	}

	return fmt.Sprintf(DatabaseURLTemplate, parts...), nil
}
