package config

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/cast"
)

// Kind is the target type a setting is coerced to.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ErrKindMismatch is returned when a typed accessor is called with a
// setting of another kind.
var ErrKindMismatch = errors.New("setting kind mismatch")

// Setting describes one named setting: where it lives, what type it has and
// the literal used when neither the file nor the environment sets it.
type Setting struct {
	Key     string
	Kind    Kind
	Default string
}

var (
	DBUser     = Setting{Key: "database.user", Kind: KindString, Default: "Augur_App"}
	DBPassword = Setting{Key: "database.password", Kind: KindString, Default: ""}
	DBHost     = Setting{Key: "database.host", Kind: KindString, Default: "localhost"}
	DBName     = Setting{Key: "database.name", Kind: KindString, Default: "augur"}
	DBPort     = Setting{Key: "database.port", Kind: KindString, Default: "5432"}

	StreamlitServerPort    = Setting{Key: "application.streamlit_server_port", Kind: KindInt, Default: "8501"}
	StreamlitServerAddress = Setting{Key: "application.streamlit_server_address", Kind: KindString, Default: "0.0.0.0"}
	Environment            = Setting{Key: "application.environment", Kind: KindString, Default: EnvDev}

	DefaultTenureWeight  = Setting{Key: "scoring.default_tenure_weight", Kind: KindFloat, Default: "0.3"}
	DefaultEquityWeight  = Setting{Key: "scoring.default_equity_weight", Kind: KindFloat, Default: "0.25"}
	DefaultLegalWeight   = Setting{Key: "scoring.default_legal_weight", Kind: KindFloat, Default: "0.2"}
	DefaultPermitWeight  = Setting{Key: "scoring.default_permit_weight", Kind: KindFloat, Default: "0.15"}
	DefaultListingWeight = Setting{Key: "scoring.default_listing_weight", Kind: KindFloat, Default: "0.1"}

	TimeDecayHalfLifeDays = Setting{Key: "time_decay.half_life_days", Kind: KindInt, Default: "90"}

	OptunaNTrials        = Setting{Key: "optuna.n_trials", Kind: KindInt, Default: "200"}
	OptunaTimeoutSeconds = Setting{Key: "optuna.timeout_seconds", Kind: KindInt, Default: "3600"}

	TopKDefault     = Setting{Key: "export.top_k_default", Kind: KindInt, Default: "100"}
	GHLExportFormat = Setting{Key: "export.ghl_export_format", Kind: KindString, Default: "ghl_csv"}

	LogLevel     = Setting{Key: "logging.level", Kind: KindString, Default: LogLevelInfo}
	LogAddSource = Setting{Key: "logging.add_source", Kind: KindBool, Default: "false"}
)

// Catalog lists every setting the application reads, in report order.
var Catalog = []Setting{
	DBUser,
	DBPassword,
	DBHost,
	DBName,
	DBPort,
	StreamlitServerPort,
	StreamlitServerAddress,
	Environment,
	DefaultTenureWeight,
	DefaultEquityWeight,
	DefaultLegalWeight,
	DefaultPermitWeight,
	DefaultListingWeight,
	TimeDecayHalfLifeDays,
	OptunaNTrials,
	OptunaTimeoutSeconds,
	TopKDefault,
	GHLExportFormat,
	LogLevel,
	LogAddSource,
}

// CoercionError reports a value that could not be converted to the kind of
// its setting. It is never recovered from by falling back to the default.
type CoercionError struct {
	Key    string
	Kind   Kind
	Source Source
	Value  any
	Err    error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("config %s: cannot use %v from %s as %s: %v", e.Key, e.Value, e.Source, e.Kind, e.Err)
}

func (e *CoercionError) Unwrap() error {
	return e.Err
}

// Coerce converts a raw resolved value to the setting's kind. Native values
// from the file go through cast; strings are trimmed and parsed as plain
// decimal literals.
func (s Setting) Coerce(raw any) (any, error) {
	var (
		v   any
		err error
	)

	switch s.Kind {
	case KindString:
		v, err = cast.ToStringE(raw)
	case KindInt:
		v, err = toInt(raw)
	case KindFloat:
		v, err = toFloat(raw)
	case KindBool:
		v, err = toBool(raw)
	default:
		err = fmt.Errorf("unsupported kind %s", s.Kind)
	}

	if err != nil {
		return nil, &CoercionError{Key: s.Key, Kind: s.Kind, Value: raw, Err: err}
	}
	return v, nil
}

// Validate checks that the descriptor is usable: a dotted key without empty
// segments and a default representable in its kind.
func (s Setting) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Key,
			validation.Required,
			validation.By(validateKeyPath),
		),
		validation.Field(&s.Kind,
			validation.In(KindString, KindInt, KindFloat, KindBool),
		),
		validation.Field(&s.Default,
			validation.By(func(value interface{}) error {
				if _, err := s.Coerce(value); err != nil {
					return validation.NewError("validation_invalid_default", "default must coerce to "+s.Kind.String())
				}
				return nil
			}),
		),
	)
}

// ValidateCatalog validates every descriptor in Catalog and rejects
// duplicate keys.
func ValidateCatalog() error {
	return validateSettings(Catalog)
}

func validateSettings(settings []Setting) error {
	errs := validation.Errors{}
	seen := make(map[string]bool, len(settings))

	for _, s := range settings {
		if err := s.Validate(); err != nil {
			errs[s.Key] = err
			continue
		}
		if seen[s.Key] {
			errs[s.Key] = validation.NewError("validation_duplicate_key", "key is declared more than once")
		}
		seen[s.Key] = true
	}

	return errs.Filter()
}

func validateKeyPath(value interface{}) error {
	key, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	for _, segment := range strings.Split(key, ".") {
		if segment == "" {
			return validation.NewError("validation_invalid_key", "key path cannot contain empty segments")
		}
	}

	return nil
}

var (
	truthy = []string{"1", "t", "true", "y", "yes", "on"}
	falsy  = []string{"0", "f", "false", "n", "no", "off"}
)

// toBool accepts native booleans and numbers, and the literals in truthy and
// falsy compared case-insensitively.
func toBool(raw any) (bool, error) {
	s, ok := raw.(string)
	if !ok {
		return cast.ToBoolE(raw)
	}

	switch s = strings.ToLower(strings.TrimSpace(s)); {
	case slices.Contains(truthy, s):
		return true, nil
	case slices.Contains(falsy, s):
		return false, nil
	}

	return false, fmt.Errorf("invalid boolean literal %q", raw)
}

func toInt(raw any) (int, error) {
	if s, ok := raw.(string); ok {
		return strconv.Atoi(strings.TrimSpace(s))
	}
	return cast.ToIntE(raw)
}

func toFloat(raw any) (float64, error) {
	if s, ok := raw.(string); ok {
		return strconv.ParseFloat(strings.TrimSpace(s), 64)
	}
	return cast.ToFloat64E(raw)
}
