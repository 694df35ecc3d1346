package config

import (
	"fmt"
	"math"
	"net"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

const weightTolerance = 1e-6

type DatabaseSettings struct {
	User     string `json:"user"`
	Password string `json:"password"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	Name     string `json:"name"`
}

type ApplicationSettings struct {
	StreamlitServerPort    int    `json:"streamlit_server_port"`
	StreamlitServerAddress string `json:"streamlit_server_address"`
	Environment            string `json:"environment"`
}

type ScoringSettings struct {
	TenureWeight  float64 `json:"default_tenure_weight"`
	EquityWeight  float64 `json:"default_equity_weight"`
	LegalWeight   float64 `json:"default_legal_weight"`
	PermitWeight  float64 `json:"default_permit_weight"`
	ListingWeight float64 `json:"default_listing_weight"`
}

type TimeDecaySettings struct {
	HalfLifeDays int `json:"half_life_days"`
}

type OptunaSettings struct {
	NTrials        int `json:"n_trials"`
	TimeoutSeconds int `json:"timeout_seconds"`
}

type ExportSettings struct {
	TopKDefault     int    `json:"top_k_default"`
	GHLExportFormat string `json:"ghl_export_format"`
}

type LoggingSettings struct {
	Level     string `json:"level"`
	AddSource bool   `json:"add_source"`
}

// Settings is a fully resolved and coerced snapshot of Catalog. It is built
// once by Resolver.Settings and passed by pointer to the components that
// need configuration.
type Settings struct {
	Database    DatabaseSettings    `json:"database"`
	Application ApplicationSettings `json:"application"`
	Scoring     ScoringSettings     `json:"scoring"`
	TimeDecay   TimeDecaySettings   `json:"time_decay"`
	Optuna      OptunaSettings      `json:"optuna"`
	Export      ExportSettings      `json:"export"`
	Logging     LoggingSettings     `json:"logging"`
}

// Settings resolves every catalog entry. The first coercion error aborts
// the snapshot and is returned as is.
func (r *Resolver) Settings() (*Settings, error) {
	var (
		s   Settings
		err error
	)

	str := func(dst *string, setting Setting) {
		if err == nil {
			*dst, err = r.String(setting)
		}
	}
	integer := func(dst *int, setting Setting) {
		if err == nil {
			*dst, err = r.Int(setting)
		}
	}
	float := func(dst *float64, setting Setting) {
		if err == nil {
			*dst, err = r.Float(setting)
		}
	}
	boolean := func(dst *bool, setting Setting) {
		if err == nil {
			*dst, err = r.Bool(setting)
		}
	}

	str(&s.Database.User, DBUser)
	str(&s.Database.Password, DBPassword)
	str(&s.Database.Host, DBHost)
	str(&s.Database.Port, DBPort)
	str(&s.Database.Name, DBName)

	integer(&s.Application.StreamlitServerPort, StreamlitServerPort)
	str(&s.Application.StreamlitServerAddress, StreamlitServerAddress)
	str(&s.Application.Environment, Environment)

	float(&s.Scoring.TenureWeight, DefaultTenureWeight)
	float(&s.Scoring.EquityWeight, DefaultEquityWeight)
	float(&s.Scoring.LegalWeight, DefaultLegalWeight)
	float(&s.Scoring.PermitWeight, DefaultPermitWeight)
	float(&s.Scoring.ListingWeight, DefaultListingWeight)

	integer(&s.TimeDecay.HalfLifeDays, TimeDecayHalfLifeDays)

	integer(&s.Optuna.NTrials, OptunaNTrials)
	integer(&s.Optuna.TimeoutSeconds, OptunaTimeoutSeconds)

	integer(&s.Export.TopKDefault, TopKDefault)
	str(&s.Export.GHLExportFormat, GHLExportFormat)

	str(&s.Logging.Level, LogLevel)
	boolean(&s.Logging.AddSource, LogAddSource)

	if err != nil {
		return nil, err
	}
	return &s, nil
}

// DatabaseURL formats the connection string without escaping.
func (s *Settings) DatabaseURL() string {
	return s.Database.URL()
}

func (d DatabaseSettings) URL() string {
	return fmt.Sprintf(DatabaseURLTemplate, d.User, d.Password, d.Host, d.Port, d.Name)
}

// Weights returns the default scoring weights keyed by factor name.
func (sc ScoringSettings) Weights() map[string]float64 {
	return map[string]float64{
		"tenure":  sc.TenureWeight,
		"equity":  sc.EquityWeight,
		"legal":   sc.LegalWeight,
		"permit":  sc.PermitWeight,
		"listing": sc.ListingWeight,
	}
}

func (sc ScoringSettings) Sum() float64 {
	return sc.TenureWeight + sc.EquityWeight + sc.LegalWeight + sc.PermitWeight + sc.ListingWeight
}

// Validate reports settings that resolve and coerce but are unusable. It
// does not change any value.
func (s *Settings) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Database),
		validation.Field(&s.Application),
		validation.Field(&s.Scoring),
		validation.Field(&s.TimeDecay),
		validation.Field(&s.Optuna),
		validation.Field(&s.Export),
		validation.Field(&s.Logging),
	)
}

func (d DatabaseSettings) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.User, validation.Required),
		validation.Field(&d.Host, validation.Required, is.Host),
		validation.Field(&d.Port, validation.Required, is.Port),
		validation.Field(&d.Name, validation.Required),
	)
}

func (a ApplicationSettings) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.StreamlitServerPort,
			validation.Required,
			validation.Min(1),
			validation.Max(65535),
		),
		validation.Field(&a.StreamlitServerAddress,
			validation.Required,
			validation.By(validateHostPort),
		),
		validation.Field(&a.Environment,
			validation.Required,
			validation.In(EnvDev, EnvStaging, EnvProd),
		),
	)
}

func (sc ScoringSettings) Validate() error {
	weight := []validation.Rule{validation.Min(0.0), validation.Max(1.0)}

	err := validation.ValidateStruct(&sc,
		validation.Field(&sc.TenureWeight, weight...),
		validation.Field(&sc.EquityWeight, weight...),
		validation.Field(&sc.LegalWeight, weight...),
		validation.Field(&sc.PermitWeight, weight...),
		validation.Field(&sc.ListingWeight, weight...),
	)
	if err != nil {
		return err
	}

	if sum := sc.Sum(); math.Abs(sum-1) > weightTolerance {
		return validation.NewError("validation_weights_sum", fmt.Sprintf("weights must sum to 1, got %.4f", sum))
	}

	return nil
}

func (t TimeDecaySettings) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.HalfLifeDays, validation.Required, validation.Min(1)),
	)
}

func (o OptunaSettings) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.NTrials, validation.Required, validation.Min(1)),
		validation.Field(&o.TimeoutSeconds, validation.Required, validation.Min(1)),
	)
}

func (e ExportSettings) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.TopKDefault, validation.Required, validation.Min(1)),
		validation.Field(&e.GHLExportFormat, validation.Required),
	)
}

func (l LoggingSettings) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level,
			validation.Required,
			validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
		),
	)
}

// validateHostPort accepts a bare host as well as host:port, since the
// listen address and port are configured separately.
func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host := addr
	if h, port, err := net.SplitHostPort(addr); err == nil {
		if port == "" {
			return validation.NewError("validation_invalid_port", "port cannot be empty")
		}
		host = h
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}
