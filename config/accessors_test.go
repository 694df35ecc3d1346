package config_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gbytes"

	"github.com/angeloszaimis/augur-config/config"
)

var _ = Describe("Typed accessors", func() {
	Context("with no file and no environment", func() {
		var r *config.Resolver

		BeforeEach(func() {
			r = config.New("", config.WithEnvLookup(envFrom(nil)))
		})

		It("returns the default catalog", func() {
			Expect(r.DBUser()).To(Equal("Augur_App"))
			Expect(r.DBPassword()).To(Equal(""))
			Expect(r.DBHost()).To(Equal("localhost"))
			Expect(r.DBName()).To(Equal("augur"))
			Expect(r.DBPort()).To(Equal("5432"))
			Expect(r.StreamlitServerPort()).To(Equal(8501))
			Expect(r.StreamlitServerAddress()).To(Equal("0.0.0.0"))
			Expect(r.DefaultTenureWeight()).To(Equal(0.3))
			Expect(r.DefaultEquityWeight()).To(Equal(0.25))
			Expect(r.DefaultLegalWeight()).To(Equal(0.2))
			Expect(r.DefaultPermitWeight()).To(Equal(0.15))
			Expect(r.DefaultListingWeight()).To(Equal(0.1))
			Expect(r.TimeDecayHalfLifeDays()).To(Equal(90))
			Expect(r.OptunaNTrials()).To(Equal(200))
			Expect(r.OptunaTimeoutSeconds()).To(Equal(3600))
			Expect(r.TopKDefault()).To(Equal(100))
			Expect(r.GHLExportFormat()).To(Equal("ghl_csv"))
			Expect(r.LogLevel()).To(Equal("info"))
			Expect(r.LogAddSource()).To(BeFalse())
			Expect(r.Environment()).To(Equal("dev"))
		})

		It("builds the default database URL", func() {
			Expect(r.DatabaseURL()).To(Equal("postgresql+psycopg2://Augur_App:@localhost:5432/augur"))
		})
	})

	Context("with environment overrides", func() {
		It("coerces numeric strings", func() {
			r := config.NewFromMap(nil, config.WithEnvLookup(envFrom(map[string]string{
				"APPLICATION_STREAMLIT_SERVER_PORT": " 9000 ",
				"SCORING_DEFAULT_LEGAL_WEIGHT":      "0.05",
				"LOGGING_ADD_SOURCE":                "yes",
			})))

			Expect(r.StreamlitServerPort()).To(Equal(9000))
			Expect(r.DefaultLegalWeight()).To(Equal(0.05))
			Expect(r.LogAddSource()).To(BeTrue())
		})

		It("fails on a non-numeric trial budget instead of defaulting", func() {
			r := config.NewFromMap(nil, config.WithEnvLookup(envFrom(map[string]string{
				"OPTUNA_N_TRIALS": "not_a_number",
			})))

			trials, err := r.OptunaNTrials()
			Expect(err).To(HaveOccurred())
			Expect(trials).To(BeZero())

			var ce *config.CoercionError
			Expect(errors.As(err, &ce)).To(BeTrue())
			Expect(ce.Key).To(Equal("optuna.n_trials"))
			Expect(ce.Kind).To(Equal(config.KindInt))
			Expect(ce.Source).To(Equal(config.SourceEnv))
			Expect(ce.Value).To(Equal("not_a_number"))
			Expect(err).To(MatchError(ContainSubstring("optuna.n_trials")))
		})

		It("fails on an empty numeric override", func() {
			r := config.NewFromMap(nil, config.WithEnvLookup(envFrom(map[string]string{
				"EXPORT_TOP_K_DEFAULT": "",
			})))

			_, err := r.TopKDefault()
			Expect(err).To(HaveOccurred())
		})

		It("fails on an unknown boolean literal", func() {
			r := config.NewFromMap(nil, config.WithEnvLookup(envFrom(map[string]string{
				"LOGGING_ADD_SOURCE": "maybe",
			})))

			_, err := r.LogAddSource()
			Expect(err).To(HaveOccurred())
		})
	})

	Context("with file values of native types", func() {
		var r *config.Resolver

		BeforeEach(func() {
			r = config.NewFromMap(map[string]any{
				"database": map[string]any{
					"port": int64(5433),
					"user": map[string]any{"nested": "x"},
				},
				"application": map[string]any{"streamlit_server_port": float64(8502)},
				"time_decay":  map[string]any{"half_life_days": int64(30)},
				"scoring":     map[string]any{"default_permit_weight": int64(0)},
				"logging":     map[string]any{"add_source": true},
			}, config.WithEnvLookup(envFrom(nil)))
		})

		It("renders scalars as strings for string settings", func() {
			Expect(r.DBPort()).To(Equal("5433"))
		})

		It("converts numbers between kinds", func() {
			Expect(r.StreamlitServerPort()).To(Equal(8502))
			Expect(r.TimeDecayHalfLifeDays()).To(Equal(30))
			Expect(r.DefaultPermitWeight()).To(Equal(0.0))
			Expect(r.LogAddSource()).To(BeTrue())
		})

		It("reports a section used as a string as a file coercion error", func() {
			_, err := r.DBUser()

			var ce *config.CoercionError
			Expect(errors.As(err, &ce)).To(BeTrue())
			Expect(ce.Source).To(Equal(config.SourceFile))
		})
	})

	Describe("generic accessors", func() {
		It("rejects a setting of another kind", func() {
			r := config.NewFromMap(nil, config.WithEnvLookup(envFrom(nil)))

			_, err := r.Int(config.DBHost)
			Expect(err).To(MatchError(config.ErrKindMismatch))

			_, err = r.String(config.OptunaNTrials)
			Expect(err).To(MatchError(config.ErrKindMismatch))
		})

		It("resolves ad hoc settings", func() {
			r := config.NewFromMap(nil, config.WithEnvLookup(envFrom(map[string]string{
				"FEATURE_ENABLED": "off",
			})))

			enabled, err := r.Bool(config.Setting{Key: "feature.enabled", Kind: config.KindBool, Default: "true"})
			Expect(err).NotTo(HaveOccurred())
			Expect(enabled).To(BeFalse())
		})

		It("traces the winning source at debug level", func() {
			log, buf := bufferLogger()
			r := config.NewFromMap(nil,
				config.WithLogger(log),
				config.WithEnvLookup(envFrom(map[string]string{"OPTUNA_N_TRIALS": "10"})))

			_, err := r.OptunaNTrials()
			Expect(err).NotTo(HaveOccurred())
			Expect(buf).To(gbytes.Say(`msg="resolved setting" key=optuna.n_trials source=env`))
		})
	})
})
