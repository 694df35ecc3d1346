package logger_test

import (
	"context"
	"encoding/json"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gbytes"

	"github.com/angeloszaimis/augur-config/pkg/logger"
)

var _ = Describe("Logger", func() {
	var (
		buf *gbytes.Buffer
		ctx context.Context
	)

	BeforeEach(func() {
		buf = gbytes.NewBuffer()
		ctx = context.Background()
	})

	Describe("New", func() {
		It("should default to info for an unknown level", func() {
			log := logger.New(buf, "invalid", false, "dev")

			Expect(log.Enabled(ctx, slog.LevelInfo)).To(BeTrue())
			Expect(log.Enabled(ctx, slog.LevelDebug)).To(BeFalse())
		})

		It("should respect debug level", func() {
			log := logger.New(buf, "debug", false, "dev")

			Expect(log.Enabled(ctx, slog.LevelDebug)).To(BeTrue())
		})

		It("should respect warn level", func() {
			log := logger.New(buf, "warn", false, "dev")

			Expect(log.Enabled(ctx, slog.LevelInfo)).To(BeFalse())
			Expect(log.Enabled(ctx, slog.LevelWarn)).To(BeTrue())
		})

		It("should respect error level", func() {
			log := logger.New(buf, "ERROR", false, "dev")

			Expect(log.Enabled(ctx, slog.LevelWarn)).To(BeFalse())
			Expect(log.Enabled(ctx, slog.LevelError)).To(BeTrue())
		})

		It("should write text records outside prod", func() {
			log := logger.New(buf, "info", false, "dev")
			log.Info("resolved setting", slog.String("key", "database.host"))

			Expect(buf).To(gbytes.Say(`level=INFO msg="resolved setting" environment=dev key=database.host`))
		})

		It("should write JSON records in prod", func() {
			log := logger.New(buf, "info", false, "prod")
			log.Info("resolved setting")

			var record map[string]any
			Expect(json.Unmarshal(buf.Contents(), &record)).To(Succeed())
			Expect(record).To(HaveKeyWithValue("msg", "resolved setting"))
			Expect(record).To(HaveKeyWithValue("environment", "prod"))
		})

		It("should include the source location when asked", func() {
			log := logger.New(buf, "info", true, "dev")
			log.Info("with source")

			Expect(buf).To(gbytes.Say(`source=`))
		})
	})

	Describe("ParseLevel", func() {
		DescribeTable("level names",
			func(name string, want slog.Level) {
				Expect(logger.ParseLevel(name)).To(Equal(want))
			},
			Entry("debug", "debug", slog.LevelDebug),
			Entry("info", "info", slog.LevelInfo),
			Entry("warn", "warn", slog.LevelWarn),
			Entry("warning alias", "warning", slog.LevelWarn),
			Entry("error", "error", slog.LevelError),
			Entry("padded and upper-case", " DEBUG ", slog.LevelDebug),
			Entry("unknown", "verbose", slog.LevelInfo),
		)
	})
})
