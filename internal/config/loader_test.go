package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/climarisk/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		clearConfigEnvVars()
		convey.Reset(clearConfigEnvVars)

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load()

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("CLIMARISK_ADDR", ":8080")
			_ = os.Setenv("CLIMARISK_QUEUE_SIZE", "500")
			_ = os.Setenv("CLIMARISK_WORKER_COUNT", "16")
			_ = os.Setenv("CLIMARISK_NATS_URL", "nats://localhost:4222")
			_ = os.Setenv("CLIMARISK_MAX_REPORTS", "2500")

			cfg, err := config.Load()

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 500)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 16)
				convey.So(cfg.MaxReports, convey.ShouldEqual, 2500)
				convey.So(cfg.NATSURL, convey.ShouldEqual, "nats://localhost:4222")
				convey.So(cfg.NATSEnabled(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with a YAML file and env vars", func() {
			path := createTempConfigFile(t, `
addr: ":9090"
queue_size: 300
log_format: json
default_profile: opportunity
profiles:
  water:
    - drought
    - flood
influx_url: http://localhost:8086
influx_org: climate
influx_bucket: observations
`)
			_ = os.Setenv("CLIMARISK_CONFIG", path)
			_ = os.Setenv("CLIMARISK_ADDR", ":7070")

			cfg, err := config.Load()

			convey.Convey("Then the file fills in values and env wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 300)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.DefaultProfile, convey.ShouldEqual, "opportunity")
				convey.So(cfg.Profiles["water"], convey.ShouldResemble, []string{"drought", "flood"})
				convey.So(cfg.InfluxBucket, convey.ShouldEqual, "observations")
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			})
		})

		convey.Convey("When the YAML file is invalid", func() {
			_ = os.Setenv("CLIMARISK_CONFIG", createTempConfigFile(t, `invalid: yaml: content: [`))

			cfg, err := config.Load()

			convey.Convey("Then a load error is returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the file does not exist", func() {
			_ = os.Setenv("CLIMARISK_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load()

			convey.Convey("Then a load error is returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When addr is set empty", func() {
			_ = os.Setenv("CLIMARISK_ADDR", "")

			cfg, err := config.Load()

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "CLIMARISK_") {
			_ = os.Unsetenv(strings.SplitN(kv, "=", 2)[0])
		}
	}
}
