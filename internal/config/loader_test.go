package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/parley/internal/config"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.DataDir, convey.ShouldEqual, "conversations")
				convey.So(cfg.SaveSessions, convey.ShouldBeTrue)
				convey.So(cfg.TargetScore, convey.ShouldEqual, 80)
				convey.So(cfg.MaxUserTurns, convey.ShouldEqual, 8)
				convey.So(cfg.SessionTimeLimitMin, convey.ShouldEqual, 10)
				convey.So(cfg.GeminiModel, convey.ShouldEqual, "gemini-2.0-flash")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("PARLEY_ADDR", ":8080")
			_ = os.Setenv("PARLEY_DATA_DIR", "/var/lib/parley")
			_ = os.Setenv("PARLEY_TARGET_SCORE", "90")
			_ = os.Setenv("PARLEY_MAX_USER_TURNS", "12")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DataDir, convey.ShouldEqual, "/var/lib/parley")
				convey.So(cfg.TargetScore, convey.ShouldEqual, 90)
				convey.So(cfg.MaxUserTurns, convey.ShouldEqual, 12)
				// Untouched fields keep their defaults.
				convey.So(cfg.SessionTimeLimitMin, convey.ShouldEqual, 10)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
data_dir: "records"
target_score: 70
session_time_limit_min: 15
gemini_model: "gemini-1.5-pro"
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("PARLEY_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DataDir, convey.ShouldEqual, "records")
				convey.So(cfg.TargetScore, convey.ShouldEqual, 70)
				convey.So(cfg.SessionTimeLimitMin, convey.ShouldEqual, 15)
				convey.So(cfg.GeminiModel, convey.ShouldEqual, "gemini-1.5-pro")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
target_score: 70
max_user_turns: 6
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("PARLEY_CONFIG", tmpFile)
			_ = os.Setenv("PARLEY_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")     // Overridden by env
				convey.So(cfg.TargetScore, convey.ShouldEqual, 70)   // From file
				convey.So(cfg.MaxUserTurns, convey.ShouldEqual, 6)   // From file
				convey.So(cfg.MemoSize, convey.ShouldEqual, 1024)    // From defaults
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("PARLEY_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldWrap, config.ErrLoadConfig)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("PARLEY_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigValidation(t *testing.T) {
	convey.Convey("Given config validation", t, func() {
		ctx := context.Background()

		cases := []struct {
			name  string
			key   string
			value string
			want  string
		}{
			{"empty addr", "PARLEY_ADDR", "", "addr must not be empty"},
			{"zero target score", "PARLEY_TARGET_SCORE", "0", "target_score must be in (0,100]"},
			{"target score above 100", "PARLEY_TARGET_SCORE", "150", "target_score must be in (0,100]"},
			{"zero max user turns", "PARLEY_MAX_USER_TURNS", "0", "max_user_turns must be positive"},
			{"zero time limit", "PARLEY_SESSION_TIME_LIMIT_MIN", "0", "session_time_limit_min must be positive"},
		}

		for _, tc := range cases {
			convey.Convey("When loading with "+tc.name, func() {
				_ = os.Setenv(tc.key, tc.value)
				defer clearConfigEnvVars()

				cfg, err := config.Load(ctx)

				convey.Convey("Then it should return a validation error", func() {
					convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
					convey.So(err.Error(), convey.ShouldContainSubstring, tc.want)
					convey.So(cfg, convey.ShouldBeNil)
				})
			})
		}

		convey.Convey("When persistence is off an empty data_dir is allowed", func() {
			_ = os.Setenv("PARLEY_DATA_DIR", "")
			_ = os.Setenv("PARLEY_SAVE_SESSIONS", "false")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.SaveSessions, convey.ShouldBeFalse)
		})

		convey.Convey("When persistence is on an empty data_dir is rejected", func() {
			_ = os.Setenv("PARLEY_DATA_DIR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"PARLEY_CONFIG",
		"PARLEY_ADDR",
		"PARLEY_DATA_DIR",
		"PARLEY_SAVE_SESSIONS",
		"PARLEY_TARGET_SCORE",
		"PARLEY_MAX_USER_TURNS",
		"PARLEY_SESSION_TIME_LIMIT_MIN",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "parley-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
