package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/okian/fastbreak/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			// Clear any existing environment variables
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.DBPath, convey.ShouldEqual, "fastbreak.db")
				convey.So(cfg.DefaultSeason, convey.ShouldEqual, "2024-25")
				convey.So(cfg.DefaultSeasons, convey.ShouldEqual, 10)
				convey.So(cfg.MaxSeasons, convey.ShouldEqual, 50)
				convey.So(cfg.EventBuffer, convey.ShouldEqual, 4)
				convey.So(cfg.MaxWalkSteps, convey.ShouldEqual, 50)
				convey.So(cfg.PossessionsOverride, convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			// Set environment variables
			_ = os.Setenv("FASTBREAK_ADDR", ":8080")
			_ = os.Setenv("FASTBREAK_DB_PATH", "/tmp/history.db")
			_ = os.Setenv("FASTBREAK_DEFAULT_SEASON", "2023-24")
			_ = os.Setenv("FASTBREAK_MAX_SEASONS", "25")
			_ = os.Setenv("FASTBREAK_EVENT_BUFFER", "8")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DBPath, convey.ShouldEqual, "/tmp/history.db")
				convey.So(cfg.DefaultSeason, convey.ShouldEqual, "2023-24")
				convey.So(cfg.MaxSeasons, convey.ShouldEqual, 25)
				convey.So(cfg.EventBuffer, convey.ShouldEqual, 8)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			// Create a temporary YAML config file
			yamlContent := `
addr: ":9090"
db_path: /var/lib/fastbreak/history.db
default_seasons: 5
max_seasons: 30
max_walk_steps: 60
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			// Set the config file path
			_ = os.Setenv("FASTBREAK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DBPath, convey.ShouldEqual, "/var/lib/fastbreak/history.db")
				convey.So(cfg.DefaultSeasons, convey.ShouldEqual, 5)
				convey.So(cfg.MaxSeasons, convey.ShouldEqual, 30)
				convey.So(cfg.MaxWalkSteps, convey.ShouldEqual, 60)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			// Create a YAML config file
			yamlContent := `
addr: ":9090"
db_path: /var/lib/fastbreak/history.db
default_seasons: 5
max_seasons: 30
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			// Set both file and environment variables
			_ = os.Setenv("FASTBREAK_CONFIG", tmpFile)
			_ = os.Setenv("FASTBREAK_ADDR", ":8080")      // This should override the file
			_ = os.Setenv("FASTBREAK_MAX_SEASONS", "40") // This should override the file
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")                            // Overridden by env
				convey.So(cfg.DBPath, convey.ShouldEqual, "/var/lib/fastbreak/history.db") // From file
				convey.So(cfg.DefaultSeasons, convey.ShouldEqual, 5)                       // From file
				convey.So(cfg.MaxSeasons, convey.ShouldEqual, 40)                          // Overridden by env
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			// Create an invalid YAML file
			invalidYaml := `invalid: yaml: content: [`
			tmpFile := createTempConfigFile(invalidYaml)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FASTBREAK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("FASTBREAK_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("FASTBREAK_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a zero season count", func() {
			_ = os.Setenv("FASTBREAK_DEFAULT_SEASONS", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "default_seasons")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a cap below the default count", func() {
			_ = os.Setenv("FASTBREAK_MAX_SEASONS", "3")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "max_seasons")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with partial YAML file", func() {
			// Create a YAML file with only some fields
			yamlContent := `
addr: ":9090"
event_buffer: 16
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FASTBREAK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should merge with defaults for missing fields", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")           // From file
				convey.So(cfg.EventBuffer, convey.ShouldEqual, 16)         // From file
				convey.So(cfg.DBPath, convey.ShouldEqual, "fastbreak.db")  // From defaults
				convey.So(cfg.DefaultSeason, convey.ShouldEqual, "2024-25") // From defaults
				convey.So(cfg.DefaultSeasons, convey.ShouldEqual, 10)      // From defaults
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("FASTBREAK_MAX_SEASONS", "invalid")
			_ = os.Setenv("FASTBREAK_EVENT_BUFFER", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigLoaderEdgeCases(t *testing.T) {
	convey.Convey("Given config loader edge cases", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with special characters in addr", func() {
			_ = os.Setenv("FASTBREAK_ADDR", "[::1]:8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should handle various addr formats", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, "[::1]:8080")
			})
		})

		convey.Convey("When loading config with YAML file containing comments", func() {
			yamlContent := `
# This is a comment
addr: ":9090"  # Inline comment
default_seasons: 8
# Another comment
max_seasons: 20
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FASTBREAK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should parse YAML with comments", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DefaultSeasons, convey.ShouldEqual, 8)
				convey.So(cfg.MaxSeasons, convey.ShouldEqual, 20)
			})
		})

		convey.Convey("When loading config with YAML file containing empty values", func() {
			yamlContent := `
addr: ""
default_seasons: 8
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FASTBREAK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return validation error for empty addr", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"FASTBREAK_CONFIG",
		"FASTBREAK_ADDR",
		"FASTBREAK_DB_PATH",
		"FASTBREAK_DEFAULT_SEASON",
		"FASTBREAK_DEFAULT_SEASONS",
		"FASTBREAK_MAX_SEASONS",
		"FASTBREAK_EVENT_BUFFER",
		"FASTBREAK_MAX_WALK_STEPS",
		"FASTBREAK_POSSESSIONS_OVERRIDE",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "fastbreak-config-*.yaml")
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
