// Package config loads scancompare settings from a YAML file and SCANCOMPARE_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/drewtwitchell/scancompare/model"
	"github.com/spf13/viper"
)

const configName = ".scancompare"

// NewService creates a config service that looks for a config file in the
// user's home directory and the working directory.
func NewService() Service {
	home, _ := os.UserHomeDir()
	return &service{home: home}
}

// Load reads settings. An explicit path must exist; without one a missing
// config file is not an error.
func (s *service) Load(path string) (model.Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = os.Getenv(PathEnv)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		if s.home != "" {
			v.AddConfigPath(s.home)
		}
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return model.Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	timeout, err := parseTimeout(v.GetString("timeout"))
	if err != nil {
		return model.Config{}, err
	}

	return model.Config{
		TrivyPath: v.GetString("trivy-path"),
		GrypePath: v.GetString("grype-path"),
		ReportDir: v.GetString("report-dir"),
		Scanners:  splitList(v.GetStringSlice("scanners")),
		Output:    v.GetString("output"),
		Timeout:   timeout,
		FailOn:    v.GetString("fail-on"),
		LogLevel:  v.GetString("log-level"),
		Region:    v.GetString("region"),
		Profile:   v.GetString("profile"),
		Source:    v.ConfigFileUsed(),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("trivy-path", "trivy")
	v.SetDefault("grype-path", "grype")
	v.SetDefault("report-dir", "reports")
	v.SetDefault("scanners", []string{"trivy", "grype"})
	v.SetDefault("output", "table")
	v.SetDefault("timeout", "10m")
	v.SetDefault("log-level", "info")
}

func parseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q in config: %w", raw, err)
	}
	return d, nil
}

// splitList accepts both YAML lists and comma separated env values.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
