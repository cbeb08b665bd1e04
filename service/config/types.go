package config

import "github.com/drewtwitchell/scancompare/model"

// EnvPrefix is the prefix of environment variables that override config keys.
const EnvPrefix = "SCANCOMPARE"

// PathEnv names the environment variable that points at a config file.
const PathEnv = EnvPrefix + "_CONFIG"

type service struct {
	home string
}

// Service is the interface for loading scancompare settings.
type Service interface {
	Load(path string) (model.Config, error)
}
