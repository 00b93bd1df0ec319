package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
)

var (
	Default = Config{
		Common: Common{
			LogLevel:  "info",
			LogFormat: "logfmt",
			HttpAddr:  ":9600",
		},
		Bot: Bot{
			Name:      "parrot",
			FailFast:  true,
			EnvPrefix: "PARROT",
		},
	}
)

type Config struct {
	Common  Common   `toml:"common"  yaml:"common"  json:"common"`
	Bot     Bot      `toml:"bot"     yaml:"bot"     json:"bot"`
	Auth    Auth     `toml:"auth"    yaml:"auth"    json:"auth"`
	Inputs  Sections `toml:"inputs"  yaml:"inputs"  json:"inputs"`
	Plugins Sections `toml:"plugins" yaml:"plugins" json:"plugins"`
}

type Common struct {
	LogLevel  string            `toml:"log_level"  yaml:"log_level"  json:"log_level"`
	LogFormat string            `toml:"log_format" yaml:"log_format" json:"log_format"`
	LogFields map[string]string `toml:"log_fields" yaml:"log_fields" json:"log_fields"`
	HttpAddr  string            `toml:"http_addr"  yaml:"http_addr"  json:"http_addr"`
	// rpc endpoint requires basic auth if both are set
	RpcUsername string `toml:"rpc_username" yaml:"rpc_username" json:"rpc_username"`
	RpcPassword string `toml:"rpc_password" yaml:"rpc_password" json:"rpc_password"`
}

type Bot struct {
	// bot nick, used for addressing detection by inputs
	Name string `toml:"name" yaml:"name" json:"name"`
	// processors to instantiate, by plugin key
	Load      []string `toml:"load"       yaml:"load"       json:"load"`
	FailFast  bool     `toml:"fail_fast"  yaml:"fail_fast"  json:"fail_fast"`
	EnvPrefix string   `toml:"env_prefix" yaml:"env_prefix" json:"env_prefix"`
}

// Auth maps a permission name to sender glob patterns.
type Auth map[string][]string

// Sections is a set of named raw configuration sections,
// one per plugin or input.
type Sections map[string]map[string]any

func ReadConfig(file string) (*Config, error) {
	buf, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	buf = []byte(os.ExpandEnv(string(buf)))
	config := Default

	switch e := filepath.Ext(file); e {
	case ".json":
		if err := json.Unmarshal(buf, &config); err != nil {
			return &config, err
		}
	case ".toml":
		if err := toml.Unmarshal(buf, &config); err != nil {
			return &config, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(buf, &config); err != nil {
			return &config, err
		}
	default:
		return &config, fmt.Errorf("unknown configuration file extension: %v", e)
	}

	return &config, nil
}

// FileLoader reads plugin sections from file on every call,
// so it can serve as a reload source for the Store.
func FileLoader(file string) Loader {
	return func() (Sections, error) {
		cfg, err := ReadConfig(file)
		if err != nil {
			return nil, err
		}
		return cfg.Plugins, nil
	}
}
