package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed defaults.yaml
var defaults []byte

// DefaultFileName is the settings file looked up in the base directory.
const DefaultFileName = "appsettings.json"

// EnvPrefix prefixes every environment override (USERSEND_TOPICNAME, USERSEND_LOG_LEVEL, ...).
const EnvPrefix = "USERSEND"

// ---- Root ----

type Config struct {
	EventBusConnection string        `mapstructure:"eventbusconnection"`
	TopicName          string        `mapstructure:"topicname"`
	Log                LogConfig     `mapstructure:"log"`
	Bus                BusConfig     `mapstructure:"bus"`
	Message            MessageConfig `mapstructure:"message"`
	Metrics            MetricsConfig `mapstructure:"metrics"`
}

// ---- Leaf structs ----

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"` // console | json
}

type BusConfig struct {
	ClientName     string        `mapstructure:"client_name"`
	DialTimeout    time.Duration `mapstructure:"dial_timeout"`
	PublishTimeout time.Duration `mapstructure:"publish_timeout"`

	// mysql:// outbox connections only
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type MessageConfig struct {
	IDFormat string `mapstructure:"id_format"` // uuid | ulid
}

type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

// Load reads embedded defaults, merges <baseDir>/<name> when it exists, and
// applies env overrides (USERSEND_*). A missing settings file is not an error;
// the broker connection string and topic then stay empty.
func Load(baseDir, name string) (Config, error) {
	v := viper.New()

	// embedded defaults
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return Config{}, fmt.Errorf("read defaults: %w", err)
	}

	if name == "" {
		name = DefaultFileName
	}
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, name)
	}

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
			v.SetConfigType(ext)
		}
		if err := v.MergeInConfig(); err != nil {
			return Config{}, fmt.Errorf("merge %s: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("stat %s: %w", path, err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
