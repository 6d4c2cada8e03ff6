package support

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog"
)

const EnvironmentPrefix = "TREATS_"

type StoreKind string

const (
	RedisStore  StoreKind = "redis"
	DynamoStore StoreKind = "dynamo"
)

type TraceExporter string

const (
	NoTraces      TraceExporter = "none"
	ConsoleTraces TraceExporter = "console"
	OTLPTraces    TraceExporter = "otlp"
	JaegerTraces  TraceExporter = "jaeger"
)

// Config is read from TREATS_ prefixed environment variables, e.g.
// TREATS_REDIS_ADDRESS populates RedisAddress.
type Config struct {
	ListenAddress string        `mapstructure:"listen_address"`
	ServerName    string        `mapstructure:"server_name"`
	Store         StoreKind     `mapstructure:"store"`
	StoreTimeout  time.Duration `mapstructure:"store_timeout"`
	CounterKey    string        `mapstructure:"counter_key"`
	AtomicInit    bool          `mapstructure:"atomic_init"`

	RedisAddress  string `mapstructure:"redis_address"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`

	DynamoTable    string `mapstructure:"dynamo_table"`
	DynamoEndpoint string `mapstructure:"dynamo_endpoint"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	TraceExporter TraceExporter `mapstructure:"trace_exporter"`
	OTLPEndpoint  string        `mapstructure:"otlp_endpoint"`
	OTLPHeaders   string        `mapstructure:"otlp_headers"`
	JaegerURL     string        `mapstructure:"jaeger_url"`
}

func DefaultConfig() Config {
	name, err := os.Hostname()
	if err != nil {
		name = "localhost"
	}

	return Config{
		ListenAddress: ":9080",
		ServerName:    name,
		Store:         RedisStore,
		StoreTimeout:  2 * time.Second,
		CounterKey:    "counter",
		RedisAddress:  "192.168.33.35:6379",
		DynamoTable:   "treats-counters",
		LogLevel:      "info",
		LogFormat:     "json",
		TraceExporter: NoTraces,
		JaegerURL:     "http://localhost:14268/api/traces",
	}
}

// LoadConfig reads the process environment over the defaults.
func LoadConfig() (Config, error) {
	return ConfigFrom(os.Environ())
}

func ConfigFrom(environ []string) (Config, error) {
	cfg := DefaultConfig()

	values := map[string]interface{}{}
	for _, entry := range environ {
		name, value, found := strings.Cut(entry, "=")
		if !found || !strings.HasPrefix(name, EnvironmentPrefix) {
			continue
		}
		values[strings.ToLower(strings.TrimPrefix(name, EnvironmentPrefix))] = value
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, err
	}

	var result *multierror.Error
	if err := decoder.Decode(values); err != nil {
		if decodeErr, ok := err.(*mapstructure.Error); ok {
			for _, message := range decodeErr.Errors {
				result = multierror.Append(result, errors.New(message))
			}
		} else {
			result = multierror.Append(result, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		result = multierror.Append(result, err)
	}

	if err := result.ErrorOrNil(); err != nil {
		return Config{}, multierror.Prefix(err, "configuration:")
	}

	return cfg, nil
}

func (cfg Config) Validate() error {
	var result *multierror.Error

	if cfg.ListenAddress == "" {
		result = multierror.Append(result, fmt.Errorf("%sLISTEN_ADDRESS must be set", EnvironmentPrefix))
	}

	if cfg.CounterKey == "" {
		result = multierror.Append(result, fmt.Errorf("%sCOUNTER_KEY must be set", EnvironmentPrefix))
	}

	if cfg.StoreTimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("%sSTORE_TIMEOUT must be positive, got %s", EnvironmentPrefix, cfg.StoreTimeout))
	}

	switch cfg.Store {
	case RedisStore:
		if cfg.RedisAddress == "" {
			result = multierror.Append(result, fmt.Errorf("%sREDIS_ADDRESS must be set", EnvironmentPrefix))
		}
		if cfg.RedisDB < 0 {
			result = multierror.Append(result, fmt.Errorf("%sREDIS_DB must not be negative", EnvironmentPrefix))
		}
	case DynamoStore:
		if cfg.DynamoTable == "" {
			result = multierror.Append(result, fmt.Errorf("%sDYNAMO_TABLE must be set", EnvironmentPrefix))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("%sSTORE %q is not one of redis, dynamo", EnvironmentPrefix, cfg.Store))
	}

	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		result = multierror.Append(result, fmt.Errorf("%sLOG_LEVEL %q is not a log level", EnvironmentPrefix, cfg.LogLevel))
	}

	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		result = multierror.Append(result, fmt.Errorf("%sLOG_FORMAT %q is not one of json, console", EnvironmentPrefix, cfg.LogFormat))
	}

	switch cfg.TraceExporter {
	case NoTraces, ConsoleTraces, JaegerTraces:
	case OTLPTraces:
		if cfg.OTLPEndpoint == "" {
			result = multierror.Append(result, fmt.Errorf("%sOTLP_ENDPOINT must be set for otlp traces", EnvironmentPrefix))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("%sTRACE_EXPORTER %q is not one of none, console, otlp, jaeger", EnvironmentPrefix, cfg.TraceExporter))
	}

	return result.ErrorOrNil()
}

// Headers parses OTLPHeaders as comma separated key=value pairs.
func (cfg Config) Headers() map[string]string {
	headers := map[string]string{}
	for _, pair := range strings.Split(cfg.OTLPHeaders, ",") {
		key, value, found := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if found && key != "" {
			headers[key] = strings.TrimSpace(value)
		}
	}

	return headers
}
