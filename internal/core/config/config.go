package config

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"ltl-tracker/internal/features/tracking/domain"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`

	// RedisURL points at the result cache. Empty disables caching.
	RedisURL string `mapstructure:"REDIS_URL"`
	// ResultCacheTTL is how long successful results stay cached.
	ResultCacheTTL time.Duration `mapstructure:"RESULT_CACHE_TTL" default:"15m"`

	// CarriersFile optionally points at a YAML file overriding the seed
	// carrier profiles (endpoints, strategy order, keywords, ceilings).
	CarriersFile string `mapstructure:"CARRIERS_FILE"`

	// Session holds the fingerprint/session pool bounds.
	Session SessionConfig `mapstructure:",squash"`
	// Classifier holds the content classifier thresholds.
	Classifier ClassifierConfig `mapstructure:",squash"`
	// Ladder holds the escalation engine bounds.
	Ladder LadderConfig `mapstructure:",squash"`
	// Batch holds the batch orchestrator bounds.
	Batch BatchConfig `mapstructure:",squash"`
	// Proxy holds the optional egress proxy for the browser strategy.
	Proxy ProxyConfig `mapstructure:",squash"`
}

// SessionConfig bounds the per-carrier session pool.
type SessionConfig struct {
	// TTL is how long one session (cookies + fingerprint) stays valid.
	TTL time.Duration `mapstructure:"SESSION_TTL" default:"5m"`
	// PoolSize caps concurrent sessions per carrier.
	PoolSize int `mapstructure:"SESSION_POOL_SIZE" default:"3"`
}

// ClassifierConfig tunes the content classifier thresholds.
type ClassifierConfig struct {
	// MinBytes is the smallest payload treated as a real page.
	MinBytes int `mapstructure:"CLASSIFIER_MIN_BYTES" default:"500"`
	// ScriptMarkerThreshold is the code-syntax marker count above which a
	// short payload is classified as script rather than data.
	ScriptMarkerThreshold int `mapstructure:"CLASSIFIER_SCRIPT_MARKERS" default:"6"`
	// RealPageBytes is the size above which marker-heavy payloads still
	// count as full pages.
	RealPageBytes int `mapstructure:"CLASSIFIER_REAL_PAGE_BYTES" default:"20000"`
}

// LadderConfig bounds the escalation engine.
type LadderConfig struct {
	// RequestDeadline bounds the whole ladder for one tracking number.
	RequestDeadline time.Duration `mapstructure:"REQUEST_DEADLINE" default:"60s"`
	// AttemptPauseMax is the upper bound of the randomized pause between
	// strategy attempts on the same carrier.
	AttemptPauseMax time.Duration `mapstructure:"ATTEMPT_PAUSE_MAX" default:"750ms"`
}

// BatchConfig bounds the batch orchestrator.
type BatchConfig struct {
	// MaxConcurrency is the global worker bound across all carriers.
	MaxConcurrency int `mapstructure:"BATCH_MAX_CONCURRENCY" default:"12"`
	// MaxSize rejects oversized batch requests at the API boundary.
	MaxSize int `mapstructure:"BATCH_MAX_SIZE" default:"200"`
}

// ProxyConfig holds the optional egress proxy used by the browser strategy.
type ProxyConfig struct {
	ProxyEnabled  bool   `mapstructure:"PROXY_ENABLED"`
	ProxyHostname string `mapstructure:"PROXY_HOSTNAME"`
	ProxyPort     int    `mapstructure:"PROXY_PORT"`
	ProxyUsername string `mapstructure:"PROXY_USERNAME"`
	ProxyPassword string `mapstructure:"PROXY_PASSWORD"`
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadCarrierProfiles returns the seed carrier profiles, overlaid with the
// optional carriers YAML file. New carriers in the file are added as-is;
// known carriers are replaced wholesale by their file entry.
func LoadCarrierProfiles(file string) (map[domain.Carrier]*domain.CarrierProfile, error) {
	profiles := domain.SeedProfiles()
	if file == "" {
		return profiles, nil
	}

	v := viper.New()
	v.SetConfigFile(file)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading carriers file: %w", err)
	}

	var overrides struct {
		Carriers []*domain.CarrierProfile `mapstructure:"carriers"`
	}
	if err := v.Unmarshal(&overrides); err != nil {
		return nil, fmt.Errorf("unable to decode carriers file: %w", err)
	}

	for _, o := range overrides.Carriers {
		if o.Carrier == "" {
			return nil, errors.New("carriers file entry missing carrier tag")
		}
		o.ApplyDefaults()
		profiles[o.Carrier] = o
	}

	return profiles, nil
}

// processTags iterates over the struct fields and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			v.BindEnv(key)
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		required := field.Tag.Get("required")
		if required == "true" {
			value := val.Field(i)
			if isZero(value) {
				key := field.Tag.Get("mapstructure")
				return fmt.Errorf("missing required configuration: %s", key)
			}
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
