package config

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. SHIPTRACK_USPS_USERNAME.
const EnvPrefix = "SHIPTRACK"

// zipPattern accepts ZIP and ZIP+4 without the dash.
var zipPattern = regexp.MustCompile(`^\d{5}(\d{4})?$`)

// AppConfig holds the configuration for a shiptrack run.
// Tags used:
// - mapstructure: key inside the YAML document (nested blocks use dotted paths)
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"environment" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"log_level" default:"info"`
	// LogFile is an optional path for a rolling log file in addition to stderr.
	LogFile string `mapstructure:"log_file"`

	// Zip is the destination zip code sent with every tracking entry.
	Zip string `mapstructure:"zip" required:"true"`

	// USPS holds the USPS Web Tools credentials and tracking list.
	USPS USPSConfig `mapstructure:"usps"`

	// Annotations maps a tracking number to user supplied notes.
	Annotations map[string]AnnotationConfig `mapstructure:"annotations"`

	// HTTP configures the outbound transport.
	HTTP HTTPConfig `mapstructure:"http"`

	// Proxy configures an optional outbound proxy.
	Proxy ProxyConfig `mapstructure:"proxy"`

	// Cache configures the optional raw response cache.
	Cache CacheConfig `mapstructure:"cache"`

	// Server configures the optional JSON API.
	Server ServerConfig `mapstructure:"server"`
}

// USPSConfig holds the USPS API credentials.
type USPSConfig struct {
	// APIBaseURL is the ShippingAPI.dll endpoint.
	APIBaseURL string `mapstructure:"apiBaseUrl" default:"https://secure.shippingapis.com/ShippingAPI.dll"`
	// App is sent as the SourceId of the request.
	App string `mapstructure:"app" default:"shiptrack"`
	// IP is sent as the ClientIp of the request.
	IP string `mapstructure:"ip" default:"127.0.0.1"`
	// Username is the Web Tools USERID.
	Username string `mapstructure:"username" required:"true"`
	// Tracking is the ordered list of tracking numbers to query.
	Tracking []string `mapstructure:"tracking"`
}

// AnnotationConfig is the note attached to a tracking number.
type AnnotationConfig struct {
	Sender      string `mapstructure:"sender"`
	Description string `mapstructure:"description"`
}

// HTTPConfig holds transport settings.
type HTTPConfig struct {
	// Timeout bounds a single carrier request.
	Timeout time.Duration `mapstructure:"timeout" default:"30s"`
	// InsecureSkipVerify disables TLS certificate validation.
	InsecureSkipVerify bool `mapstructure:"insecureSkipVerify"`
}

// ProxyConfig holds outbound proxy settings.
type ProxyConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Hostname string `mapstructure:"hostname"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// CacheConfig holds the Redis cache settings. An empty URL disables caching.
type CacheConfig struct {
	// URL is a redis:// URL.
	URL string `mapstructure:"url"`
	// TTL is how long a raw carrier response stays cached.
	TTL time.Duration `mapstructure:"ttl" default:"5m"`
}

// ServerConfig holds the JSON API settings.
type ServerConfig struct {
	// Port is where `shiptrack serve` listens.
	Port int `mapstructure:"port" default:"8080"`
}

// Load reads the YAML document at path and applies SHIPTRACK_* environment overrides.
// A missing or unreadable file is an error.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config AppConfig

	processTags(v, reflect.TypeOf(config), "")

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(reflect.ValueOf(&config).Elem(), ""); err != nil {
		return nil, err
	}

	if !zipPattern.MatchString(config.Zip) {
		return nil, fmt.Errorf("invalid zip %q: expected 5 or 9 digits; quote the zip in the config file when it starts with 0", config.Zip)
	}

	return &config, nil
}

// processTags walks the struct type, binding env vars and registering defaults under dotted keys.
func processTags(v *viper.Viper, t reflect.Type, prefix string) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		key := field.Tag.Get("mapstructure")
		if key == "" {
			continue
		}
		if prefix != "" {
			key = prefix + "." + key
		}

		if field.Type.Kind() == reflect.Struct {
			processTags(v, field.Type, key)
			continue
		}

		_ = v.BindEnv(key)

		if defaultValue := field.Tag.Get("default"); defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(val reflect.Value, prefix string) error {
	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		key := field.Tag.Get("mapstructure")
		if prefix != "" {
			key = prefix + "." + key
		}

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i), key); err != nil {
				return err
			}
			continue
		}

		if field.Tag.Get("required") == "true" && isZero(val.Field(i)) {
			return fmt.Errorf("missing required configuration: %s", key)
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
