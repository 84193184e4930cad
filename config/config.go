package config

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/glibtools/restyjson/serializer"
	"github.com/glibtools/restyjson/util"
)

const EnvPrefix = "RESTYJSON"

var C = new(Config)
var validate = validator.New()
var globalDefaults = map[string]interface{}{
	"json.escape_html":              true,
	"json.prefix":                   "",
	"json.indent":                   "",
	"json.unordered_map":            false,
	"json.disable_normalize_utf8":   false,
	"json.disallow_unknown_fields":  false,
	"json.use_number":               false,
	"json.field_priority_first_win": false,

	"http.timeout":        "20s",
	"http.retry_count":    3,
	"http.retry_wait":     "300ms",
	"http.retry_max_wait": "2s",
	"http.proxy":          "",
	"http.user_agent":     "",

	"log.name":  "",
	"log.level": "warn",
}

type Config struct {
	v *viper.Viper

	configFile string

	mutex     sync.RWMutex
	once      sync.Once
	watchOnce sync.Once
	listeners []func(c *Config)

	BeforeLoad func(v *viper.Viper)
}

// HTTPSettings ...
type HTTPSettings struct {
	Timeout      time.Duration `validate:"gte=0"`
	RetryCount   int           `validate:"gte=0"`
	RetryWait    time.Duration `validate:"gte=0"`
	RetryMaxWait time.Duration `validate:"gte=0"`
	Proxy        string        `validate:"omitempty,url"`
	UserAgent    string
	LogName      string
	LogLevel     string
}

// Validate ...
func (h HTTPSettings) Validate() error { return validate.Struct(h) }

// New returns a config holding the defaults; Load reads the file.
func New(configFile string) *Config { return (&Config{configFile: configFile}).lazyInit() }

// GetConfigFile ......
func (c *Config) GetConfigFile() string {
	if c.configFile == "" {
		c.configFile = filepath.Join(util.RootDir(), "restyjson.toml")
	}
	return c.configFile
}

// HTTP returns the client settings.
func (c *Config) HTTP() HTTPSettings {
	c.lazyInit()
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.http()
}

// JSONOptions returns a fresh options value built from the json section.
func (c *Config) JSONOptions() *serializer.Options {
	c.lazyInit()
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return &serializer.Options{
		EscapeHTML:            c.v.GetBool("json.escape_html"),
		Prefix:                c.v.GetString("json.prefix"),
		Indent:                c.v.GetString("json.indent"),
		UnorderedMap:          c.v.GetBool("json.unordered_map"),
		DisableNormalizeUTF8:  c.v.GetBool("json.disable_normalize_utf8"),
		DisallowUnknownFields: c.v.GetBool("json.disallow_unknown_fields"),
		UseNumber:             c.v.GetBool("json.use_number"),
		FieldPriorityFirstWin: c.v.GetBool("json.field_priority_first_win"),
	}
}

func (c *Config) http() HTTPSettings {
	return HTTPSettings{
		Timeout:      c.v.GetDuration("http.timeout"),
		RetryCount:   c.v.GetInt("http.retry_count"),
		RetryWait:    c.v.GetDuration("http.retry_wait"),
		RetryMaxWait: c.v.GetDuration("http.retry_max_wait"),
		Proxy:        c.v.GetString("http.proxy"),
		UserAgent:    c.v.GetString("http.user_agent"),
		LogName:      c.v.GetString("log.name"),
		LogLevel:     c.v.GetString("log.level"),
	}
}

// Load reads the config file and validates the http section.
// A missing file leaves the defaults in place.
func (c *Config) Load() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if err := c.load(); err != nil {
		return err
	}
	return c.http().Validate()
}

// OnChange calls fn after every reload of the watched config file.
// The file watcher is started on the first call only and follows the
// instance loaded at that time, so call Load first.
func (c *Config) OnChange(fn func(c *Config)) {
	c.lazyInit()
	c.mutex.Lock()
	c.listeners = append(c.listeners, fn)
	c.mutex.Unlock()

	c.watchOnce.Do(func() {
		c.mutex.RLock()
		v := c.v
		c.mutex.RUnlock()
		v.OnConfigChange(func(event fsnotify.Event) {
			log.Printf("config file changed: %s\n", event.Name)
			c.mutex.RLock()
			listeners := append([]func(c *Config){}, c.listeners...)
			c.mutex.RUnlock()
			for _, l := range listeners {
				l(c)
			}
		})
		v.WatchConfig()
	})
}

// SetValue ...
func (c *Config) SetValue(k string, val interface{}) {
	c.lazyInit()
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.v.Set(k, val)
}

func (c *Config) V() *viper.Viper { return c.lazyInit().v }

// lazyInit gives a zero Config the defaults so it is usable before Load.
func (c *Config) lazyInit() *Config {
	c.once.Do(func() {
		c.mutex.Lock()
		defer c.mutex.Unlock()
		if c.v == nil {
			c.v = c.newViper()
		}
	})
	return c
}

// load ......
func (c *Config) load() (err error) {
	v := c.newViper()
	f := v.ConfigFileUsed()
	c.v = v
	if _, err = os.Stat(f); errors.Is(err, os.ErrNotExist) {
		log.Printf("config file %s not found; using defaults\n", f)
		return nil
	}
	log.Printf("load config file: %s\n", f)
	return v.ReadInConfig()
}

func (c *Config) newViper() *viper.Viper {
	v := viper.New()
	for k, v1 := range globalDefaults {
		v.SetDefault(k, v1)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigFile(c.GetConfigFile())
	if c.BeforeLoad != nil {
		c.BeforeLoad(v)
	}
	return v
}

func MergeGlobalDefaults(m map[string]interface{}) {
	for k, v := range m {
		globalDefaults[k] = v
	}
}

func Viper() *viper.Viper { return C.V() }
