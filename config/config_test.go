package config

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glibtools/restyjson/serializer"
)

const sampleConfig = `
[json]
escape_html = false
indent = "  "
disallow_unknown_fields = true

[http]
timeout = "5s"
retry_count = 1
proxy = "http://127.0.0.1:3128"

[log]
level = "debug"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	f := filepath.Join(t.TempDir(), "restyjson.toml")
	require.NoError(t, os.WriteFile(f, []byte(content), 0o644))
	return f
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, c.Load())

	assert.Equal(t, serializer.DefaultOptions(), c.JSONOptions())
	h := c.HTTP()
	assert.Equal(t, 20*time.Second, h.Timeout)
	assert.Equal(t, 3, h.RetryCount)
	assert.Equal(t, 300*time.Millisecond, h.RetryWait)
	assert.Equal(t, 2*time.Second, h.RetryMaxWait)
	assert.Equal(t, "warn", h.LogLevel)
}

func TestLoad_File(t *testing.T) {
	c := New(writeConfig(t, sampleConfig))
	require.NoError(t, c.Load())

	opts := c.JSONOptions()
	assert.False(t, opts.EscapeHTML)
	assert.Equal(t, "  ", opts.Indent)
	assert.True(t, opts.DisallowUnknownFields)
	assert.False(t, opts.UseNumber)

	h := c.HTTP()
	assert.Equal(t, 5*time.Second, h.Timeout)
	assert.Equal(t, 1, h.RetryCount)
	assert.Equal(t, "http://127.0.0.1:3128", h.Proxy)
	assert.Equal(t, "debug", h.LogLevel)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("RESTYJSON_JSON_USE_NUMBER", "true")
	t.Setenv("RESTYJSON_HTTP_RETRY_COUNT", "7")

	c := New(writeConfig(t, sampleConfig))
	require.NoError(t, c.Load())
	assert.True(t, c.JSONOptions().UseNumber)
	assert.Equal(t, 7, c.HTTP().RetryCount)
}

func TestLoad_BadFile(t *testing.T) {
	c := New(writeConfig(t, "[json\nescape_html = "))
	assert.Error(t, c.Load())
}

func TestLoad_BeforeLoadHook(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "absent.toml"))
	c.BeforeLoad = func(v *viper.Viper) { v.SetDefault("http.retry_count", 9) }
	require.NoError(t, c.Load())
	assert.Equal(t, 9, c.HTTP().RetryCount)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	f := writeConfig(t, sampleConfig)
	t.Setenv("CONFIG_FILE", f)
	prev := C
	C = new(Config)
	t.Cleanup(func() { C = prev })

	require.NoError(t, LoadConfig())
	assert.Equal(t, f, C.GetConfigFile())
	assert.Equal(t, 5*time.Second, C.HTTP().Timeout)
	assert.NotNil(t, Viper())
}

func TestOnChange(t *testing.T) {
	f := writeConfig(t, sampleConfig)
	c := New(f)
	require.NoError(t, c.Load())

	var indent atomic.Value
	var calls int32
	c.OnChange(func(c *Config) { atomic.AddInt32(&calls, 1) })
	c.OnChange(func(c *Config) { indent.Store(c.JSONOptions().Indent) })

	require.NoError(t, os.WriteFile(f, []byte("[json]\nindent = \"\\t\"\n"), 0o644))
	assert.Eventually(t, func() bool {
		v, _ := indent.Load().(string)
		return v == "\t"
	}, 3*time.Second, 20*time.Millisecond)
	assert.Positive(t, atomic.LoadInt32(&calls))
}

func TestMergeGlobalDefaultsAndSetValue(t *testing.T) {
	MergeGlobalDefaults(map[string]interface{}{"http.user_agent": "merged-agent"})
	t.Cleanup(func() { MergeGlobalDefaults(map[string]interface{}{"http.user_agent": ""}) })

	c := New(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, c.Load())
	assert.Equal(t, "merged-agent", c.HTTP().UserAgent)

	c.SetValue("json.indent", "    ")
	assert.Equal(t, "    ", c.JSONOptions().Indent)
	assert.Equal(t, "    ", c.V().GetString("json.indent"))
}

func TestLoad_InvalidHTTPSettings(t *testing.T) {
	c := New(writeConfig(t, `
[http]
proxy = "::not a url"
retry_count = -5
timeout = "-1s"
`))
	err := c.Load()
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	var fields []string
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	assert.ElementsMatch(t, []string{"Proxy", "RetryCount", "Timeout"}, fields)
}

func TestHTTPSettings_Validate(t *testing.T) {
	assert.NoError(t, HTTPSettings{Proxy: "http://127.0.0.1:3128"}.Validate())
	assert.NoError(t, HTTPSettings{}.Validate())
	assert.Error(t, HTTPSettings{RetryWait: -time.Second}.Validate())
	assert.Error(t, HTTPSettings{RetryMaxWait: -time.Second}.Validate())
}

func TestConfig_DefaultsBeforeLoad(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Equal(t, 3, c.HTTP().RetryCount)
	assert.Equal(t, serializer.DefaultOptions(), c.JSONOptions())

	var zero Config
	assert.Equal(t, 20*time.Second, zero.HTTP().Timeout)
	assert.True(t, zero.JSONOptions().EscapeHTML)
	assert.NotNil(t, zero.V())
}
