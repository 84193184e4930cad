package gresty

import (
	"github.com/go-resty/resty/v2"

	"github.com/glibtools/restyjson/config"
	"github.com/glibtools/restyjson/serializer"
	"github.com/glibtools/restyjson/util"
)

// WithJSONSerializer puts a new JSONSerializer built from opts into r's
// serializer slot and returns r. A nil opts means the go-json defaults.
func WithJSONSerializer(r *Resty, opts *serializer.Options) *Resty {
	return r.SetJSONSerializer(serializer.NewJSONSerializer(opts))
}

// WithClientJSONSerializer is WithJSONSerializer for a bare resty client.
func WithClientJSONSerializer(c *resty.Client, opts *serializer.Options) *resty.Client {
	s := serializer.NewJSONSerializer(opts)
	c.SetJSONMarshaler(func(v interface{}) ([]byte, error) {
		text, err := s.Serialize(v)
		if err != nil {
			return nil, err
		}
		return []byte(text), nil
	})
	c.SetJSONUnmarshaler(func(data []byte, v interface{}) error {
		return s.Deserialize(string(data), v)
	})
	return c
}

// NewFromConfig builds a client from the http, log and json sections of c.
// The logger goes in first so resty can report settings it rejects.
func NewFromConfig(c *config.Config) *Resty {
	h := c.HTTP()
	r := New()
	r.SetLogger(util.ZapLogger(h.LogName, h.LogLevel))
	r.Apply(h)
	return WithJSONSerializer(r, c.JSONOptions())
}

// WatchConfig reinstalls the serializer whenever c's file changes.
func WatchConfig(r *Resty, c *config.Config) {
	c.OnChange(func(c *config.Config) {
		WithJSONSerializer(r, c.JSONOptions())
	})
}
