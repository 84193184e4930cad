package serializer

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/goccy/go-json"
)

var _ Serializer = (*JSONSerializer)(nil)

// ErrTrailingData is returned when text holds more than one JSON value.
var ErrTrailingData = errors.New("serializer: trailing data after JSON value")

// Serializer is the JSON slot of a client: it turns request bodies into
// JSON text and response bodies back into values.
type Serializer interface {
	Serialize(v interface{}) (string, error)
	Deserialize(text string, v interface{}) error
	DeserializeStream(r io.Reader, v interface{}) error
}

// JSONSerializer implements Serializer on top of go-json.
// It has no mutable state and is safe for concurrent use.
type JSONSerializer struct {
	opts Options
}

// NewJSONSerializer copies opts; nil means DefaultOptions.
func NewJSONSerializer(opts *Options) *JSONSerializer {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONSerializer{opts: *opts}
}

// Options returns a copy of the stored options.
func (s *JSONSerializer) Options() Options { return s.opts }

func (s *JSONSerializer) Deserialize(text string, v interface{}) error {
	if !s.opts.streamDecoder() {
		return json.UnmarshalWithOption([]byte(text), v, s.opts.decodeOptions()...)
	}
	dec := json.NewDecoder(strings.NewReader(text))
	if s.opts.DisallowUnknownFields {
		dec.DisallowUnknownFields()
	}
	if s.opts.UseNumber {
		dec.UseNumber()
	}
	if err := dec.DecodeWithOption(v, s.opts.decodeOptions()...); err != nil {
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	// Unmarshal rejects anything after the value, keep the decoder path in line.
	var extra json.RawMessage
	switch err := dec.Decode(&extra); err {
	case io.EOF:
		return nil
	case nil:
		return ErrTrailingData
	default:
		return err
	}
}

// DeserializeStream reads r to the end and decodes its content.
// r is not closed.
func (s *JSONSerializer) DeserializeStream(r io.Reader, v interface{}) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return s.Deserialize(string(data), v)
}

func (s *JSONSerializer) Serialize(v interface{}) (string, error) {
	buf := bytes.NewBuffer(nil)
	encoder := json.NewEncoder(buf)
	encoder.SetEscapeHTML(s.opts.EscapeHTML)
	if s.opts.indented() {
		encoder.SetIndent(s.opts.Prefix, s.opts.Indent)
	}
	if err := encoder.EncodeWithOption(v, s.opts.encodeOptions()...); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Deserialize decodes text into a new T.
// On failure the zero T is returned.
func Deserialize[T any](s Serializer, text string) (T, error) {
	var v T
	if err := s.Deserialize(text, &v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// DeserializeStream decodes the whole of r into a new T.
func DeserializeStream[T any](s Serializer, r io.Reader) (T, error) {
	var v T
	if err := s.DeserializeStream(r, &v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}
