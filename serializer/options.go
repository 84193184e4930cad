package serializer

import (
	"github.com/goccy/go-json"
)

// Options controls how JSONSerializer encodes and decodes.
// The zero value is not the library default; use DefaultOptions.
type Options struct {
	EscapeHTML           bool
	Prefix               string
	Indent               string
	UnorderedMap         bool
	DisableNormalizeUTF8 bool

	DisallowUnknownFields bool
	UseNumber             bool
	FieldPriorityFirstWin bool
}

// DefaultOptions returns the go-json defaults.
func DefaultOptions() *Options {
	return &Options{EscapeHTML: true}
}

func (o *Options) decodeOptions() []json.DecodeOptionFunc {
	var fns []json.DecodeOptionFunc
	if o.FieldPriorityFirstWin {
		fns = append(fns, json.DecodeFieldPriorityFirstWin())
	}
	return fns
}

func (o *Options) encodeOptions() []json.EncodeOptionFunc {
	var fns []json.EncodeOptionFunc
	if o.UnorderedMap {
		fns = append(fns, json.UnorderedMap())
	}
	if o.DisableNormalizeUTF8 {
		fns = append(fns, json.DisableNormalizeUTF8())
	}
	return fns
}

func (o *Options) indented() bool { return o.Prefix != "" || o.Indent != "" }

// streamDecoder reports whether decoding needs json.Decoder features.
func (o *Options) streamDecoder() bool { return o.DisallowUnknownFields || o.UseNumber }
