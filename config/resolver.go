package config

import (
	"log/slog"
	"os"
	"slices"
	"strings"
)

// DefaultFile is the conventional location of the structured config file.
const DefaultFile = "config.toml"

// Source identifies where a resolved value came from.
type Source int

const (
	SourceDefault Source = iota
	SourceEnv
	SourceFile
)

func (s Source) String() string {
	switch s {
	case SourceFile:
		return "file"
	case SourceEnv:
		return "env"
	default:
		return "default"
	}
}

// Resolver looks settings up in a nested mapping loaded once at
// construction, falling back to environment variables and then to the
// caller's default. The mapping is never mutated after construction, so a
// Resolver may be shared between goroutines.
type Resolver struct {
	values    map[string]any
	lookupEnv func(string) (string, bool)
	logger    *slog.Logger
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for load warnings and resolution traces.
// Without it the Resolver logs to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithEnvLookup replaces os.LookupEnv as the environment source.
func WithEnvLookup(lookup func(string) (string, bool)) Option {
	return func(r *Resolver) {
		if lookup != nil {
			r.lookupEnv = lookup
		}
	}
}

// New loads the structured config file at path and returns a Resolver over
// it. A missing or unparsable file leaves the Resolver with an empty mapping;
// construction never fails.
func New(path string, opts ...Option) *Resolver {
	r := newResolver(opts)
	r.values = loadSource(path, r.logger)
	return r
}

// NewFromMap returns a Resolver over an already parsed nested mapping. The
// mapping is copied, later changes by the caller are not observed.
func NewFromMap(values map[string]any, opts ...Option) *Resolver {
	r := newResolver(opts)
	r.values = cloneMapping(values)
	return r
}

func newResolver(opts []Option) *Resolver {
	r := &Resolver{
		lookupEnv: os.LookupEnv,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// EnvName maps a dotted key path to its environment variable name, e.g.
// "database.port" becomes "DATABASE_PORT".
func EnvName(keyPath string) string {
	return strings.ReplaceAll(strings.ToUpper(keyPath), ".", "_")
}

// Lookup resolves keyPath against the file mapping and then the environment.
// ok is false when neither source holds the key, in which case src is
// SourceDefault.
func (r *Resolver) Lookup(keyPath string) (value any, src Source, ok bool) {
	if v, found := r.fromFile(keyPath); found {
		return v, SourceFile, true
	}

	if v, found := r.lookupEnv(EnvName(keyPath)); found {
		return v, SourceEnv, true
	}

	return nil, SourceDefault, false
}

// Resolve returns the value for keyPath, or def unchanged when neither the
// file nor the environment provides one.
func (r *Resolver) Resolve(keyPath string, def any) any {
	if v, _, ok := r.Lookup(keyPath); ok {
		return v
	}
	return def
}

// fromFile walks the mapping one segment at a time. A missing segment, a
// non-mapping intermediate or a null leaf all count as absent.
func (r *Resolver) fromFile(keyPath string) (any, bool) {
	if len(r.values) == 0 {
		return nil, false
	}

	var cur any = r.values
	for _, segment := range strings.Split(keyPath, ".") {
		m, ok := asMapping(cur)
		if !ok {
			return nil, false
		}
		if cur, ok = m[segment]; !ok {
			return nil, false
		}
	}

	if cur == nil {
		return nil, false
	}
	return cur, true
}

func asMapping(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func cloneMapping(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	if nested, ok := asMapping(v); ok {
		return cloneMapping(nested)
	}
	if list, ok := v.([]any); ok {
		out := slices.Clone(list)
		for i, item := range out {
			out[i] = cloneValue(item)
		}
		return out
	}
	return v
}
