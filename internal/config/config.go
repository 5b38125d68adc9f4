// Package config loads default flag values from TOML and YAML files.
//
// Files hold one flat table whose keys are long flag names, written with
// dashes or underscores:
//
//	bytes = 8
//	encoding = "l"
//	match = ["^https?://", "@"]
package config

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnknownKey is returned when a file sets a key that is not a flag.
var ErrUnknownKey = errors.New("unknown config key")

// Files searched for defaults, user files first. Files that do not exist
// are skipped.
var (
	TOMLFiles = []string{"~/.strscan.toml", ".strscan.toml"}
	YAMLFiles = []string{"~/.strscan.yaml", "~/.strscan.yml", ".strscan.yaml", ".strscan.yml"}
)

// Options returns the kong options that load every configuration file.
func Options() []kong.Option {
	return []kong.Option{
		kong.Configuration(TOML, TOMLFiles...),
		kong.Configuration(YAML, YAMLFiles...),
	}
}

// Resolver supplies flag values from a decoded configuration file.
type Resolver struct {
	values map[string]any
}

var _ kong.Resolver = (*Resolver)(nil)

// TOML decodes a TOML document into a Resolver.
func TOML(r io.Reader) (kong.Resolver, error) {
	var raw map[string]any
	if err := toml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse toml: %w", err)
	}
	return newResolver(raw)
}

// YAML decodes a YAML document into a Resolver.
func YAML(r io.Reader) (kong.Resolver, error) {
	var raw map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return newResolver(raw)
}

func newResolver(raw map[string]any) (*Resolver, error) {
	values := make(map[string]any, len(raw))
	for key, value := range raw {
		v, err := normalizeValue(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		values[normalizeKey(key)] = v
	}
	return &Resolver{values: values}, nil
}

// Validate rejects keys that do not name a flag of app.
func (r *Resolver) Validate(app *kong.Application) error {
	known := make(map[string]bool)
	for _, flag := range app.Flags {
		known[normalizeKey(flag.Name)] = true
	}

	var unknown []string
	for key := range r.values {
		if !known[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(unknown, ", "))
}

// Resolve returns the configured value for flag, or nil when the file does
// not set it.
func (r *Resolver) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	v, ok := r.values[normalizeKey(flag.Name)]
	if !ok {
		return nil, nil
	}
	return v, nil
}

// Keys returns the normalized keys the file sets, sorted.
func (r *Resolver) Keys() []string {
	keys := make([]string, 0, len(r.values))
	for k := range r.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.ReplaceAll(key, "_", "-")
}

// normalizeValue turns scalars into the strings kong's mappers parse and
// lists into []any of strings.
func normalizeValue(value any) (any, error) {
	switch v := value.(type) {
	case []any:
		items := make([]any, 0, len(v))
		for i, item := range v {
			s, err := scalar(item)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			items = append(items, s)
		}
		return items, nil
	default:
		return scalar(value)
	}
}

func scalar(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", value)
	}
}
