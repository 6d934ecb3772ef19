// Package config loads poster presets from TOML.
//
// A preset is a TOML document with an optional description, a [poster]
// table holding any subset of the poster parameters, and an optional
// [output] table:
//
//	description = "Glowing neon polygons"
//
//	[poster]
//	palette_style = "neon"
//	shape_kind = "polygon"
//	layers = 45
//
//	[output]
//	formats = ["png", "jpeg"]
//
// Keys that are not present keep their value from poster.DefaultParams.
// Unknown keys are rejected so typos do not silently fall back to defaults.
package config

import (
	"bytes"
	"embed"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/genposter/pkg/errors"
	"github.com/matzehuels/genposter/pkg/export"
	"github.com/matzehuels/genposter/pkg/poster"
)

//go:embed presets/*.toml
var builtin embed.FS

// DefaultPreset is the built-in preset matching poster.DefaultParams.
const DefaultPreset = "classic"

// Preset is a named parameter set.
type Preset struct {
	Name        string        `toml:"-"`
	Description string        `toml:"description,omitempty"`
	Poster      poster.Params `toml:"poster"`
	Output      Output        `toml:"output,omitempty"`
}

// Output holds export settings stored alongside a preset.
type Output struct {
	Formats   []string `toml:"formats,omitempty"`
	Directory string   `toml:"directory,omitempty"`
	Quality   int      `toml:"quality,omitempty"`
}

// Builtin lists the names of the embedded presets, sorted.
func Builtin() []string {
	entries, err := builtin.ReadDir("presets")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".toml"))
	}
	slices.Sort(names)
	return names
}

// Load resolves name as a built-in preset, or as a file path when it
// contains a path separator or ends in ".toml".
func Load(name string) (*Preset, error) {
	if strings.ContainsRune(name, os.PathSeparator) || strings.HasSuffix(name, ".toml") {
		return LoadFile(name)
	}
	data, err := builtin.ReadFile(path.Join("presets", name+".toml"))
	if err != nil {
		return nil, errors.New(errors.ErrCodeNotFound, "unknown preset %q (available: %s)", name, strings.Join(Builtin(), ", "))
	}
	return Parse(name, data)
}

// LoadFile reads a preset from disk.
func LoadFile(file string) (*Preset, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "preset file %s", file)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read preset %s", file)
	}
	name := strings.TrimSuffix(path.Base(file), ".toml")
	return Parse(name, data)
}

// Parse decodes a preset document on top of the defaults and validates it.
func Parse(name string, data []byte) (*Preset, error) {
	p := &Preset{Name: name, Poster: poster.DefaultParams()}
	md, err := toml.Decode(string(data), p)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPreset, err, "preset %q", name)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidPreset, "preset %q has unknown keys: %s", name, strings.Join(keys, ", "))
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the poster parameters and output settings.
func (p *Preset) Validate() error {
	if err := p.Poster.Validate(); err != nil {
		return errors.Wrap(errors.GetCode(err), err, "preset %q", p.Name)
	}
	formats, err := export.ParseFormats(p.Output.Formats)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPreset, err, "preset %q", p.Name)
	}
	p.Output.Formats = formats
	if p.Output.Quality != 0 {
		if err := errors.ValidateIntRange("quality", p.Output.Quality, 1, 100); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPreset, err, "preset %q", p.Name)
		}
	}
	return nil
}

// Encode renders p as a TOML document.
func Encode(p *Preset) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(p); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode preset %q", p.Name)
	}
	return buf.Bytes(), nil
}
