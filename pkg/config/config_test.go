package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/genposter/pkg/errors"
	"github.com/matzehuels/genposter/pkg/poster"
)

func TestBuiltin(t *testing.T) {
	want := []string{"classic", "monochrome-study", "neon-night", "ocean-drift"}
	if diff := cmp.Diff(want, Builtin()); diff != "" {
		t.Errorf("Builtin() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuiltinPresetsValid(t *testing.T) {
	for _, name := range Builtin() {
		t.Run(name, func(t *testing.T) {
			p, err := Load(name)
			if err != nil {
				t.Fatalf("Load(%q): %v", name, err)
			}
			if p.Name != name {
				t.Errorf("Name = %q, want %q", p.Name, name)
			}
			if p.Description == "" {
				t.Error("built-in presets should have a description")
			}
		})
	}
}

func TestClassicMatchesDefaults(t *testing.T) {
	p, err := Load(DefaultPreset)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(poster.DefaultParams(), p.Poster); diff != "" {
		t.Errorf("classic preset differs from defaults (-want +got):\n%s", diff)
	}
}

func TestParseOverridesOnlyPresentKeys(t *testing.T) {
	doc := `
[poster]
palette_style = "earth"
layers = 12
seed = 7
`
	p, err := Parse("custom", []byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := poster.DefaultParams().WithSeed(7)
	want.PaletteStyle = "earth"
	want.Layers = 12
	if diff := cmp.Diff(want, p.Poster); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code errors.Code
	}{
		{"syntax", "[poster\nlayers = 3", errors.ErrCodeInvalidPreset},
		{"unknown key", "[poster]\nlayerz = 3", errors.ErrCodeInvalidPreset},
		{"wrong type", "[poster]\nlayers = \"many\"", errors.ErrCodeInvalidPreset},
		{"bad format", "[output]\nformats = [\"gif\"]", errors.ErrCodeInvalidPreset},
		{"bad alpha", "[poster]\nalpha_min = 0.9\nalpha_max = 0.1", errors.ErrCodeInvalidParameter},
		{"bad color", "[poster]\nbackground = \"#12\"", errors.ErrCodeInvalidColor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad", []byte(tt.doc))
			if !errors.Is(err, tt.code) {
				t.Errorf("Parse error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestLoadUnknown(t *testing.T) {
	_, err := Load("does-not-exist")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}
	if !strings.Contains(err.Error(), "classic") {
		t.Errorf("error should list available presets: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mine.toml")
	doc := "description = \"mine\"\n[poster]\nshape_kind = \"circle\"\n[output]\nformats = [\"jpg\"]\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%s): %v", path, err)
	}
	if p.Name != "mine" || p.Poster.ShapeKind != "circle" {
		t.Errorf("preset = %q / %q", p.Name, p.Poster.ShapeKind)
	}
	if diff := cmp.Diff([]string{"jpeg"}, p.Output.Formats); diff != "" {
		t.Errorf("formats mismatch (-want +got):\n%s", diff)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing file error = %v, want NOT_FOUND", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	orig, err := Load("neon-night")
	if err != nil {
		t.Fatal(err)
	}
	data, err := Encode(orig)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	back, err := Parse(orig.Name, data)
	if err != nil {
		t.Fatalf("Parse(encoded): %v\n%s", err, data)
	}
	if diff := cmp.Diff(orig, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
