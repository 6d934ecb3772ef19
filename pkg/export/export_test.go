package export

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/genposter/pkg/errors"
)

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 30), uint8(y * 40), 128, 255})
		}
	}
	return img
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"png", FormatPNG},
		{"PNG", FormatPNG},
		{"jpeg", FormatJPEG},
		{"jpg", FormatJPEG},
		{" Jpg ", FormatJPEG},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
	for _, bad := range []string{"", "svg", "gif"} {
		if _, err := ParseFormat(bad); !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ParseFormat(%q) error = %v, want INVALID_FORMAT", bad, err)
		}
	}
}

func TestParseFormats(t *testing.T) {
	got, err := ParseFormats([]string{"png", "jpg", "jpeg", "PNG"})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"png", "jpeg"}, got); diff != "" {
		t.Errorf("ParseFormats mismatch (-want +got):\n%s", diff)
	}
	if _, err := ParseFormats([]string{"png", "tiff"}); err == nil {
		t.Error("ParseFormats should reject unknown formats")
	}
}

func TestEncodePNGRoundTrip(t *testing.T) {
	src := testImage()
	data, err := Bytes(src, FormatPNG, Options{})
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if decoded.Bounds() != src.Bounds() {
		t.Fatalf("bounds = %v, want %v", decoded.Bounds(), src.Bounds())
	}
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			if got := color.NRGBAModel.Convert(decoded.At(x, y)); got != src.NRGBAAt(x, y) {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, src.NRGBAAt(x, y))
			}
		}
	}
}

func TestEncodeJPEG(t *testing.T) {
	data, err := Bytes(testImage(), "jpg", Options{Quality: 80})
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("jpeg.DecodeConfig: %v", err)
	}
	if cfg.Width != 8 || cfg.Height != 6 {
		t.Errorf("size = %dx%d, want 8x6", cfg.Width, cfg.Height)
	}

	if _, err := Bytes(testImage(), FormatJPEG, Options{Quality: 101}); !errors.Is(err, errors.ErrCodeInvalidParameter) {
		t.Errorf("quality 101 error = %v, want INVALID_PARAMETER", err)
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		base, format, want string
	}{
		{"poster", FormatPNG, "poster.png"},
		{"out/poster.png", FormatJPEG, "out/poster.jpg"},
		{"poster.jpeg", FormatPNG, "poster.png"},
		{"-", FormatPNG, "-"},
	}
	for _, tt := range tests {
		if got := OutputPath(tt.base, tt.format); got != tt.want {
			t.Errorf("OutputPath(%q, %q) = %q, want %q", tt.base, tt.format, got, tt.want)
		}
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "poster.png")
	if err := WriteFile(path, []byte("data")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil || string(got) != "data" {
		t.Errorf("ReadFile = %q, %v", got, err)
	}
}

func TestContentType(t *testing.T) {
	if ContentType(FormatPNG) != "image/png" || ContentType(FormatJPEG) != "image/jpeg" {
		t.Error("unexpected content types")
	}
	if Extension(FormatJPEG) != ".jpg" || Extension(FormatPNG) != ".png" {
		t.Error("unexpected extensions")
	}
}
