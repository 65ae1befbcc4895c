package label

import (
	"math"
	"testing"

	"github.com/matzehuels/labelprint/pkg/errors"
)

func TestSpecValidate(t *testing.T) {
	markup := Markup{Text: "<p>hi</p>"}
	raster := Raster{Data: "iVBORw0KGgo=", Encoding: EncodingBase64}

	tests := []struct {
		name string
		spec Spec
		code errors.Code
	}{
		{"valid markup view", Spec{markup, 100, 50, ViewDefault{}}, ""},
		{"valid raster print", Spec{raster, 62, 100, Printer{Name: "BrotherQL"}}, ""},
		{"zero width", Spec{markup, 0, 50, ViewDefault{}}, errors.ErrCodeInvalidDimensions},
		{"negative height", Spec{markup, 10, -1, ViewDefault{}}, errors.ErrCodeInvalidDimensions},
		{"NaN width", Spec{markup, math.NaN(), 10, ViewDefault{}}, errors.ErrCodeInvalidDimensions},
		{"nil content", Spec{nil, 10, 10, ViewDefault{}}, errors.ErrCodeInvalidInput},
		{"blank markup", Spec{Markup{Text: "  \n"}, 10, 10, ViewDefault{}}, errors.ErrCodeInvalidInput},
		{"empty raster", Spec{Raster{Encoding: EncodingBase64}, 10, 10, ViewDefault{}}, errors.ErrCodeInvalidInput},
		{"bad encoding", Spec{Raster{Data: "abc", Encoding: "hex"}, 10, 10, ViewDefault{}}, errors.ErrCodeInvalidEncoding},
		{"nil destination", Spec{markup, 10, 10, nil}, errors.ErrCodeInvalidInput},
		{"bad printer", Spec{markup, 10, 10, Printer{Name: "-P"}}, errors.ErrCodeInvalidPrinter},
		{"empty printer", Spec{markup, 10, 10, Printer{}}, errors.ErrCodeInvalidPrinter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.code == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("Validate() = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestRequestSpec(t *testing.T) {
	t.Run("markup to viewer", func(t *testing.T) {
		s, err := Request{HTML: "<b>x</b>", WidthMM: 100, HeightMM: 50}.Spec()
		if err != nil {
			t.Fatalf("Spec() error: %v", err)
		}
		if s.Content.Kind() != KindMarkup {
			t.Errorf("Kind = %v, want %v", s.Content.Kind(), KindMarkup)
		}
		if _, ok := s.Destination.(ViewDefault); !ok {
			t.Errorf("Destination = %T, want ViewDefault", s.Destination)
		}
	})

	t.Run("image to printer", func(t *testing.T) {
		s, err := Request{Image: "data:image/png;base64,AAAA", WidthMM: 62, HeightMM: 100, PrinterName: "BrotherQL"}.Spec()
		if err != nil {
			t.Fatalf("Spec() error: %v", err)
		}
		r, ok := s.Content.(Raster)
		if !ok || r.Encoding != EncodingBase64 {
			t.Errorf("Content = %#v, want base64 Raster", s.Content)
		}
		p, ok := s.Destination.(Printer)
		if !ok || p.Name != "BrotherQL" {
			t.Errorf("Destination = %#v, want Printer BrotherQL", s.Destination)
		}
		if got := s.Size().String(); got != "62x100mm" {
			t.Errorf("Size() = %s", got)
		}
	})

	t.Run("both contents", func(t *testing.T) {
		_, err := Request{HTML: "a", Image: "b", WidthMM: 1, HeightMM: 1}.Spec()
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("err = %v, want INVALID_INPUT", err)
		}
	})

	t.Run("no content", func(t *testing.T) {
		_, err := Request{WidthMM: 1, HeightMM: 1}.Spec()
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("err = %v, want INVALID_INPUT", err)
		}
	})

	t.Run("zero width", func(t *testing.T) {
		_, err := Request{HTML: "a", HeightMM: 1}.Spec()
		if !errors.Is(err, errors.ErrCodeInvalidDimensions) {
			t.Errorf("err = %v, want INVALID_DIMENSIONS", err)
		}
	})
}

func TestDestinationString(t *testing.T) {
	if got := (ViewDefault{}).String(); got != "viewer" {
		t.Errorf("ViewDefault.String() = %q", got)
	}
	if got := (Printer{Name: "Q"}).String(); got != "printer Q" {
		t.Errorf("Printer.String() = %q", got)
	}
}
