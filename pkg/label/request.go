package label

import (
	"github.com/matzehuels/labelprint/pkg/errors"
)

// Request is the wire form of a label request, shared by the HTTP API and
// batch files. Exactly one of HTML and Image must be set; an empty
// PrinterName means "open in the default viewer".
type Request struct {
	HTML        string  `json:"html,omitempty" toml:"html"`
	Image       string  `json:"image,omitempty" toml:"image"`
	WidthMM     float64 `json:"width_mm" toml:"width_mm"`
	HeightMM    float64 `json:"height_mm" toml:"height_mm"`
	PrinterName string  `json:"printer_name,omitempty" toml:"printer_name"`
}

// Spec converts the request to a validated [Spec].
func (r Request) Spec() (Spec, error) {
	var content Content
	switch {
	case r.HTML != "" && r.Image != "":
		return Spec{}, errors.New(errors.ErrCodeInvalidInput, "html and image are mutually exclusive")
	case r.HTML != "":
		content = Markup{Text: r.HTML}
	case r.Image != "":
		content = Raster{Data: r.Image, Encoding: EncodingBase64}
	default:
		return Spec{}, errors.New(errors.ErrCodeInvalidInput, "one of html or image is required")
	}

	var dest Destination = ViewDefault{}
	if r.PrinterName != "" {
		dest = Printer{Name: r.PrinterName}
	}

	s := Spec{
		Content:     content,
		WidthMM:     r.WidthMM,
		HeightMM:    r.HeightMM,
		Destination: dest,
	}
	if err := s.Validate(); err != nil {
		return Spec{}, err
	}
	return s, nil
}
