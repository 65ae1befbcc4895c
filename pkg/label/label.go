// Package label defines the label specification handed to the pipeline.
//
// Content and destination are sealed sum types: a [Spec] always carries
// exactly one of [Markup] or [Raster] and exactly one of [ViewDefault] or
// [Printer]. The "both set" and "neither set" states of the wire form
// ([Request]) are rejected when converting it to a [Spec].
package label

import (
	"strings"

	"github.com/matzehuels/labelprint/pkg/errors"
	"github.com/matzehuels/labelprint/pkg/units"
)

// Kind distinguishes markup content from raster content.
type Kind string

const (
	KindMarkup Kind = "markup"
	KindRaster Kind = "raster"
)

// Encoding is the transfer encoding of raster payloads.
type Encoding string

// EncodingBase64 is the only supported raster encoding.
const EncodingBase64 Encoding = "base64"

// Content is the label body. It is implemented only by [Markup] and [Raster].
type Content interface {
	Kind() Kind
	isContent()
}

// Markup is HTML label content, written to disk verbatim.
type Markup struct {
	Text string
}

// Raster is an encoded image payload, optionally prefixed with a data URI
// scheme ("data:image/png;base64,").
type Raster struct {
	Data     string
	Encoding Encoding
}

func (Markup) Kind() Kind { return KindMarkup }
func (Raster) Kind() Kind { return KindRaster }
func (Markup) isContent() {}
func (Raster) isContent() {}

// Destination selects where the PDF goes. It is implemented only by
// [ViewDefault] and [Printer].
type Destination interface {
	String() string
	isDestination()
}

// ViewDefault opens the PDF with the operating system's default application.
type ViewDefault struct{}

// Printer spools the PDF to the named print queue.
type Printer struct {
	Name string
}

func (ViewDefault) String() string { return "viewer" }
func (p Printer) String() string   { return "printer " + p.Name }
func (ViewDefault) isDestination() {}
func (Printer) isDestination()     {}

// Spec is an immutable label request.
type Spec struct {
	Content     Content
	WidthMM     float64
	HeightMM    float64
	Destination Destination
}

// Size returns the physical page size.
func (s Spec) Size() units.Size {
	return units.Size{WidthMM: s.WidthMM, HeightMM: s.HeightMM}
}

// Validate checks the spec without touching the filesystem or launching
// any process.
func (s Spec) Validate() error {
	if err := errors.ValidateDimension("width", s.WidthMM); err != nil {
		return err
	}
	if err := errors.ValidateDimension("height", s.HeightMM); err != nil {
		return err
	}

	switch c := s.Content.(type) {
	case Markup:
		if strings.TrimSpace(c.Text) == "" {
			return errors.New(errors.ErrCodeInvalidInput, "markup content is empty")
		}
	case Raster:
		if strings.TrimSpace(c.Data) == "" {
			return errors.New(errors.ErrCodeInvalidInput, "image content is empty")
		}
		if c.Encoding != EncodingBase64 {
			return errors.New(errors.ErrCodeInvalidEncoding, "unsupported image encoding %q (must be %q)", c.Encoding, EncodingBase64)
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "label content is required")
	}

	switch d := s.Destination.(type) {
	case ViewDefault:
	case Printer:
		if err := errors.ValidatePrinterName(d.Name); err != nil {
			return err
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "destination is required")
	}
	return nil
}
