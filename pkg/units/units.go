// Package units converts physical label dimensions between the unit systems
// the downstream tools expect.
//
// Renderer engines and the spooler disagree on units: wkhtmltopdf and
// img2pdf take millimeters, ImageMagick wants pixels at a known density,
// headless Chrome wants inches and the CUPS custom media descriptor takes
// either tenths of a millimeter or points. All conversions start from
// millimeters and are pure.
//
// Integer results round half away from zero ([math.Round]). Millimeter
// values handed to tools that accept decimals are passed through unrounded
// via [FormatMM].
//
// A single [Size] is chosen per invocation and used for both rendering and
// printing, so the two steps can never disagree about the label's size.
package units

import (
	"fmt"
	"math"
	"strconv"
)

const (
	// PointsPerMM is the PostScript point count per millimeter (72 / 25.4, rounded to five decimals).
	PointsPerMM = 2.83465

	// MMPerInch is the exact number of millimeters in an inch.
	MMPerInch = 25.4

	// ReferenceDPI is the resolution raster labels are assumed to be rendered at.
	ReferenceDPI = 300
)

// ToPoints converts millimeters to points.
func ToPoints(mm float64) float64 {
	return mm * PointsPerMM
}

// FromPoints converts points back to millimeters.
func FromPoints(pt float64) float64 {
	return pt / PointsPerMM
}

// ToTenths converts millimeters to whole tenths of a millimeter.
func ToTenths(mm float64) int {
	return Round(mm * 10)
}

// ToPixels converts millimeters to whole pixels at [ReferenceDPI].
func ToPixels(mm float64) int {
	return Round(mm * ReferenceDPI / MMPerInch)
}

// ToInches converts millimeters to inches.
func ToInches(mm float64) float64 {
	return mm / MMPerInch
}

// Round rounds to the nearest integer, halves away from zero.
func Round(v float64) int {
	return int(math.Round(v))
}

// FormatMM formats millimeters with the shortest exact decimal form,
// e.g. "62" or "62.5".
func FormatMM(mm float64) string {
	return strconv.FormatFloat(mm, 'f', -1, 64)
}

// Size is a physical page size in millimeters.
type Size struct {
	WidthMM  float64
	HeightMM float64
}

// String returns the size as "WxHmm".
func (s Size) String() string {
	return FormatMM(s.WidthMM) + "x" + FormatMM(s.HeightMM) + "mm"
}

// Points returns the width and height in points.
func (s Size) Points() (w, h float64) {
	return ToPoints(s.WidthMM), ToPoints(s.HeightMM)
}

// Tenths returns the width and height in tenths of a millimeter.
func (s Size) Tenths() (w, h int) {
	return ToTenths(s.WidthMM), ToTenths(s.HeightMM)
}

// Pixels returns the width and height in pixels at [ReferenceDPI].
func (s Size) Pixels() (w, h int) {
	return ToPixels(s.WidthMM), ToPixels(s.HeightMM)
}

// Media identifies the unit a spool media descriptor is written in.
type Media int

const (
	// MediaTenths writes the descriptor in tenths of a millimeter.
	MediaTenths Media = iota
	// MediaPoints writes the descriptor in points.
	MediaPoints
)

// String returns the unit name.
func (m Media) String() string {
	switch m {
	case MediaTenths:
		return "tenths"
	case MediaPoints:
		return "points"
	default:
		return fmt.Sprintf("Media(%d)", int(m))
	}
}
