// Package render turns a materialized label into a PDF by trying renderer
// engines in priority order.
//
// # Engines
//
// An [Engine] converts one kind of input (markup or raster) into a PDF of
// an exact physical size. Markup engines and raster engines are disjoint
// sets: a markup job never reaches a raster engine. Each engine also
// declares the [units.Media] the print step must use for the PDFs it
// produces, so a point-sized PDF is never spooled with a millimeter-based
// media descriptor.
//
// Built-in engines:
//
//   - wkhtmltopdf: markup, page size in millimeters, zero margins
//   - weasyprint: markup, page size in millimeters via a generated @page stylesheet
//   - chrome: markup, headless Chrome through chromedp, paper size in inches
//   - img2pdf: raster, 300 DPI source hint and page size in millimeters
//   - magick / convert: raster, forced resize to 300 DPI pixel dimensions
//
// Command-line engines are built from a [Definition] and run through a
// [command.Runner]; see [Builtin] and [NewCommandEngine].
//
// # Chain
//
// [Chain.Render] tries each engine for the job's kind in order and stops at
// the first one that exits successfully and leaves a non-empty file at the
// job's output path. Every attempt is recorded:
//
//   - not installed: the program is missing, the chain moves on quietly
//   - rejected: the program ran and failed (or wrote nothing); its error
//     output is kept verbatim and the chain moves on
//   - succeeded: the chain stops
//
// When every engine fails, [ExhaustedError] carries the whole attempt log
// plus install hints for the engines that were missing, so an operator can
// tell "install something" apart from "fix the input".
//
// [units.Media]: github.com/matzehuels/labelprint/pkg/units.Media
// [command.Runner]: github.com/matzehuels/labelprint/pkg/command.Runner
package render
