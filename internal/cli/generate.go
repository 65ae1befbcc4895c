package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/labelprint/pkg/config"
	errs "github.com/matzehuels/labelprint/pkg/errors"
	"github.com/matzehuels/labelprint/pkg/label"
	"github.com/matzehuels/labelprint/pkg/pipeline"
)

// stdinPath selects standard input for --html and --image.
const stdinPath = "-"

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	htmlFile  string  // markup source file, or "-"
	imageFile string  // raster source file, or "-"
	width     float64 // label width in mm
	height    float64 // label height in mm
	printer   string  // print queue; empty means viewer or configured default
	pick      bool    // choose the queue interactively
	view      bool    // open in the viewer even if a default printer is configured
}

func (c *CLI) generateCommand() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render a label to PDF and print or view it",
		Example: `  labelprint generate --html label.html --width 62 --height 29 --printer BrotherQL
  labelprint generate --image label.png --width 62 --height 100
  cat label.html | labelprint generate --html - --width 100 --height 50 --pick`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd.Context(), cmd.InOrStdin(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.htmlFile, "html", "", "HTML label file (- for stdin)")
	cmd.Flags().StringVar(&opts.imageFile, "image", "", "image label file (- for stdin)")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "label width in mm")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "label height in mm")
	cmd.Flags().StringVarP(&opts.printer, "printer", "p", "", "print queue name")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "choose the print queue interactively")
	cmd.Flags().BoolVar(&opts.view, "view", false, "open the PDF instead of printing to the default printer")
	cmd.MarkFlagsMutuallyExclusive("html", "image")
	cmd.MarkFlagsMutuallyExclusive("printer", "pick", "view")
	cmd.MarkFlagsOneRequired("html", "image")
	_ = cmd.MarkFlagRequired("width")
	_ = cmd.MarkFlagRequired("height")

	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, stdin io.Reader, opts generateOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	req, err := buildRequest(opts, stdin)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(cfg)
	if err != nil {
		return err
	}

	req.PrinterName, err = resolvePrinter(ctx, opts, cfg, runner)
	if err != nil {
		return err
	}
	spec, err := req.Spec()
	if err != nil {
		return err
	}

	logger.Debug("generating label", "size", spec.Size(), "destination", spec.Destination)
	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Rendering label...")
	spinner.Start()
	res, err := runner.Generate(ctx, spec)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done("label complete", "engine", res.Engine)

	printResult(res)
	return nil
}

// buildRequest reads the label source named by opts. Images are base64
// encoded so they travel through the same path as API requests.
func buildRequest(opts generateOpts, stdin io.Reader) (label.Request, error) {
	req := label.Request{WidthMM: opts.width, HeightMM: opts.height}
	switch {
	case opts.htmlFile != "" && opts.imageFile != "":
		return req, errs.New(errs.ErrCodeInvalidInput, "--html and --image are mutually exclusive")
	case opts.htmlFile != "":
		data, err := readSource(opts.htmlFile, stdin)
		if err != nil {
			return req, err
		}
		req.HTML = string(data)
	case opts.imageFile != "":
		data, err := readSource(opts.imageFile, stdin)
		if err != nil {
			return req, err
		}
		req.Image = base64.StdEncoding.EncodeToString(data)
	default:
		return req, errs.New(errs.ErrCodeInvalidInput, "one of --html or --image is required")
	}
	return req, nil
}

func readSource(path string, stdin io.Reader) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == stdinPath {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read %s", path)
	}
	return data, nil
}

// printerSource is the part of the runner used to pick a queue.
type printerSource interface {
	Printers(ctx context.Context) ([]string, error)
	DefaultPrinter(ctx context.Context) (string, error)
}

// resolvePrinter picks the destination queue: --printer, then --pick, then
// the configured default unless --view was given. "" means the viewer.
func resolvePrinter(ctx context.Context, opts generateOpts, cfg config.Config, src printerSource) (string, error) {
	switch {
	case opts.printer != "":
		return opts.printer, nil
	case opts.pick:
		printers, err := src.Printers(ctx)
		if err != nil {
			return "", err
		}
		if len(printers) == 0 {
			return "", errs.New(errs.ErrCodePrintersUnavailable, "no printers are configured")
		}
		def, _ := src.DefaultPrinter(ctx)
		name, err := pickPrinter(printers, def, os.Stdin, os.Stderr)
		if err != nil {
			return "", fmt.Errorf("printer picker: %w", err)
		}
		if name == "" {
			return "", context.Canceled
		}
		return name, nil
	case opts.view:
		return "", nil
	default:
		return cfg.DefaultPrinter, nil
	}
}

func printResult(res *pipeline.Result) {
	if _, ok := res.Destination.(label.Printer); ok {
		printSuccess("%s", res.Message)
	} else {
		printSuccess("Opened label")
	}
	printAttempts(res.Attempts)
	printDetail("rendered by %s", res.Engine)
	printFile(res.PDFPath)
}
