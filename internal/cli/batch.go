package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	errs "github.com/matzehuels/labelprint/pkg/errors"
	"github.com/matzehuels/labelprint/pkg/label"
	"github.com/matzehuels/labelprint/pkg/pipeline"
)

const defaultBatchJobs = 2

// batchFile is the TOML layout of a batch:
//
//	[[label]]
//	html_file = "shipping.html"
//	width_mm = 62
//	height_mm = 100
//	printer_name = "BrotherQL"
type batchFile struct {
	Labels []batchEntry `toml:"label"`
}

// batchEntry is a label request whose content may come from a file
// relative to the batch file.
type batchEntry struct {
	label.Request
	HTMLFile  string `toml:"html_file"`
	ImageFile string `toml:"image_file"`
}

// batchOutcome is the result of one entry.
type batchOutcome struct {
	index  int
	result *pipeline.Result
	err    error
}

// generator is the part of the runner a batch needs.
type generator interface {
	Generate(ctx context.Context, spec label.Spec) (*pipeline.Result, error)
}

func (c *CLI) batchCommand() *cobra.Command {
	jobs := defaultBatchJobs

	cmd := &cobra.Command{
		Use:   "batch FILE.toml",
		Short: "Render and dispatch every [[label]] in a TOML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			specs, err := loadBatch(args[0])
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cfg)
			if err != nil {
				return err
			}
			return runBatch(cmd.Context(), runner, specs, jobs)
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", jobs, "labels processed concurrently")
	return cmd
}

// loadBatch parses path and validates every entry before anything runs.
func loadBatch(path string) ([]label.Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read batch file")
	}
	var bf batchFile
	if _, err := toml.Decode(string(data), &bf); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "parse %s", path)
	}
	if len(bf.Labels) == 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "%s has no [[label]] entries", path)
	}

	base := filepath.Dir(path)
	specs := make([]label.Spec, len(bf.Labels))
	for i, e := range bf.Labels {
		req, err := e.resolve(base)
		if err != nil {
			return nil, fmt.Errorf("label %d: %w", i+1, err)
		}
		if specs[i], err = req.Spec(); err != nil {
			return nil, fmt.Errorf("label %d: %w", i+1, err)
		}
	}
	return specs, nil
}

func (e batchEntry) resolve(base string) (label.Request, error) {
	req := e.Request
	if e.HTMLFile != "" {
		data, err := os.ReadFile(joinRel(base, e.HTMLFile))
		if err != nil {
			return req, errs.Wrap(errs.ErrCodeInvalidInput, err, "read html_file")
		}
		req.HTML = string(data)
	}
	if e.ImageFile != "" {
		data, err := os.ReadFile(joinRel(base, e.ImageFile))
		if err != nil {
			return req, errs.Wrap(errs.ErrCodeInvalidInput, err, "read image_file")
		}
		req.Image = base64.StdEncoding.EncodeToString(data)
	}
	return req, nil
}

func joinRel(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// runBatch runs specs with at most jobs in flight. One failing label does
// not stop the others.
func runBatch(ctx context.Context, gen generator, specs []label.Spec, jobs int) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	outcomes := make([]batchOutcome, len(specs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))
	for i, spec := range specs {
		g.Go(func() error {
			res, err := gen.Generate(gctx, spec)
			outcomes[i] = batchOutcome{index: i, result: res, err: err}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, o := range outcomes {
		if o.err != nil {
			failed++
			printError("label %d: %s", o.index+1, errs.UserMessage(o.err))
			continue
		}
		printSuccess("label %d: %s", o.index+1, o.result.Message)
		printFile(o.result.PDFPath)
	}
	prog.done("batch complete", "labels", len(specs), "failed", failed)

	if failed > 0 {
		return fmt.Errorf("%d of %d labels failed", failed, len(specs))
	}
	return nil
}
