// Package materialize writes label content to a temporary input file that
// renderer engines can read.
//
// Markup is written verbatim with an ".html" suffix. Raster payloads are
// stripped of an optional data URI prefix, base64-decoded and sniffed so
// the file gets the extension of its real image type. Decoding failures
// are validation errors: they happen before any engine is launched.
package materialize

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"  // register GIF for DecodeConfig
	_ "image/jpeg" // register JPEG for DecodeConfig
	_ "image/png"  // register PNG for DecodeConfig
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"  // register BMP for DecodeConfig
	_ "golang.org/x/image/tiff" // register TIFF for DecodeConfig
	_ "golang.org/x/image/webp" // register WebP for DecodeConfig

	"github.com/matzehuels/labelprint/pkg/errors"
	"github.com/matzehuels/labelprint/pkg/label"
)

const (
	// filePattern is the os.CreateTemp pattern; "*" is replaced by a random string.
	filePattern = "label-*"

	markupExt = ".html"
)

// Input is a materialized label owned by one invocation.
type Input struct {
	Path string
	Kind label.Kind
	Ext  string

	// PixelWidth and PixelHeight are set for raster formats Go can decode.
	PixelWidth  int
	PixelHeight int
}

// Remove deletes the input file. A missing file is not an error.
func (in *Input) Remove() error {
	if in == nil || in.Path == "" {
		return nil
	}
	if err := os.Remove(in.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Materializer creates input files in Dir (os.TempDir() when empty).
type Materializer struct {
	Dir string
}

// Materialize writes content to a freshly created temporary file.
func (m Materializer) Materialize(content label.Content) (*Input, error) {
	switch c := content.(type) {
	case label.Markup:
		path, err := m.write(markupExt, []byte(c.Text))
		if err != nil {
			return nil, err
		}
		return &Input{Path: path, Kind: label.KindMarkup, Ext: markupExt}, nil

	case label.Raster:
		data, err := Decode(c)
		if err != nil {
			return nil, err
		}
		mtype := mimetype.Detect(data)
		if !strings.HasPrefix(mtype.String(), "image/") {
			return nil, errors.New(errors.ErrCodeInvalidEncoding, "decoded payload is %s, not an image", mtype.String())
		}
		in := &Input{Kind: label.KindRaster, Ext: mtype.Extension()}
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			in.PixelWidth, in.PixelHeight = cfg.Width, cfg.Height
		}
		if in.Path, err = m.write(in.Ext, data); err != nil {
			return nil, err
		}
		return in, nil

	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unsupported content type %T", content)
	}
}

func (m Materializer) write(ext string, data []byte) (string, error) {
	dir := m.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	f, err := os.CreateTemp(dir, filePattern+ext)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "create temp input file")
	}
	path := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", errors.Wrap(errors.ErrCodeInternal, err, "write temp input file")
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", errors.Wrap(errors.ErrCodeInternal, err, "close temp input file")
	}
	return path, nil
}

// StripDataURI removes a "data:[<mime>][;base64]," prefix. Payloads
// without the "data:" scheme are returned unchanged.
func StripDataURI(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(strings.ToLower(s), "data:") {
		return s, nil
	}
	i := strings.IndexByte(s, ',')
	if i < 0 {
		return "", errors.New(errors.ErrCodeInvalidEncoding, "data URI has no ',' separator")
	}
	return s[i+1:], nil
}

// Decode strips the data URI prefix from r and decodes the payload.
func Decode(r label.Raster) ([]byte, error) {
	if r.Encoding != label.EncodingBase64 {
		return nil, errors.New(errors.ErrCodeInvalidEncoding, "unsupported image encoding %q", r.Encoding)
	}
	payload, err := StripDataURI(r.Data)
	if err != nil {
		return nil, err
	}
	payload = strings.Map(func(c rune) rune {
		switch c {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return c
	}, payload)

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Some encoders drop the padding.
		var rawErr error
		if data, rawErr = base64.RawStdEncoding.DecodeString(payload); rawErr != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidEncoding, err, "invalid base64 image data")
		}
	}
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidEncoding, "image data is empty")
	}
	return data, nil
}

// String describes the input for logs.
func (in *Input) String() string {
	if in.PixelWidth > 0 {
		return fmt.Sprintf("%s (%s, %dx%dpx)", in.Path, in.Kind, in.PixelWidth, in.PixelHeight)
	}
	return fmt.Sprintf("%s (%s)", in.Path, in.Kind)
}
