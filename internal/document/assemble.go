// Package document turns a session snapshot into the client instructions
// PDF.
package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"planning-bee/internal/model"
)

var (
	ErrMissingSnapshot   = errors.New("snapshot is missing")
	ErrMalformedSnapshot = errors.New("snapshot is malformed")
)

type Options struct {
	Geometry Geometry
	Compress bool
	// Concurrency bounds simultaneous image downloads.
	Concurrency int
	Title       string
}

// Result is the rendered document and where each element landed.
type Result struct {
	PDF        []byte
	Pages      int
	Placements []Placement
}

type Assembler struct {
	fetcher Fetcher
	opts    Options
	logger  *zap.Logger
}

// New returns an Assembler. A nil fetcher disables URL images; they are
// rendered as placeholders.
func New(fetcher Fetcher, opts Options, logger *zap.Logger) *Assembler {
	if opts.Geometry == (Geometry{}) {
		opts.Geometry = A4
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 4
	}
	if opts.Title == "" {
		opts.Title = "Client instructions"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{fetcher: fetcher, opts: opts, logger: logger}
}

// Assemble renders the snapshot raw. An empty or null snapshot fails with
// ErrMissingSnapshot and one that is not a JSON object of sections with
// ErrMalformedSnapshot; nothing is rendered in either case.
func (a *Assembler) Assemble(ctx context.Context, raw []byte) (*Result, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, ErrMissingSnapshot
	}
	if raw[0] != '{' || !json.Valid(raw) {
		return nil, ErrMalformedSnapshot
	}
	in, err := model.DecodeIntake(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	return a.AssembleIntake(ctx, in)
}

// AssembleIntake renders an already decoded snapshot.
func (a *Assembler) AssembleIntake(ctx context.Context, in *model.Intake) (*Result, error) {
	if in == nil {
		return nil, ErrMissingSnapshot
	}
	start := time.Now()

	els := Elements(in)
	pictures := loadPictures(ctx, els, a.fetcher, a.opts.Concurrency, a.logger)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := newRenderer(a.opts, pictures, a.logger)
	r.render(els)

	var buf bytes.Buffer
	if err := r.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}

	res := &Result{
		PDF:        buf.Bytes(),
		Pages:      r.layout.Page(),
		Placements: r.layout.Placements(),
	}
	a.logger.Info("document assembled",
		zap.Int("elements", len(els)),
		zap.Int("pages", res.Pages),
		zap.Int("bytes", len(res.PDF)),
		zap.Duration("took", time.Since(start)))
	return res, nil
}
