// Package pipeline orchestrates a profile build: admission, extraction and generation.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/skillsync/profile-builder/internal/config"
	"github.com/skillsync/profile-builder/internal/ingestion"
	"github.com/skillsync/profile-builder/internal/parsing"
	"github.com/skillsync/profile-builder/internal/types"
	"github.com/skillsync/profile-builder/internal/validation"
)

// Upload is a resume file as received from the caller
type Upload struct {
	Data        []byte
	Filename    string
	ContentType string
	// Size is the client-declared size; when zero the length of Data is used
	Size int64
}

// Descriptor returns the declared metadata checked before the bytes are inspected
func (u *Upload) Descriptor() *validation.FileDescriptor {
	size := u.Size
	if size == 0 {
		size = int64(len(u.Data))
	}
	return &validation.FileDescriptor{
		Filename:    u.Filename,
		ContentType: u.ContentType,
		Size:        size,
	}
}

// Request carries exactly one of File and Text
type Request struct {
	File *Upload
	Text string
	// Progress, when set, receives this request's transitions after the builder-wide callback
	Progress ProgressCallback
}

// Result is a successful build
type Result struct {
	RequestID string
	Profile   *types.UserProfile
	// Anomalies lists the fields that were nulled, dropped or collapsed during coercion
	Anomalies []types.Anomaly
	Metadata  *ingestion.Metadata
}

// Option customizes a Builder
type Option func(*Builder)

// WithProgress registers a callback for state transitions
func WithProgress(cb ProgressCallback) Option {
	return func(b *Builder) { b.onProgress = cb }
}

// WithLogger sets the logger; the default discards everything
func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Builder runs build requests. It is safe for concurrent use; the only state
// shared between requests is read-only configuration and the worker pool.
type Builder struct {
	cfg        *config.Config
	extractor  *parsing.Extractor
	workers    *semaphore.Weighted
	logger     *zap.Logger
	onProgress ProgressCallback
}

// NewBuilder creates a Builder. Document parsing is limited to cfg.ExtractWorkers at a time.
func NewBuilder(cfg *config.Config, extractor *parsing.Extractor, opts ...Option) *Builder {
	workers := cfg.ExtractWorkers
	if workers <= 0 {
		workers = 1
	}
	b := &Builder{
		cfg:       cfg,
		extractor: extractor,
		workers:   semaphore.NewWeighted(int64(workers)),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Admit runs the admission checks for an upload without extracting anything:
// declared metadata first, then the bytes themselves.
func Admit(upload *Upload, cfg *config.Config) error {
	descriptor := upload.Descriptor()
	if err := validation.ValidateFile(descriptor, cfg); err != nil {
		return err
	}
	return validation.SniffContent(upload.Data, descriptor.Ext(), cfg)
}

// Build turns one request into a profile. Every failure is terminal and no
// partial profile is returned with an error.
func (b *Builder) Build(ctx context.Context, req Request) (*Result, error) {
	r := &run{
		id:       uuid.NewString(),
		state:    StateIdle,
		builder:  b,
		progress: req.Progress,
	}
	r.logger = b.logger.With(zap.String("request_id", r.id))
	started := time.Now()

	result, err := r.execute(ctx, req)
	if err != nil {
		outcome := Classify(err)
		r.fail(outcome.Kind)
		r.logger.Warn("profile build failed",
			zap.String("kind", string(outcome.Kind)),
			zap.Int("status", outcome.Status),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err))
		return nil, &BuildError{RequestID: r.id, Outcome: outcome, Err: err}
	}

	r.logger.Info("profile build completed",
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("anomalies", len(result.Anomalies)),
		zap.String("format", string(result.Metadata.Format)))
	return result, nil
}

// run tracks the state of a single request
type run struct {
	id       string
	state    State
	builder  *Builder
	progress ProgressCallback
	logger   *zap.Logger
}

func (r *run) execute(ctx context.Context, req Request) (*Result, error) {
	b := r.builder

	in := validation.Input{Text: req.Text}
	if req.File != nil {
		in.File = req.File.Descriptor()
	}
	// nothing to validate: fail straight from idle
	if err := validation.RequirePresence(in); err != nil {
		return nil, err
	}

	if err := r.advance(StateValidating); err != nil {
		return nil, err
	}
	if err := validation.ValidateInput(in, b.cfg); err != nil {
		return nil, err
	}
	var text string
	if req.File != nil {
		if err := validation.SniffContent(req.File.Data, in.File.Ext(), b.cfg); err != nil {
			return nil, err
		}
	} else {
		prepared, err := ingestion.PrepareText(req.Text)
		if err != nil {
			return nil, err
		}
		if prepared == "" {
			return nil, &validation.ValidationError{
				Reason:  validation.ReasonMissingInput,
				Message: "profile text has no readable characters",
			}
		}
		text = prepared
	}

	if err := r.advance(StateExtracting); err != nil {
		return nil, err
	}
	var metadata *ingestion.Metadata
	if req.File != nil {
		extraction, err := b.extract(ctx, req.File.Data, in.File.Ext())
		if err != nil {
			return nil, err
		}
		text = extraction.Text
		metadata = ingestion.NewMetadata(extraction, req.File.Filename, len(req.File.Data))
		r.logger.Debug("document extracted",
			zap.String("format", string(extraction.Format)),
			zap.Int("units", extraction.Units),
			zap.String("hash", metadata.Hash))
	} else {
		metadata = ingestion.NewTextMetadata(text)
	}

	if err := r.advance(StateGenerating); err != nil {
		return nil, err
	}
	extractor := b.extractor.WithObserver(parsing.NewLogObserver(r.logger))
	profile, anomalies, err := extractor.ParseUserProfile(ctx, text)
	if err != nil {
		return nil, err
	}
	for _, a := range anomalies {
		r.logger.Debug("profile field coerced", zap.String("field", a.Field), zap.String("detail", a.Message))
	}

	if err := r.advance(StateDone); err != nil {
		return nil, err
	}
	return &Result{
		RequestID: r.id,
		Profile:   profile,
		Anomalies: anomalies,
		Metadata:  metadata,
	}, nil
}

func (r *run) advance(to State) error {
	if !CanTransition(r.state, to) {
		return &TransitionError{From: r.state, To: to}
	}
	r.emit(to, "")
	return nil
}

func (r *run) fail(kind ErrorKind) {
	if r.state.IsTerminal() {
		return
	}
	r.emit(StateFailed, kind)
}

func (r *run) emit(to State, kind ErrorKind) {
	event := StateEvent{RequestID: r.id, From: r.state, To: to, Kind: kind, At: time.Now()}
	r.state = to
	if r.builder.onProgress != nil {
		r.builder.onProgress(event)
	}
	if r.progress != nil {
		r.progress(event)
	}
}

type extractResult struct {
	extraction *ingestion.Extraction
	err        error
}

// extract parses a document on the worker pool. Waiting for a worker and
// waiting for the result both give up when ctx is done.
func (b *Builder) extract(ctx context.Context, data []byte, ext string) (*ingestion.Extraction, error) {
	if err := b.workers.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("waiting for extraction worker: %w", err)
	}

	done := make(chan extractResult, 1)
	go func() {
		defer b.workers.Release(1)
		extraction, err := ingestion.ExtractText(data, ext)
		done <- extractResult{extraction: extraction, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("extraction abandoned: %w", ctx.Err())
	case res := <-done:
		return res.extraction, res.err
	}
}
