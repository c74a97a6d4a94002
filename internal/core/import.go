package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/cardex/internal/card"
	"github.com/JonMunkholm/cardex/internal/codec"
	"github.com/JonMunkholm/cardex/internal/logging"
)

// ImportFailure is a record that could not be stored. Record holds the values
// as the codec read them: cells trimmed, a parseable date rewritten as
// yyyy-MM-dd and an oversized photo already dropped.
type ImportFailure struct {
	Record card.Wire `json:"record"`
	Reason string    `json:"reason"`
	Code   string    `json:"code"`
}

// ImportResult is the outcome of an import. Both lists follow input order.
type ImportResult struct {
	Successes []uuid.UUID     `json:"successes"`
	Failures  []ImportFailure `json:"failures"`
}

// Total returns the number of records processed.
func (r *ImportResult) Total() int {
	return len(r.Successes) + len(r.Failures)
}

// importOutcome is the result of one record: an id on success, else err.
// done is false for records never attempted.
type importOutcome struct {
	id   uuid.UUID
	err  error
	done bool
}

// Import parses an uploaded CSV or XML file and stores each valid record,
// creating or updating by email.
//
// File-level problems (empty, too large, unknown extension, unparseable
// content) fail the whole call. Record-level problems are collected into
// Failures and never abort the batch.
//
// Records are stored as they are processed, so a cancelled or timed out
// import can leave part of the file persisted. In that case the context
// error is returned together with a result listing what was stored.
func (s *Service) Import(ctx context.Context, up Upload) (result *ImportResult, err error) {
	ctx, span := s.startSpan(ctx, "cards.import",
		attribute.String("file.name", up.Name),
		attribute.Int64("file.bytes", up.Size()),
	)
	defer func() {
		if result != nil {
			span.SetAttributes(
				attribute.Int("records.succeeded", len(result.Successes)),
				attribute.Int("records.failed", len(result.Failures)),
			)
		}
		endSpan(span, err)
	}()

	if up.Size() == 0 {
		return nil, &card.Error{Kind: card.KindEmptyFile}
	}
	if up.Size() > s.opts.MaxFileSize {
		return nil, card.New(card.KindFileSizeExceeded, "%d bytes, limit %d", up.Size(), s.opts.MaxFileSize)
	}
	c, ok := codec.ForFile(up.Name)
	if !ok {
		return nil, card.New(card.KindUnsupportedFileFormat, "extension %q", filepath.Ext(up.Name))
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.opts.ImportTimeout)
	defer cancel()

	logger := logging.WithFields(ctx, "file", up.Name, "format", c.Format(), "bytes", up.Size())
	if ip := ClientIPFromContext(ctx); ip != "" {
		logger = logger.With("client_ip", ip)
	}
	start := time.Now()
	logger.Info("import started")

	records, err := c.Parse(ctx, up.Data)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		logger.Warn("import rejected", "error", err)
		return nil, &card.Error{Kind: card.KindUnsupportedFileFormat, Detail: c.Format(), Err: err}
	}

	outcomes, err := s.storeAll(ctx, records)
	result = collectOutcomes(records, outcomes)
	if err != nil {
		logger.Warn("import interrupted",
			"records", len(records),
			"succeeded", len(result.Successes),
			"error", err,
		)
		return result, fmt.Errorf("import %s: %w", up.Name, err)
	}

	importDuration.WithLabelValues(c.Format()).Observe(time.Since(start).Seconds())
	importRecords.WithLabelValues(c.Format(), "success").Add(float64(len(result.Successes)))
	importRecords.WithLabelValues(c.Format(), "failure").Add(float64(len(result.Failures)))
	logger.Info("import completed",
		"records", len(records),
		"succeeded", len(result.Successes),
		"failed", len(result.Failures),
		"duration", time.Since(start),
	)

	return result, nil
}

// collectOutcomes splits attempted records into successes and failures.
// Records cut short by cancellation are left out.
func collectOutcomes(records []card.Wire, outcomes []importOutcome) *ImportResult {
	result := &ImportResult{
		Successes: make([]uuid.UUID, 0, len(records)),
		Failures:  make([]ImportFailure, 0),
	}
	for i, o := range outcomes {
		switch {
		case !o.done:
		case o.err == nil:
			result.Successes = append(result.Successes, o.id)
		case errors.Is(o.err, context.Canceled), errors.Is(o.err, context.DeadlineExceeded):
		default:
			result.Failures = append(result.Failures, ImportFailure{
				Record: records[i],
				Reason: o.err.Error(),
				Code:   MapError(o.err).Code,
			})
		}
	}
	return result
}

// storeAll validates and stores records concurrently, keeping outcomes by
// index so the caller sees input order. On cancellation the outcomes gathered
// so far are returned with the context error.
func (s *Service) storeAll(ctx context.Context, records []card.Wire) ([]importOutcome, error) {
	outcomes := make([]importOutcome, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, rec := range records {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = s.storeOne(gctx, rec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	if err := ctx.Err(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

func (s *Service) storeOne(ctx context.Context, w card.Wire) importOutcome {
	if err := card.Validate(w); err != nil {
		return importOutcome{err: err, done: true}
	}
	c, err := w.Card()
	if err != nil {
		return importOutcome{err: err, done: true}
	}
	stored, err := s.repo.CreateOrUpdate(ctx, c)
	if err != nil {
		return importOutcome{err: err, done: true}
	}
	s.cacheSet(ctx, stored)
	return importOutcome{id: stored.ID, done: true}
}
