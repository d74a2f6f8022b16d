package coordinator

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	domainerrors "github.com/nikbrunner/shelf/internal/errors"
	"github.com/nikbrunner/shelf/internal/logger"
	"github.com/nikbrunner/shelf/internal/model"
)

// ItemFailure is the outcome of one id that could not be processed.
type ItemFailure struct {
	ID  string
	Err error
}

// BulkResult reports a bulk operation per id. Both lists follow the order
// of the requested ids.
type BulkResult struct {
	Succeeded  []string
	Failed     []ItemFailure
	RefreshErr error
}

// Err joins every item failure and the refresh error, or returns nil.
func (r BulkResult) Err() error {
	errs := make([]error, 0, len(r.Failed)+1)
	for _, f := range r.Failed {
		errs = append(errs, fmt.Errorf("%s: %w", f.ID, f.Err))
	}
	errs = append(errs, r.RefreshErr)
	return domainerrors.Join(errs...)
}

// FailedIDs lists the ids that failed.
func (r BulkResult) FailedIDs() []string {
	ids := make([]string, len(r.Failed))
	for i, f := range r.Failed {
		ids[i] = f.ID
	}
	return ids
}

// BulkDelete deletes ids concurrently, at most bulkLimit at a time. A
// failing id never stops its siblings. Afterwards the selection is cleared
// and the store refreshed once, whatever the individual outcomes.
func (c *Coordinator) BulkDelete(ctx context.Context, ids []string) BulkResult {
	ids = model.UniqueIDs(ids)
	if len(ids) == 0 {
		return BulkResult{}
	}
	start := time.Now()

	errs := make([]error, len(ids))
	var g errgroup.Group
	g.SetLimit(c.bulkLimit)
	for i, id := range ids {
		g.Go(func() error {
			if err := c.backend.DeleteBookmark(ctx, id); err != nil {
				errs[i] = domainerrors.AsTransport("delete bookmark", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	var result BulkResult
	for i, id := range ids {
		if errs[i] != nil {
			result.Failed = append(result.Failed, ItemFailure{ID: id, Err: errs[i]})
		} else {
			result.Succeeded = append(result.Succeeded, id)
		}
	}

	fields := []logger.Field{
		logger.Int("succeeded", len(result.Succeeded)),
		logger.Int("failed", len(result.Failed)),
		logger.Duration("took", time.Since(start)),
	}
	if len(result.Failed) > 0 {
		c.log.Warn("bulk delete finished with failures", append(fields, logger.Strings("failed_ids", result.FailedIDs()))...)
	} else {
		c.log.Info("bulk delete finished", fields...)
	}

	c.view.ClearSelection()
	_, result.RefreshErr = c.Refresh(ctx)
	return result
}
