/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package subsync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/wacul/ptr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/blnkfinance/subsync/database"
	"github.com/blnkfinance/subsync/internal/apierror"
	redlock "github.com/blnkfinance/subsync/internal/lock"
	"github.com/blnkfinance/subsync/internal/notification"
	"github.com/blnkfinance/subsync/internal/tokens"
	"github.com/blnkfinance/subsync/model"
)

// RunLockKey is the Redis key held for the duration of a pass.
const RunLockKey = "subsync:run-lock"

// RunOptions controls a single reconciliation pass.
type RunOptions struct {
	// DryRun fetches, classifies and resolves but never calls the sink or writes the ledger.
	DryRun bool
}

// reconciler carries the state of one pass.
type reconciler struct {
	datasource database.IDataSource
	fetcher    *PaginatedFetcher
	resolver   *SubscriberStatusResolver
	publisher  *SinkPublisher
	run        *model.SyncRun
	dryRun     bool
	onPage     func(ctx context.Context) error
}

// Run performs one full reconciliation pass: every page of the source is fetched and each
// subscription record is reconciled against the ledger before the next page is requested.
//
// The returned run describes the outcome. The error is non-nil only when the pass aborted:
// a fatal fetch, an exhausted token pool, a held run lock, or a ledger failure.
func (s *Subsync) Run(ctx context.Context, opts RunOptions) (*model.SyncRun, error) {
	run := &model.SyncRun{
		RunID:     uuid.New().String(),
		Status:    model.RunStarted,
		IsDryRun:  opts.DryRun,
		StartedAt: time.Now().UTC(),
	}

	ctx, span := otel.Tracer("subsync.sync").Start(ctx, "Run", trace.WithAttributes(
		attribute.String("run.id", run.RunID),
		attribute.Bool("run.dry_run", opts.DryRun),
	))
	defer span.End()
	logger := logrus.WithFields(logrus.Fields{"run_id": run.RunID, "dry_run": opts.DryRun})

	locker, err := s.acquireRunLock(ctx, run.RunID)
	if err != nil {
		span.RecordError(err)
		logger.WithError(err).Error("could not acquire run lock")
		return nil, err
	}
	if locker != nil {
		defer func() {
			if err := locker.Unlock(context.Background()); err != nil {
				logger.WithError(err).Warn("failed to release run lock")
			}
		}()
	}

	if err := s.datasource.RecordSyncRun(ctx, run); err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "recording sync run")
	}
	rotator := tokens.NewRotator(s.config.Source.AccessTokens)
	logger.WithField("token_pool", rotator.Size()).Info("sync pass started")
	r := &reconciler{
		datasource: s.datasource,
		fetcher:    NewPaginatedFetcher(s.source, rotator),
		resolver:   NewSubscriberStatusResolver(s.source, rotator, s.location),
		publisher:  NewSinkPublisher(s.sink, s.config.Sink, s.location),
		run:        run,
		dryRun:     opts.DryRun,
	}
	if locker != nil {
		ttl := s.lockTTL()
		r.onPage = func(ctx context.Context) error {
			return locker.Extend(ctx, ttl)
		}
	}

	passErr := r.pass(ctx)
	if passErr != nil {
		span.RecordError(passErr)
	}
	s.finishRun(ctx, run, passErr)
	return run, passErr
}

func (s *Subsync) lockTTL() time.Duration {
	if s.config.Redis.LockTTLSec <= 0 {
		return time.Hour
	}
	return time.Duration(s.config.Redis.LockTTLSec) * time.Second
}

func (s *Subsync) acquireRunLock(ctx context.Context, runID string) (*redlock.Locker, error) {
	if s.redis == nil {
		return nil, nil
	}
	locker := redlock.NewLocker(s.redis, RunLockKey, runID)
	if err := locker.Lock(ctx, s.lockTTL()); err != nil {
		return nil, errors.Wrap(err, "another sync pass is running")
	}
	return locker, nil
}

// finishRun stores the final status of the run. Aborted passes are reported through the
// notification channel.
func (s *Subsync) finishRun(ctx context.Context, run *model.SyncRun, passErr error) {
	logger := logrus.WithFields(logrus.Fields{
		"run_id":        run.RunID,
		"pages":         run.Pages,
		"records_seen":  run.RecordsSeen,
		"created":       run.Created,
		"churned":       run.Churned,
		"skipped":       run.Skipped,
		"sink_failures": run.SinkFailures,
	})

	switch {
	case passErr == nil:
		run.Status = model.RunCompleted
	case errors.Is(passErr, tokens.ErrTokensExhausted):
		run.Status = model.RunExhausted
		run.Error = passErr.Error()
	default:
		run.Status = model.RunFailed
		run.Error = passErr.Error()
	}
	run.CompletedAt = ptr.Time(time.Now().UTC())

	// the pass context may already be cancelled
	if err := s.datasource.UpdateSyncRun(context.WithoutCancel(ctx), run); err != nil {
		logger.WithError(err).Error("failed to update sync run")
	}

	if passErr != nil {
		logger.WithError(passErr).Error("sync pass aborted")
		notification.NotifyError(errors.Wrapf(passErr, "sync run %s aborted", run.RunID))
		return
	}
	logger.Info("sync pass completed")
}

// pass walks every page. Records of a page are handled before the next page is fetched.
func (r *reconciler) pass(ctx context.Context) error {
	for r.fetcher.HasNext() {
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := r.fetcher.Next(ctx)
		if err != nil {
			return err
		}
		r.run.Pages++

		for _, record := range page.Sales {
			if err := ctx.Err(); err != nil {
				return err
			}
			r.run.RecordsSeen++
			if err := r.reconcile(ctx, record); err != nil {
				return err
			}
		}

		if r.onPage != nil && r.fetcher.HasNext() {
			if err := r.onPage(ctx); err != nil {
				return errors.Wrap(err, "extending run lock")
			}
		}
	}
	return nil
}

// reconcile applies the ledger state machine to one record. Only errors that must abort
// the pass are returned; everything else is logged and counted.
func (r *reconciler) reconcile(ctx context.Context, record model.SaleRecord) error {
	if !record.IsSubscription() {
		return nil
	}

	ctx, span := otel.Tracer("subsync.sync").Start(ctx, "Reconcile",
		trace.WithAttributes(attribute.String("subscription.id", record.SubscriptionID)))
	defer span.End()

	churnType := Classify(record)
	logger := logrus.WithFields(logrus.Fields{
		"run_id":          r.run.RunID,
		"sale_id":         record.ID,
		"subscription_id": record.SubscriptionID,
		"churn_type":      churnType,
	})

	entry, err := r.datasource.GetLedgerEntry(ctx, record.SubscriptionID)
	if err != nil && !apierror.IsCode(err, apierror.ErrNotFound) {
		span.RecordError(err)
		return errors.Wrapf(err, "looking up ledger entry %s", record.SubscriptionID)
	}

	switch {
	case entry == nil:
		return r.forward(ctx, logger, record, churnType)
	case !entry.Cancelled && churnType.IsChurn():
		return r.churn(ctx, logger, record, churnType)
	default:
		logger.Debug("ledger up to date, nothing to do")
		return nil
	}
}

// forward sends a record the ledger has never seen. A churned record is cancelled right
// after creation and stored as cancelled only if the churn call succeeded.
func (r *reconciler) forward(ctx context.Context, logger *logrus.Entry, record model.SaleRecord, churnType model.ChurnType) error {
	if err := record.Validate(); err != nil {
		logger.WithError(err).Warn("sale record is incomplete, skipping")
		r.run.Skipped++
		return nil
	}

	var effective int64
	if churnType.IsChurn() {
		ts, ok, err := r.resolve(ctx, logger, record)
		if !ok {
			return err
		}
		effective = ts
	}

	if r.dryRun {
		logger.WithField("effective_date", effective).Info("dry run: would create subscription")
		r.run.Created++
		if churnType.IsChurn() {
			r.run.Churned++
		}
		return nil
	}

	result, err := r.publisher.Create(ctx, record)
	if err != nil {
		logger.WithError(err).WithField("status_code", result.StatusCode).Error("failed to create subscription in sink")
		r.run.SinkFailures++
		return nil
	}
	r.run.Created++
	logger.Info("subscription created in sink")

	cancelled := false
	if churnType.IsChurn() {
		cancelled = r.publishChurn(ctx, logger, record, effective, churnType)
	}

	if err := r.datasource.InsertLedgerEntry(ctx, record.SubscriptionID, cancelled); err != nil {
		return errors.Wrapf(err, "inserting ledger entry %s", record.SubscriptionID)
	}
	return nil
}

// churn handles a forwarded subscription that the source now reports as churned.
func (r *reconciler) churn(ctx context.Context, logger *logrus.Entry, record model.SaleRecord, churnType model.ChurnType) error {
	effective, ok, err := r.resolve(ctx, logger, record)
	if !ok {
		return err
	}

	if r.dryRun {
		logger.WithField("effective_date", effective).Info("dry run: would churn subscription")
		r.run.Churned++
		return nil
	}

	if !r.publishChurn(ctx, logger, record, effective, churnType) {
		return nil
	}

	if err := r.datasource.UpdateLedgerCancelled(ctx, record.SubscriptionID, true); err != nil {
		return errors.Wrapf(err, "updating ledger entry %s", record.SubscriptionID)
	}
	return nil
}

// resolve looks up the effective churn date. ok is false when the record must be skipped;
// err is then set only if the whole pass has to stop.
func (r *reconciler) resolve(ctx context.Context, logger *logrus.Entry, record model.SaleRecord) (int64, bool, error) {
	effective, err := r.resolver.Resolve(ctx, record.SubscriptionID)
	if err == nil {
		return effective, true, nil
	}

	r.run.Skipped++
	if errors.Is(err, tokens.ErrTokensExhausted) {
		return 0, false, err
	}
	logger.WithError(err).Warn("effective date unavailable, record left for a later run")
	return 0, false, nil
}

func (r *reconciler) publishChurn(ctx context.Context, logger *logrus.Entry, record model.SaleRecord, effective int64, churnType model.ChurnType) bool {
	result, err := r.publisher.Churn(ctx, r.publisher.Alias(record), effective, churnType)
	if err != nil {
		logger.WithError(err).WithField("status_code", result.StatusCode).Error("failed to churn subscription in sink")
		r.run.SinkFailures++
		return false
	}
	r.run.Churned++
	return true
}
