package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lending-engine/internal/domain/offer"
	"lending-engine/internal/infrastructure/monitoring"
)

const sweepPageSize = 200

// OfferIntegrityJob walks every stored offer and recomputes its monthly
// payment from the three loan inputs. Rows written through the API are
// always consistent, but out-of-band writes (migrations, manual fixes) can
// leave a stale payment behind; the sweep repairs those.
type OfferIntegrityJob struct {
	offerRepo offer.Repository
	logger    *slog.Logger
}

func NewOfferIntegrityJob(offerRepo offer.Repository, logger *slog.Logger) *OfferIntegrityJob {
	if offerRepo == nil || logger == nil {
		panic("OfferIntegrityJob dependencies cannot be nil")
	}
	return &OfferIntegrityJob{
		offerRepo: offerRepo,
		logger:    logger.With("job", "OfferIntegrity"),
	}
}

func (j *OfferIntegrityJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting loan offer integrity sweep.")

	var scanned, repaired, errorCount int

	for pageOffset := 0; ; pageOffset += sweepPageSize {
		if err := ctx.Err(); err != nil {
			j.logger.WarnContext(ctx, "Sweep cancelled before completion.", slog.Any("error", err))
			return fmt.Errorf("sweep cancelled: %w", err)
		}

		page, err := j.offerRepo.ListPage(ctx, sweepPageSize, pageOffset)
		if err != nil {
			j.logger.ErrorContext(ctx, "Failed to fetch offer page, aborting sweep.", slog.Any("error", err))
			return fmt.Errorf("cannot run sweep, failed to fetch offer page: %w", err)
		}
		if len(page) == 0 {
			break
		}

		for _, o := range page {
			scanned++
			logCtx := j.logger.With(slog.String("offerID", o.ID.String()))

			expected := offer.MonthlyPayment(o.LoanAmount, o.InterestRate, o.LoanTerm)
			if expected.Equal(o.MonthlyPayment) {
				continue
			}

			logCtx.WarnContext(ctx, "Stored monthly payment drifted from loan inputs, repairing.",
				slog.String("stored", o.MonthlyPayment.StringFixed(2)),
				slog.String("expected", expected.StringFixed(2)))

			if updateErr := j.offerRepo.UpdateMonthlyPayment(ctx, o.ID, expected); updateErr != nil {
				logCtx.ErrorContext(ctx, "Failed to repair monthly payment", slog.Any("error", updateErr))
				errorCount++
				continue
			}
			monitoring.RecordPaymentRecomputation("sweep")
			monitoring.RecordIntegrityRepair()
			repaired++
		}

		if len(page) < sweepPageSize {
			break
		}
	}

	summaryLog := j.logger.With(
		slog.Duration("duration", time.Since(startTime)),
		slog.Int("offers_scanned", scanned),
		slog.Int("offers_repaired", repaired),
		slog.Int("errors_encountered", errorCount),
	)
	if errorCount > 0 {
		summaryLog.WarnContext(ctx, "Loan offer integrity sweep finished with errors.")
		return fmt.Errorf("sweep completed with %d errors", errorCount)
	}
	summaryLog.InfoContext(ctx, "Loan offer integrity sweep finished successfully.")
	return nil
}
