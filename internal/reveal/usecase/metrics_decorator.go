package usecase

import (
	"context"
	"strings"
	"time"

	auditDomain "github.com/allisson/sealbox/internal/audit/domain"
	"github.com/allisson/sealbox/internal/metrics"
	revealDomain "github.com/allisson/sealbox/internal/reveal/domain"
)

// revealUseCaseWithMetrics decorates RevealUseCase with metrics instrumentation. Refusals are
// labeled with their lowercase code so lockouts and tamper detections can be alerted on.
type revealUseCaseWithMetrics struct {
	next    RevealUseCase
	metrics metrics.BusinessMetrics
}

// NewRevealUseCaseWithMetrics wraps a RevealUseCase with metrics recording.
func NewRevealUseCaseWithMetrics(useCase RevealUseCase, m metrics.BusinessMetrics) RevealUseCase {
	return &revealUseCaseWithMetrics{next: useCase, metrics: m}
}

func (r *revealUseCaseWithMetrics) record(ctx context.Context, op string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
		if code := revealDomain.CodeOf(err); code != "" {
			status = strings.ToLower(string(code))
		}
	}
	r.metrics.RecordOperation(ctx, "reveal", op, status)
	r.metrics.RecordDuration(ctx, "reveal", op, time.Since(start), status)
}

func (r *revealUseCaseWithMetrics) Request(
	ctx context.Context,
	req *revealDomain.RevealRequest,
) (*revealDomain.Grant, error) {
	start := time.Now()
	grant, err := r.next.Request(ctx, req)
	r.record(ctx, "request", start, err)
	return grant, err
}

func (r *revealUseCaseWithMetrics) Redeem(
	ctx context.Context,
	actor auditDomain.Actor,
	plainToken string,
) (*revealDomain.Payload, error) {
	start := time.Now()
	payload, err := r.next.Redeem(ctx, actor, plainToken)
	r.record(ctx, "redeem", start, err)
	return payload, err
}

func (r *revealUseCaseWithMetrics) CleanExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	start := time.Now()
	count, err := r.next.CleanExpired(ctx, olderThan)
	r.record(ctx, "clean_expired", start, err)
	return count, err
}
