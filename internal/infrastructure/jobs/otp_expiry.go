package jobs

import (
	"context"
	"time"

	"custodial-wallet.backend/pkg/logger"
	"go.uber.org/zap"
)

// ChallengeSweeper clears OTP challenges that expired before a cutoff.
type ChallengeSweeper interface {
	ClearExpiredChallenges(ctx context.Context, before time.Time) (int64, error)
}

type expiryRecorder interface {
	ChallengesExpired(n int64)
}

// OTPExpiryJob periodically clears stale OTPs from the wallets table.
type OTPExpiryJob struct {
	repo     ChallengeSweeper
	metrics  expiryRecorder
	interval time.Duration
	now      func() time.Time
	stop     chan struct{}
}

func NewOTPExpiryJob(repo ChallengeSweeper, metrics expiryRecorder, interval time.Duration) *OTPExpiryJob {
	return &OTPExpiryJob{
		repo:     repo,
		metrics:  metrics,
		interval: interval,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

// Start blocks until ctx is cancelled or Stop is called.
func (j *OTPExpiryJob) Start(ctx context.Context) {
	logger.Info(ctx, "Starting OTP expiry job", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(context.Background(), "OTP expiry job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "OTP expiry job stopped")
			return
		case <-ticker.C:
			j.clearExpired(ctx)
		}
	}
}

func (j *OTPExpiryJob) Stop() {
	close(j.stop)
}

func (j *OTPExpiryJob) clearExpired(ctx context.Context) {
	n, err := j.repo.ClearExpiredChallenges(ctx, j.now())
	if err != nil {
		logger.Error(ctx, "Failed to clear expired OTP challenges", zap.Error(err))
		return
	}
	if n == 0 {
		return
	}

	j.metrics.ChallengesExpired(n)
	logger.Info(ctx, "Cleared expired OTP challenges", zap.Int64("count", n))
}
