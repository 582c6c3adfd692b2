package scheduler

import (
	"context"

	"go.uber.org/zap"
)

const leaderLockKey = "atrium:scheduler:leader"

// acquireLeaderLock takes a Redis lease so only one replica runs jobs per
// tick. Without a locker the scheduler runs unconditionally.
func (s *Scheduler) acquireLeaderLock(ctx context.Context) (release func(), owner bool, err error) {
	noop := func() {}
	if s.locker == nil {
		return noop, true, nil
	}

	token, ok, err := s.locker.TryLock(ctx, leaderLockKey, s.cfg.LeaderLockTTL)
	if err != nil {
		// Redis being down should not stop jobs on a single-node deploy.
		return noop, true, err
	}
	if !ok {
		s.log.Debug("scheduler tick skipped, another replica holds the leader lock")
		return noop, false, nil
	}

	return func() {
		if err := s.locker.Release(context.Background(), leaderLockKey, token); err != nil {
			s.log.Warn("leader lock release failed", zap.Error(err))
		}
	}, true, nil
}
