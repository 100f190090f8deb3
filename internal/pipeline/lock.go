package pipeline

import (
	"log/slog"

	"github.com/gofrs/flock"

	"multiscan/internal/logging"
)

// acquireWorkspaceLock takes an advisory lock on path. Two runs against the
// same workspace are a documented precondition violation, not an error: when
// the lock is held elsewhere the run logs a warning and continues. The
// returned func releases whatever was acquired.
func acquireWorkspaceLock(logger *slog.Logger, path string) func() {
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		logging.WarnWithContext(logger, "workspace lock unavailable", "workspace_lock_failed",
			logging.String("lock", path),
			logging.Error(err),
		)
		return func() {}
	}
	if !ok {
		logging.WarnWithContext(logger, "workspace already in use by another run", "workspace_locked",
			logging.String("lock", path),
			logging.String(logging.FieldImpact, "concurrent runs may overwrite each other's outputs"),
			logging.String(logging.FieldErrorHint, "run one scan per workspace at a time"),
		)
		return func() {}
	}
	logger.Debug("workspace lock acquired", logging.String("lock", path))
	return func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release workspace lock",
				logging.String("lock", path),
				logging.Error(err),
			)
		}
	}
}
