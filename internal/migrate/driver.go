package migrate

import (
	"fmt"
	"time"

	"github.com/juju/clock"
	"github.com/juju/retry"

	"github.com/fuglede/youtrack-to-azure-devops-boards/internal/apierror"
)

// Defaults for the project driver. Azure DevOps occasionally returns empty
// bodies during bulk migrations; those surface as decode errors and are
// worth waiting out.
const (
	DefaultIssueLimit    = 10000
	DefaultRetryAttempts = 8
	DefaultRetryDelay    = 3 * time.Second
	DefaultRetryMaxDelay = time.Minute
)

// Driver migrates every issue in a YouTrack project, in the order the
// service lists them. Each issue is attempted under a bounded backoff retry
// that fires only on decode errors; any other failure aborts the run, with
// issues after the current one left unmigrated.
type Driver struct {
	Migrator *Migrator

	// Limit bounds the single issue listing request; 0 means
	// DefaultIssueLimit. Set it at least as large as the project.
	Limit int

	// Retry shape per issue; zero values take the defaults above.
	Attempts int
	Delay    time.Duration
	MaxDelay time.Duration

	// Clock is used for retry waits; nil means clock.WallClock.
	Clock clock.Clock
}

// MigrateProject migrates all issues of a project. Progress is logged per
// issue; nothing is persisted, so an aborted run cannot be resumed.
func (d *Driver) MigrateProject(projectKey string) error {
	limit := d.Limit
	if limit <= 0 {
		limit = DefaultIssueLimit
	}
	attempts := d.Attempts
	if attempts <= 0 {
		attempts = DefaultRetryAttempts
	}
	delay := d.Delay
	if delay <= 0 {
		delay = DefaultRetryDelay
	}
	maxDelay := d.MaxDelay
	if maxDelay <= 0 {
		maxDelay = DefaultRetryMaxDelay
	}
	clk := d.Clock
	if clk == nil {
		clk = clock.WallClock
	}

	ids, err := d.Migrator.Source.ListIssueIDs(projectKey, limit)
	if err != nil {
		return fmt.Errorf("listing issues in %s: %w", projectKey, err)
	}
	logger.Infof("found %d issues in project %s", len(ids), projectKey)

	for i, id := range ids {
		logger.Infof("migrating %s, %d/%d", id, i+1, len(ids))

		var workItemID int
		err := retry.Call(retry.CallArgs{
			Func: func() error {
				var err error
				workItemID, err = d.Migrator.MigrateIssue(id)
				return err
			},
			IsFatalError: func(err error) bool {
				return !apierror.IsDecode(err)
			},
			NotifyFunc: func(err error, attempt int) {
				logger.Infof("transient failure migrating %s (attempt %d): %v", id, attempt, err)
			},
			Attempts:    attempts,
			Delay:       delay,
			MaxDelay:    maxDelay,
			BackoffFunc: retry.DoubleDelay,
			Clock:       clk,
		})
		if err != nil {
			if retry.IsAttemptsExceeded(err) {
				return fmt.Errorf("giving up on %s after %d attempts: %w", id, attempts, retry.LastError(err))
			}
			return err
		}

		logger.Infof("migrated %s to work item %d, %d/%d", id, workItemID, i+1, len(ids))
	}
	return nil
}
