// Package workflow drives one scheduling run for a review period: generate,
// inspect, then approve, reject or regenerate part of it.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/smart-review/smart-review-cli/internal/signal"
	"github.com/smart-review/smart-review-cli/models"
)

var (
	ErrBusy              = errors.New("another scheduling operation is in progress")
	ErrClosed            = errors.New("scheduling controller is closed")
	ErrNoPeriod          = errors.New("no review period selected")
	ErrReasonRequired    = errors.New("a reason is required to reject a schedule")
	ErrInvalidTransition = errors.New("operation not allowed in the current state")
	// ErrSuperseded is returned when a response arrives after the period was
	// changed or the controller closed. The response is discarded.
	ErrSuperseded = errors.New("response belongs to a superseded run")
)

// Scheduler is the remote side of the workflow.
type Scheduler interface {
	Generate(ctx context.Context, periodID int, force bool) (*models.ScheduleResult, error)
	Approve(ctx context.Context, periodID int) error
	Reject(ctx context.Context, periodID int, reason string) error
	RegenerateSlot(ctx context.Context, slotID int, reason string) (*models.ScheduleResult, error)
	RegenerateGroup(ctx context.Context, groupID int, reason string) (*models.ScheduleResult, error)
}

// Snapshot is a consistent copy of the controller state. Result is a deep
// copy and may be modified freely.
type Snapshot struct {
	State    State
	PeriodID int
	Result   *models.ScheduleResult
	Err      error
	Outcome  Outcome
	InFlight bool
}

// Controller is private to one screen. At most one operation is in flight;
// responses from a superseded period or after Close are dropped.
type Controller struct {
	scheduler       Scheduler
	log             *zerolog.Logger
	sessionsChanged *signal.Signal
	changed         *signal.Signal

	mu       sync.Mutex
	state    State
	periodID int
	result   *models.ScheduleResult
	lastErr  error
	outcome  Outcome
	inFlight bool
	epoch    uint64
	closed   bool
}

// NewController returns an idle controller. sessionsChanged, if set, is
// raised after a schedule is approved so session listings can refresh.
func NewController(scheduler Scheduler, sessionsChanged *signal.Signal, log *zerolog.Logger) *Controller {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Controller{
		scheduler:       scheduler,
		log:             log,
		sessionsChanged: sessionsChanged,
		changed:         signal.New("workflow-changed"),
	}
}

// SelectPeriod switches the controller to periodID. A different period
// discards the displayed result and stops listening to any pending call.
func (c *Controller) SelectPeriod(periodID int) error {
	if periodID <= 0 {
		return ErrNoPeriod
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	changed := c.selectLocked(periodID)
	c.mu.Unlock()

	if changed {
		c.changed.Raise()
	}
	return nil
}

func (c *Controller) selectLocked(periodID int) bool {
	if periodID == c.periodID {
		return false
	}
	c.log.Debug().Int("from", c.periodID).Int("to", periodID).Msg("review period changed")
	c.periodID = periodID
	c.epoch++
	c.state = Idle
	c.result = nil
	c.lastErr = nil
	c.outcome = NoOutcome
	c.inFlight = false
	return true
}

// Generate runs the scheduling algorithm for periodID, selecting it first if
// needed. Failed runs that carry diagnostic data are kept in
// GeneratedFailure; a failure without data returns to Idle.
func (c *Controller) Generate(ctx context.Context, periodID int, force bool) error {
	if periodID <= 0 {
		return ErrNoPeriod
	}

	epoch, _, err := c.begin(Generating, func() error {
		if c.state != Idle && c.state != GeneratedSuccess && c.state != GeneratedFailure {
			return c.invalid("generate")
		}
		c.selectLocked(periodID)
		return nil
	})
	if err != nil {
		return err
	}

	c.log.Info().Int("period_id", periodID).Bool("force", force).Msg("generating schedule")
	result, callErr := c.scheduler.Generate(ctx, periodID, force)

	return c.finish(epoch, callErr, func() {
		c.applyResult(result, callErr, Idle, nil)
	})
}

// Approve commits the current run. It is only allowed while a fully
// successful result is displayed. A failed approval keeps the result.
func (c *Controller) Approve(ctx context.Context, periodID int) error {
	epoch, prev, err := c.begin(Approving, func() error {
		if err := c.checkPeriod(periodID); err != nil {
			return err
		}
		if c.state != GeneratedSuccess || c.result == nil || !c.result.IsSuccess {
			return c.invalid("approve")
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.log.Info().Int("period_id", periodID).Msg("approving schedule")
	callErr := c.scheduler.Approve(ctx, periodID)

	err = c.finish(epoch, callErr, func() {
		if callErr != nil {
			c.state = prev
			c.lastErr = callErr
			return
		}
		c.dispose(Approved)
	})
	if err == nil && c.sessionsChanged != nil {
		c.sessionsChanged.Raise()
	}
	return err
}

// Reject discards the current run server-side. reason must not be blank;
// that is checked before anything is sent.
func (c *Controller) Reject(ctx context.Context, periodID int, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonRequired
	}

	epoch, prev, err := c.begin(Rejecting, func() error {
		if err := c.checkPeriod(periodID); err != nil {
			return err
		}
		if c.state != GeneratedSuccess && c.state != GeneratedFailure {
			return c.invalid("reject")
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.log.Info().Int("period_id", periodID).Str("reason", reason).Msg("rejecting schedule")
	callErr := c.scheduler.Reject(ctx, periodID, reason)

	return c.finish(epoch, callErr, func() {
		if callErr != nil {
			c.state = prev
			c.lastErr = callErr
			return
		}
		c.dispose(Rejected)
	})
}

// RegenerateSlot reruns the algorithm for one slot and replaces the current
// result with the response.
func (c *Controller) RegenerateSlot(ctx context.Context, slotID int, reason string) error {
	return c.regenerate(ctx, RegeneratingSlot, "slot", slotID, reason, c.scheduler.RegenerateSlot)
}

// RegenerateGroup reruns the algorithm for one group and replaces the
// current result with the response.
func (c *Controller) RegenerateGroup(ctx context.Context, groupID int, reason string) error {
	return c.regenerate(ctx, RegeneratingGroup, "group", groupID, reason, c.scheduler.RegenerateGroup)
}

func (c *Controller) regenerate(ctx context.Context, op State, target string, id int, reason string,
	call func(context.Context, int, string) (*models.ScheduleResult, error)) error {
	if id <= 0 {
		return fmt.Errorf("invalid %s id %d", target, id)
	}

	epoch, prev, err := c.begin(op, func() error {
		if c.periodID <= 0 {
			return ErrNoPeriod
		}
		if c.state != GeneratedSuccess && c.state != GeneratedFailure {
			return c.invalid("regenerate a " + target)
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.log.Info().Int(target+"_id", id).Msg("regenerating " + target)
	result, callErr := call(ctx, id, strings.TrimSpace(reason))

	return c.finish(epoch, callErr, func() {
		// Without a new result the previous one still stands.
		c.applyResult(result, callErr, prev, c.result)
	})
}

// applyResult stores the outcome of a generate-like call. When the call
// produced no result the controller returns to fallback with keep.
// Callers hold c.mu.
func (c *Controller) applyResult(result *models.ScheduleResult, callErr error, fallback State, keep *models.ScheduleResult) {
	c.lastErr = callErr
	switch {
	case result == nil:
		c.state = fallback
		c.result = keep
	case callErr == nil && result.IsSuccess:
		c.state = GeneratedSuccess
		c.result = result.Clone()
	default:
		c.state = GeneratedFailure
		c.result = result.Clone()
	}
	if c.result != nil {
		c.log.Debug().
			Str("state", c.state.String()).
			Int("scheduled_groups", c.result.ScheduledGroups).
			Int("unscheduled_groups", c.result.UnscheduledGroups).
			Msg("schedule result received")
	}
}

// dispose ends the run after approval or rejection. Callers hold c.mu.
func (c *Controller) dispose(outcome Outcome) {
	c.state = Idle
	c.result = nil
	c.lastErr = nil
	c.outcome = outcome
}

// begin claims the in-flight slot. check runs under the lock after the
// closed and busy guards. It returns the epoch the call belongs to and the
// state to restore on failure.
func (c *Controller) begin(op State, check func() error) (uint64, State, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0, Idle, ErrClosed
	}
	if c.inFlight {
		c.mu.Unlock()
		return 0, Idle, ErrBusy
	}
	if err := check(); err != nil {
		c.mu.Unlock()
		return 0, Idle, err
	}

	prev := c.state
	c.state = op
	c.inFlight = true
	c.outcome = NoOutcome
	c.lastErr = nil
	epoch := c.epoch
	c.mu.Unlock()

	c.changed.Raise()
	return epoch, prev, nil
}

// finish applies a completion unless its epoch has been superseded.
func (c *Controller) finish(epoch uint64, callErr error, apply func()) error {
	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		c.log.Debug().Err(callErr).Msg("discarding response of a superseded run")
		return ErrSuperseded
	}
	apply()
	c.inFlight = false
	c.mu.Unlock()

	if callErr != nil {
		c.log.Warn().Err(callErr).Msg("scheduling operation failed")
	}
	c.changed.Raise()
	return callErr
}

// Callers hold c.mu.
func (c *Controller) checkPeriod(periodID int) error {
	if c.periodID <= 0 {
		return ErrNoPeriod
	}
	if periodID != c.periodID {
		return fmt.Errorf("%w: period %d is not selected", ErrInvalidTransition, periodID)
	}
	return nil
}

// Callers hold c.mu.
func (c *Controller) invalid(op string) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, op, c.state)
}

// Close detaches the controller from its screen. Pending responses are
// dropped and every later operation returns ErrClosed.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.epoch++
	c.state = Idle
	c.result = nil
	c.inFlight = false
	c.mu.Unlock()

	c.changed.Raise()
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:    c.state,
		PeriodID: c.periodID,
		Result:   c.result.Clone(),
		Err:      c.lastErr,
		Outcome:  c.outcome,
		InFlight: c.inFlight,
	}
}

// Subscribe calls fn after every state change.
func (c *Controller) Subscribe(fn func()) (unsubscribe func()) {
	return c.changed.Subscribe(fn)
}
