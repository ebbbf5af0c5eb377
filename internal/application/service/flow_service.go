package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dogmatiq/linger"
	"golang.org/x/sync/errgroup"

	"github.com/garyjia/caseflow/internal/application/port"
	"github.com/garyjia/caseflow/internal/domain/entity"
	"github.com/garyjia/caseflow/internal/domain/event"
	"github.com/garyjia/caseflow/internal/domain/flow"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// FlowOptions holds the process-wide resolution settings.
// They are fixed when the service is built.
type FlowOptions struct {
	// PollInterval is the pause between two searches of a bounded wait
	PollInterval time.Duration

	// MaxDepth bounds the number of parent cases walked from the starting case
	MaxDepth int

	// MaxTimeout caps the timeout a caller may request, zero means no cap
	MaxTimeout time.Duration
}

// DefaultFlowOptions returns the options used when none are configured
func DefaultFlowOptions() FlowOptions {
	return FlowOptions{
		PollInterval: 500 * time.Millisecond,
		MaxDepth:     64,
		MaxTimeout:   5 * time.Minute,
	}
}

// Validate checks the options for usable values
func (o FlowOptions) Validate() error {
	if o.PollInterval <= 0 {
		return flow.ErrInvalidPollInterval
	}
	if o.MaxDepth <= 0 {
		return fmt.Errorf("max depth must be positive, got %d", o.MaxDepth)
	}
	if o.MaxTimeout < 0 {
		return fmt.Errorf("max timeout must not be negative, got %s", o.MaxTimeout)
	}
	if o.MaxTimeout > 0 && o.PollInterval >= o.MaxTimeout {
		return fmt.Errorf("%w: interval %s must be shorter than max timeout %s",
			flow.ErrInvalidPollInterval, o.PollInterval, o.MaxTimeout)
	}
	return nil
}

// FlowService resolves which work items follow the current step of a case.
type FlowService interface {
	// SearchOnce takes a single snapshot of the case hierarchy without waiting
	SearchOnce(ctx context.Context, caseID string, assignee flow.Assignee) (flow.Snapshot, error)

	// ResolveNext blocks until next items appear, the root case completes or
	// the timeout elapses
	ResolveNext(ctx context.Context, caseID string, assignee flow.Assignee, timeoutSeconds int) (flow.Outcome, error)

	// ResolveAfterItem waits for the items following a finished work item.
	// The finished item's assignee is used as filter unless ignoreAssignee is set.
	ResolveAfterItem(ctx context.Context, item *entity.WorkItem, ignoreAssignee bool, timeoutSeconds int) (flow.Outcome, error)

	// CheckTimeout applies the timeout rules of ResolveNext without querying
	// anything, so callers can reject a bad wait before changing state
	CheckTimeout(timeoutSeconds int) error
}

type flowServiceImpl struct {
	caseRepo    port.CaseRepository
	historyRepo port.CaseHistoryRepository
	itemRepo    port.WorkItemRepository
	publisher   port.EventPublisher
	opts        FlowOptions
	logger      Logger
}

// NewFlowService creates a new FlowService.
// publisher may be nil, in which case no events are raised.
func NewFlowService(
	caseRepo port.CaseRepository,
	historyRepo port.CaseHistoryRepository,
	itemRepo port.WorkItemRepository,
	publisher port.EventPublisher,
	opts FlowOptions,
	logger Logger,
) (FlowService, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flow options: %w", err)
	}

	return &flowServiceImpl{
		caseRepo:    caseRepo,
		historyRepo: historyRepo,
		itemRepo:    itemRepo,
		publisher:   publisher,
		opts:        opts,
		logger:      logger,
	}, nil
}

// SearchOnce implements FlowService
func (s *flowServiceImpl) SearchOnce(ctx context.Context, caseID string, assignee flow.Assignee) (flow.Snapshot, error) {
	if err := s.ensureCase(ctx, caseID); err != nil {
		return flow.Snapshot{}, err
	}
	return s.search(ctx, caseID, assignee)
}

// ResolveNext implements FlowService.
// The loop checks items before the ended flag on every tick, so an item that
// appears together with the root's completion is still reported as NextItems.
func (s *flowServiceImpl) ResolveNext(ctx context.Context, caseID string, assignee flow.Assignee, timeoutSeconds int) (flow.Outcome, error) {
	timeout, err := s.timeout(timeoutSeconds)
	if err != nil {
		return flow.Outcome{}, err
	}

	if err := s.ensureCase(ctx, caseID); err != nil {
		return flow.Outcome{}, err
	}

	deadlineCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	for tick := 1; ; tick++ {
		snapshot, err := s.search(deadlineCtx, caseID, assignee)
		if err != nil {
			if cutOffByDeadline(ctx, deadlineCtx, err) {
				return s.timedOut(ctx, caseID, assignee, tick, start), nil
			}
			s.logger.Error("Failed to search next items",
				"error", err,
				"case_id", caseID,
				"tick", tick)
			return flow.Outcome{}, err
		}

		if outcome, ok := snapshot.Outcome(); ok {
			s.logger.Info("Next step resolved",
				"case_id", caseID,
				"root_case_id", snapshot.Root(),
				"assignee", assignee.String(),
				"outcome", outcome.String(),
				"items", len(snapshot.Items),
				"ticks", tick,
				"elapsed", time.Since(start).String())
			s.publishResolved(ctx, caseID, snapshot.Root(), assignee, outcome, tick)
			return outcome, nil
		}

		if err := linger.Sleep(deadlineCtx, s.opts.PollInterval); err != nil {
			if cutOffByDeadline(ctx, deadlineCtx, err) {
				return s.timedOut(ctx, caseID, assignee, tick, start), nil
			}
			return flow.Outcome{}, err
		}
	}
}

// CheckTimeout implements FlowService
func (s *flowServiceImpl) CheckTimeout(timeoutSeconds int) error {
	_, err := s.timeout(timeoutSeconds)
	return err
}

// ResolveAfterItem implements FlowService
func (s *flowServiceImpl) ResolveAfterItem(ctx context.Context, item *entity.WorkItem, ignoreAssignee bool, timeoutSeconds int) (flow.Outcome, error) {
	if item == nil {
		return flow.Outcome{}, flow.ErrItemNotFound
	}

	assignee := flow.AnyAssignee()
	if !ignoreAssignee {
		assignee = flow.AssignedTo(item.Assignee)
	}

	return s.ResolveNext(ctx, item.CaseID, assignee, timeoutSeconds)
}

// search walks from caseID to its root, then reads the root's history state
// and the active items of the whole ancestor set. The two reads are
// independent and run concurrently.
func (s *flowServiceImpl) search(ctx context.Context, caseID string, assignee flow.Assignee) (flow.Snapshot, error) {
	ancestors, err := s.ancestors(ctx, caseID)
	if err != nil {
		return flow.Snapshot{}, err
	}

	var (
		rootEnded bool
		items     []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		state, ok, err := s.historyRepo.FindTerminalState(gctx, ancestors[len(ancestors)-1])
		if err != nil {
			return err
		}
		rootEnded = ok && state == entity.CaseStateCompleted
		return nil
	})
	g.Go(func() error {
		var err error
		items, err = s.itemRepo.FindActive(gctx, ancestors, assignee)
		return err
	})
	if err := g.Wait(); err != nil {
		return flow.Snapshot{}, err
	}

	return flow.Snapshot{
		Items:     items,
		RootEnded: rootEnded,
		Ancestors: ancestors,
	}, nil
}

// ancestors returns caseID followed by every parent case up to the root
func (s *flowServiceImpl) ancestors(ctx context.Context, caseID string) ([]string, error) {
	ancestors := []string{caseID}
	seen := map[string]struct{}{caseID: {}}

	current := caseID
	for {
		parent, err := s.caseRepo.FindParent(ctx, current)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return ancestors, nil
		}

		if _, ok := seen[parent.ID]; ok {
			return nil, fmt.Errorf("%w: case %s is its own ancestor", flow.ErrHierarchyTooDeep, parent.ID)
		}
		if len(ancestors) > s.opts.MaxDepth {
			return nil, fmt.Errorf("%w: more than %d parents above case %s",
				flow.ErrHierarchyTooDeep, s.opts.MaxDepth, caseID)
		}

		seen[parent.ID] = struct{}{}
		ancestors = append(ancestors, parent.ID)
		current = parent.ID
	}
}

func (s *flowServiceImpl) ensureCase(ctx context.Context, caseID string) error {
	if caseID == "" {
		return flow.ErrCaseNotFound
	}

	c, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("%w: %s", flow.ErrCaseNotFound, caseID)
	}
	return nil
}

func (s *flowServiceImpl) timeout(seconds int) (time.Duration, error) {
	if seconds <= 0 {
		return 0, fmt.Errorf("%w: got %d", flow.ErrInvalidTimeout, seconds)
	}

	timeout := time.Duration(seconds) * time.Second
	if s.opts.MaxTimeout > 0 && timeout > s.opts.MaxTimeout {
		return 0, fmt.Errorf("%w: %s exceeds maximum of %s", flow.ErrInvalidTimeout, timeout, s.opts.MaxTimeout)
	}
	if timeout <= s.opts.PollInterval {
		return 0, fmt.Errorf("%w: %s is not longer than the poll interval %s",
			flow.ErrInvalidTimeout, timeout, s.opts.PollInterval)
	}
	return timeout, nil
}

func (s *flowServiceImpl) timedOut(ctx context.Context, caseID string, assignee flow.Assignee, ticks int, start time.Time) flow.Outcome {
	s.logger.Info("Next step wait timed out",
		"case_id", caseID,
		"assignee", assignee.String(),
		"ticks", ticks,
		"elapsed", time.Since(start).String())

	outcome := flow.TimedOut()
	s.publishResolved(ctx, caseID, "", assignee, outcome, ticks)
	return outcome
}

func (s *flowServiceImpl) publishResolved(ctx context.Context, caseID, rootCaseID string, assignee flow.Assignee, outcome flow.Outcome, ticks int) {
	if s.publisher == nil {
		return
	}

	attrs := map[string]string{
		event.AttrOutcome:  outcome.String(),
		event.AttrAssignee: assignee.String(),
		event.AttrTicks:    strconv.Itoa(ticks),
	}
	if rootCaseID != "" {
		attrs[event.AttrRootCaseID] = rootCaseID
	}
	if items := outcome.Items(); len(items) > 0 {
		attrs[event.AttrItems] = strings.Join(items, ",")
	}

	s.publisher.Publish(ctx, event.New(event.TypeNextResolved, caseID, attrs))
}

// cutOffByDeadline reports whether err was caused by the wait deadline firing
// while the caller's own context is still live. Any other failure, even one
// returned after the deadline, is not a timeout.
func cutOffByDeadline(parent, deadline context.Context, err error) bool {
	return parent.Err() == nil &&
		errors.Is(deadline.Err(), context.DeadlineExceeded) &&
		errors.Is(err, context.DeadlineExceeded)
}
