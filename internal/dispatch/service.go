package dispatch

import (
	"context"
	"errors"
	"strings"
	"time"

	"becca-platform/internal/config"
	"becca-platform/internal/voice"
	"becca-platform/pkg/logger"
	"becca-platform/pkg/metrics"

	"github.com/google/uuid"
)

var ErrInvalidArgument = errors.New("dispatch: invalid argument")

// PromptSource yields the assembled assistant system prompt.
type PromptSource interface {
	SystemPrompt(ctx context.Context) (string, error)
}

// CallAttempt is the record of one dispatch outcome, consumed by the
// call-history store.
type CallAttempt struct {
	ScheduledCallID string
	TargetNumber    string
	Purpose         string
	ProviderCallID  string
	Outcome         Status
	Reason          string
	At              time.Time
}

// Recorder persists call attempts. Optional; a nil recorder skips history.
type Recorder interface {
	RecordCallAttempt(ctx context.Context, a CallAttempt) error
}

// PassLock serializes dispatcher passes across processes. Optional: the
// per-row claim in the store is the correctness guarantee; the lock only
// avoids wasted work when timer fires overlap.
type PassLock interface {
	Acquire(ctx context.Context) (release func(), ok bool, err error)
}

// Dispatcher converts due scheduled-call rows into outbound voice calls,
// exactly once per row.
type Dispatcher struct {
	store       Store
	provider    voice.Provider
	prompts     PromptSource
	lock        PassLock
	recorder    Recorder
	metrics     *metrics.Metrics
	assistantID string
	cfg         config.DispatchConfig

	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewDispatcher(store Store, provider voice.Provider, prompts PromptSource, assistantID string, cfg config.DispatchConfig) *Dispatcher {
	return &Dispatcher{
		store:       store,
		provider:    provider,
		prompts:     prompts,
		assistantID: assistantID,
		cfg:         cfg,
		clock:       time.Now,
	}
}

// WithLock attaches a cross-process pass lock.
func (d *Dispatcher) WithLock(l PassLock) *Dispatcher { d.lock = l; return d }

// WithRecorder attaches a call-history recorder.
func (d *Dispatcher) WithRecorder(r Recorder) *Dispatcher { d.recorder = r; return d }

// WithMetrics attaches prometheus counters.
func (d *Dispatcher) WithMetrics(m *metrics.Metrics) *Dispatcher { d.metrics = m; return d }

// Schedule creates a pending row. Rows are created here or by the dashboard;
// the dispatcher itself never creates work.
func (d *Dispatcher) Schedule(ctx context.Context, targetNumber, purpose string, at time.Time) (ScheduledCall, error) {
	if strings.TrimSpace(targetNumber) == "" {
		return ScheduledCall{}, ErrInvalidArgument
	}
	if at.IsZero() {
		return ScheduledCall{}, ErrInvalidArgument
	}
	now := d.clock().UTC()
	return d.store.Create(ctx, ScheduledCall{
		ID:           uuid.NewString(),
		TargetNumber: targetNumber,
		Purpose:      purpose,
		ScheduledAt:  at.UTC(),
		Status:       StatusPending,
		CreatedAt:    now,
	})
}

func (d *Dispatcher) ListScheduled(ctx context.Context, limit int) ([]ScheduledCall, error) {
	return d.store.List(ctx, limit)
}

// RunPass executes one dispatcher pass and returns the number of rows it
// drove to a terminal status. A single row's failure is recorded and the loop
// continues; only pass-level setup failures return an error.
func (d *Dispatcher) RunPass(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.PassTimeout)
	defer cancel()

	log := logger.From(ctx)
	start := d.clock()

	if d.lock != nil {
		release, ok, err := d.lock.Acquire(ctx)
		if err != nil {
			// Redis being down must not stop dispatching; the per-row claim
			// still guarantees exactly-once.
			log.Warn("pass lock unavailable, relying on row claims", "err", err)
		} else if !ok {
			log.Debug("pass already running elsewhere, skipping")
			return 0, nil
		} else {
			defer release()
		}
	}

	if d.metrics != nil {
		d.metrics.DispatchPasses.Inc()
		defer func() {
			d.metrics.PassDuration.Observe(d.clock().Sub(start).Seconds())
		}()
	}

	now := d.clock().UTC()

	reclaimed, err := d.store.ReclaimStuck(ctx, now.Add(-d.cfg.ClaimTimeout), now)
	if err != nil {
		return 0, err
	}
	if reclaimed > 0 {
		log.Warn("reclaimed stuck calls", "count", reclaimed)
		if d.metrics != nil {
			d.metrics.RowsReclaimed.Add(float64(reclaimed))
		}
	}

	due, err := d.store.Due(ctx, now)
	if err != nil {
		return 0, err
	}
	if len(due) == 0 {
		return 0, nil
	}

	prompt, err := d.prompts.SystemPrompt(ctx)
	if err != nil {
		return 0, err
	}

	// Merge-update the assistant prompt once per pass. The adapter re-sends
	// current tool bindings and voice settings, so this never clobbers them.
	if _, err := d.provider.UpdateAssistantPrompt(ctx, d.assistantID, prompt); err != nil {
		// Calls still carry the prompt as a per-call override below.
		log.Warn("assistant prompt update failed", "err", err)
	}

	// Caller id: first listed number, fetched once per pass.
	numbers, err := d.provider.ListPhoneNumbers(ctx)
	if err != nil {
		return 0, err
	}
	if len(numbers) == 0 {
		return 0, errors.New("dispatch: provider has no phone numbers")
	}
	callerID := numbers[0]

	processed := 0
	for _, row := range due {
		if err := ctx.Err(); err != nil {
			log.Warn("pass timed out mid batch", "remaining", len(due)-processed)
			break
		}

		claimed, err := d.store.Claim(ctx, row.ID, d.clock().UTC())
		if err != nil {
			log.Error("claim failed", "call_id", row.ID, "err", err)
			continue
		}
		if !claimed {
			// Another pass got here first; not ours to touch.
			continue
		}

		d.placeCall(ctx, row, callerID, prompt)
		processed++
	}

	log.Info("dispatch pass complete", "due", len(due), "processed", processed)
	return processed, nil
}

func (d *Dispatcher) placeCall(ctx context.Context, row ScheduledCall, callerID voice.PhoneNumber, prompt string) {
	log := logger.From(ctx)

	callCtx, cancel := context.WithTimeout(ctx, d.cfg.CallTimeout)
	defer cancel()

	callPrompt := prompt
	if p := strings.TrimSpace(row.Purpose); p != "" {
		callPrompt = prompt + "\n\nThe purpose of this call: " + p
	}

	if d.metrics != nil {
		d.metrics.ProviderRequests.WithLabelValues(d.provider.Name()).Inc()
	}
	call, err := d.provider.CreateCall(callCtx, voice.CallRequest{
		AssistantID:          d.assistantID,
		PhoneNumberID:        callerID.ID,
		CustomerNumber:       row.TargetNumber,
		SystemPromptOverride: callPrompt,
	})

	now := d.clock().UTC()
	if err != nil {
		log.Error("outbound call failed", "call_id", row.ID, "target", row.TargetNumber, "err", err)
		if d.metrics != nil {
			d.metrics.ProviderErrors.WithLabelValues(d.provider.Name()).Inc()
			d.metrics.CallsFailed.Inc()
		}
		if merr := d.store.MarkFailed(ctx, row.ID, err.Error(), now); merr != nil {
			log.Error("mark failed errored", "call_id", row.ID, "err", merr)
		}
		d.record(ctx, row, "", StatusFailed, err.Error(), now)
		return
	}

	if d.metrics != nil {
		d.metrics.CallsDispatched.Inc()
	}
	if merr := d.store.MarkCompleted(ctx, row.ID, call.ID, now); merr != nil {
		log.Error("mark completed errored", "call_id", row.ID, "err", merr)
	}
	d.record(ctx, row, call.ID, StatusCompleted, "", now)
}

func (d *Dispatcher) record(ctx context.Context, row ScheduledCall, providerCallID string, outcome Status, reason string, at time.Time) {
	if d.recorder == nil {
		return
	}
	a := CallAttempt{
		ScheduledCallID: row.ID,
		TargetNumber:    row.TargetNumber,
		Purpose:         row.Purpose,
		ProviderCallID:  providerCallID,
		Outcome:         outcome,
		Reason:          reason,
		At:              at,
	}
	if err := d.recorder.RecordCallAttempt(ctx, a); err != nil {
		logger.From(ctx).Error("call history write failed", "call_id", row.ID, "err", err)
	}
}
