package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zatekoja/phr/backend/internal/domain/entities"
	"github.com/zatekoja/phr/backend/internal/domain/providers"
	"github.com/zatekoja/phr/backend/pkg/retry"
)

// Outcome kinds reuse the fallback markers exposed on results
const (
	KindNone               = entities.FallbackNone
	KindServiceUnavailable = entities.FallbackServiceUnavailable
	KindInputRejected      = entities.FallbackInputRejected
)

// Outcome is the result of one model invocation including all retries.
type Outcome struct {
	Text     string
	Success  bool
	Fallback bool
	Kind     entities.FallbackKind
	Attempts int
	Message  string
	Err      error
}

// Limits bounds a single invocation
type Limits struct {
	MaxUploadBytes int64
	Timeout        time.Duration
}

// Invoker wraps a generative model with retry, limits and logging.
// It holds no mutable state and is safe for concurrent use.
type Invoker struct {
	model  providers.GenerativeModel
	policy retry.Config
	sink   LogSink
	limits Limits
}

// NewInvoker creates an invoker. A nil model marks the AI service as
// unavailable; every call then returns the unavailable outcome immediately.
func NewInvoker(model providers.GenerativeModel, policy retry.Config, sink LogSink, limits Limits) *Invoker {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if sink == nil {
		sink = NopSink{}
	}
	return &Invoker{
		model:  model,
		policy: policy,
		sink:   sink,
		limits: limits,
	}
}

// Available reports whether a model is configured
func (i *Invoker) Available() bool {
	return i.model != nil
}

// Invoke runs prompt against the model, uploading attachment when non-nil.
func (i *Invoker) Invoke(ctx context.Context, operation, prompt string, attachment *providers.Attachment) Outcome {
	start := time.Now()

	if i.model == nil {
		out := Outcome{
			Fallback: true,
			Kind:     KindServiceUnavailable,
			Message:  "AI service not available",
			Err:      providers.ErrModelNotConfigured,
		}
		i.record(operation, start, out)
		return out
	}

	if attachment != nil && i.limits.MaxUploadBytes > 0 && int64(len(attachment.Data)) > i.limits.MaxUploadBytes {
		err := fmt.Errorf("%w: %d bytes, limit %d", providers.ErrAttachmentTooLarge, len(attachment.Data), i.limits.MaxUploadBytes)
		out := Outcome{
			Fallback: true,
			Kind:     KindInputRejected,
			Message:  fmt.Sprintf("Attachment too large: maximum size is %d bytes", i.limits.MaxUploadBytes),
			Err:      err,
		}
		i.record(operation, start, out)
		return out
	}

	var (
		text     string
		attempts int
		lastErr  error
	)

	err := retry.DoWithLog(ctx, i.policy, "ai."+operation, func() error {
		attempts++
		callCtx := ctx
		if i.limits.Timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, i.limits.Timeout)
			defer cancel()
		}

		var callErr error
		if attachment != nil {
			text, callErr = i.model.GenerateWithAttachment(callCtx, prompt, *attachment)
		} else {
			text, callErr = i.model.GenerateText(callCtx, prompt)
		}
		if callErr != nil {
			lastErr = callErr
			if nonRetryable(callErr) {
				return retry.Permanent(callErr)
			}
			return callErr
		}
		return nil
	}, func(attempt int, err error, delay time.Duration) {
		i.sink.Record(InvocationEvent{
			Operation: operation,
			Start:     start,
			Duration:  time.Since(start),
			Attempt:   attempt,
			Outcome:   OutcomeRetry,
			Delay:     delay,
			Err:       err,
		})
	})

	var out Outcome
	switch {
	case err == nil:
		out = Outcome{Text: text, Success: true, Kind: KindNone, Attempts: attempts}
	case errors.Is(lastErr, providers.ErrAttachmentTooLarge), errors.Is(lastErr, providers.ErrModelBlocked):
		out = Outcome{
			Fallback: true,
			Kind:     KindInputRejected,
			Attempts: attempts,
			Message:  fmt.Sprintf("AI service rejected the input: %v", lastErr),
			Err:      lastErr,
		}
	default:
		if lastErr == nil {
			lastErr = err
		}
		out = Outcome{
			Fallback: true,
			Kind:     KindServiceUnavailable,
			Attempts: attempts,
			Message:  fmt.Sprintf("AI service unavailable after %d attempts: %v", attempts, lastErr),
			Err:      lastErr,
		}
	}

	i.record(operation, start, out)
	return out
}

func (i *Invoker) record(operation string, start time.Time, out Outcome) {
	i.sink.Record(InvocationEvent{
		Operation: operation,
		Start:     start,
		Duration:  time.Since(start),
		Attempt:   out.Attempts,
		Outcome:   outcomeOf(out),
		Kind:      out.Kind,
		Err:       out.Err,
	})
}

func outcomeOf(out Outcome) string {
	switch {
	case out.Success:
		return OutcomeSuccess
	case out.Kind == KindInputRejected:
		return OutcomeRejected
	case out.Attempts == 0:
		return OutcomeUnavailable
	default:
		return OutcomeExhausted
	}
}

func nonRetryable(err error) bool {
	return errors.Is(err, providers.ErrAttachmentTooLarge) ||
		errors.Is(err, providers.ErrModelBlocked) ||
		errors.Is(err, providers.ErrModelUnauthorized) ||
		errors.Is(err, providers.ErrModelNotConfigured)
}
