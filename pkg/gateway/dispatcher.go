package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// DispatcherOptions configures a Dispatcher.
type DispatcherOptions struct {
	// Timeout bounds a single handler invocation. Defaults to 30s.
	Timeout time.Duration
	// MaxConcurrent bounds parallel handler executions; excess calls are
	// rejected with a busy result instead of queueing. Defaults to 16.
	MaxConcurrent int
	// StrictValidation rejects argument fields that are not declared in the
	// tool's schema. Off by default.
	StrictValidation bool
	// Audit receives one record per dispatch. Optional.
	Audit AuditRecorder
}

// Dispatcher orchestrates a tool call: authenticate, look up the tool,
// validate arguments, mint a session, invoke the handler, and normalize the
// outcome. It holds no cross-call state beyond the shared registry.
type Dispatcher struct {
	registry *Registry
	auth     *Authenticator
	sessions *SessionIssuer
	audit    AuditRecorder
	timeout  time.Duration
	strict   bool
	sem      chan struct{}
}

// NewDispatcher creates a dispatcher over a registry and authenticator.
func NewDispatcher(registry *Registry, auth *Authenticator, opts DispatcherOptions) *Dispatcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 16
	}

	return &Dispatcher{
		registry: registry,
		auth:     auth,
		sessions: NewSessionIssuer(),
		audit:    opts.Audit,
		timeout:  opts.Timeout,
		strict:   opts.StrictValidation,
		sem:      make(chan struct{}, opts.MaxConcurrent),
	}
}

// Call runs one tool invocation end to end.
//
// Boundary failures (authentication, lookup, validation) are returned as a
// non-nil error carrying a FailureKind for the transport to map to a status
// code; the handler is never invoked for those. Once the handler runs, any
// failure it signals — including a timeout — is folded into the returned
// ToolCallResult so "the tool failed" stays distinguishable from "the call
// was rejected".
func (d *Dispatcher) Call(ctx context.Context, req ToolCallRequest, creds Credentials) (ToolCallResult, error) {
	start := time.Now()

	identity, err := d.auth.Authenticate(creds)
	if err != nil {
		d.record(AuditRecord{
			ToolName: req.ToolName,
			Outcome:  OutcomeUnauthenticated,
			Detail:   err.Error(),
			Duration: time.Since(start),
			At:       start,
		})
		return ToolCallResult{}, err
	}

	desc, err := d.registry.Get(req.ToolName)
	if err != nil {
		d.record(AuditRecord{
			ToolName: req.ToolName,
			UserID:   identity.UserID,
			Outcome:  OutcomeToolNotFound,
			Detail:   err.Error(),
			Duration: time.Since(start),
			At:       start,
		})
		return ToolCallResult{}, err
	}

	args, err := ValidateArguments(desc, req.Arguments, d.strict)
	if err != nil {
		log.Debug().
			Str("tool", req.ToolName).
			Str("user_id", identity.UserID).
			Err(err).
			Msg("Argument validation failed")
		d.record(AuditRecord{
			ToolName: req.ToolName,
			UserID:   identity.UserID,
			Outcome:  OutcomeValidationError,
			Detail:   err.Error(),
			Duration: time.Since(start),
			At:       start,
		})
		return ToolCallResult{}, err
	}

	sess := d.sessions.Issue()

	select {
	case d.sem <- struct{}{}:
	default:
		detail := fmt.Sprintf("tool %q rejected: gateway is at capacity", req.ToolName)
		log.Warn().
			Str("tool", req.ToolName).
			Str("session_id", sess.ID).
			Str("user_id", identity.UserID).
			Msg("Dispatch rejected, concurrency limit reached")
		d.record(AuditRecord{
			ToolName:  req.ToolName,
			SessionID: sess.ID,
			UserID:    identity.UserID,
			Outcome:   OutcomeOverloaded,
			Detail:    detail,
			Duration:  time.Since(start),
			At:        start,
		})
		return FailureResult(detail), nil
	}

	log.Debug().
		Str("tool", req.ToolName).
		Str("session_id", sess.ID).
		Str("user_id", identity.UserID).
		Msg("Invoking tool handler")

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	resultChan := make(chan interface{}, 1)
	errChan := make(chan error, 1)

	go func() {
		defer func() { <-d.sem }()
		defer func() {
			if r := recover(); r != nil {
				errChan <- fmt.Errorf("handler panic: %v", r)
			}
		}()

		result, err := desc.Handler(callCtx, args, identity.UserID, sess.ID)
		if err != nil {
			errChan <- err
			return
		}
		resultChan <- result
	}()

	select {
	case result := <-resultChan:
		duration := time.Since(start)
		log.Info().
			Str("tool", req.ToolName).
			Str("session_id", sess.ID).
			Str("user_id", identity.UserID).
			Dur("duration", duration).
			Msg("Tool call completed")
		d.record(AuditRecord{
			ToolName:  req.ToolName,
			SessionID: sess.ID,
			UserID:    identity.UserID,
			Outcome:   OutcomeSuccess,
			Duration:  duration,
			At:        start,
		})
		return SuccessResult(result), nil

	case err := <-errChan:
		duration := time.Since(start)
		log.Error().
			Str("tool", req.ToolName).
			Str("session_id", sess.ID).
			Str("user_id", identity.UserID).
			Dur("duration", duration).
			Err(err).
			Msg("Tool call failed")
		d.record(AuditRecord{
			ToolName:  req.ToolName,
			SessionID: sess.ID,
			UserID:    identity.UserID,
			Outcome:   OutcomeHandlerError,
			Detail:    err.Error(),
			Duration:  duration,
			At:        start,
		})
		return FailureResult(fmt.Sprintf("tool %q failed: %v", req.ToolName, err)), nil

	case <-callCtx.Done():
		duration := time.Since(start)
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			detail := fmt.Sprintf("tool %q timed out after %v", req.ToolName, d.timeout)
			log.Error().
				Str("tool", req.ToolName).
				Str("session_id", sess.ID).
				Str("user_id", identity.UserID).
				Dur("duration", duration).
				Msg("Tool call timed out")
			d.record(AuditRecord{
				ToolName:  req.ToolName,
				SessionID: sess.ID,
				UserID:    identity.UserID,
				Outcome:   OutcomeHandlerTimeout,
				Detail:    detail,
				Duration:  duration,
				At:        start,
			})
			return FailureResult(detail), nil
		}

		// The caller went away; the handler sees the cancelled context and
		// its eventual result is discarded.
		detail := fmt.Sprintf("tool %q cancelled", req.ToolName)
		log.Warn().
			Str("tool", req.ToolName).
			Str("session_id", sess.ID).
			Str("user_id", identity.UserID).
			Dur("duration", duration).
			Msg("Tool call cancelled by caller")
		d.record(AuditRecord{
			ToolName:  req.ToolName,
			SessionID: sess.ID,
			UserID:    identity.UserID,
			Outcome:   OutcomeHandlerError,
			Detail:    detail,
			Duration:  duration,
			At:        start,
		})
		return FailureResult(detail), nil
	}
}

func (d *Dispatcher) record(rec AuditRecord) {
	if d.audit != nil {
		d.audit.Record(rec)
	}
}
