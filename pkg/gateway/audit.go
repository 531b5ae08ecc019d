package gateway

import "time"

// Outcome labels how a dispatch ended.
type Outcome string

const (
	OutcomeSuccess         Outcome = "success"
	OutcomeUnauthenticated Outcome = "unauthenticated"
	OutcomeToolNotFound    Outcome = "tool_not_found"
	OutcomeValidationError Outcome = "validation_error"
	OutcomeHandlerError    Outcome = "handler_error"
	OutcomeHandlerTimeout  Outcome = "handler_timeout"
	OutcomeOverloaded      Outcome = "overloaded"
	OutcomeInternalError   Outcome = "internal_error"
)

// AuditRecord describes one dispatch for the logging collaborator. Every
// dispatch produces exactly one record, successful or not.
type AuditRecord struct {
	ToolName  string        `json:"tool_name"`
	SessionID string        `json:"session_id"`
	UserID    string        `json:"user_id"`
	Outcome   Outcome       `json:"outcome"`
	Detail    string        `json:"detail,omitempty"`
	Duration  time.Duration `json:"duration"`
	At        time.Time     `json:"at"`
}

// AuditRecorder receives dispatch records. Implementations must be safe for
// concurrent use and must not block the dispatch path for long.
type AuditRecorder interface {
	Record(rec AuditRecord)
}

// FanoutRecorder delivers each record to every recorder in turn.
func FanoutRecorder(recorders ...AuditRecorder) AuditRecorder {
	return fanoutRecorder(recorders)
}

type fanoutRecorder []AuditRecorder

func (f fanoutRecorder) Record(rec AuditRecord) {
	for _, r := range f {
		if r != nil {
			r.Record(rec)
		}
	}
}
