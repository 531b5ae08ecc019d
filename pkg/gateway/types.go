package gateway

// ToolCallRequest is the body of a tool invocation. One per call.
type ToolCallRequest struct {
	ToolName  string                 `json:"tool_name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// ToolCallResult is the in-band outcome envelope of a handler invocation.
// Exactly one of Result and Error is non-null: Result when Success is true,
// Error when it is false. Both keys are always serialized so callers can
// rely on the shape.
type ToolCallResult struct {
	Success bool        `json:"success"`
	Result  interface{} `json:"result"`
	Error   *string     `json:"error"`
}

// SuccessResult wraps a handler return value.
func SuccessResult(value interface{}) ToolCallResult {
	return ToolCallResult{
		Success: true,
		Result:  value,
	}
}

// FailureResult wraps a handler failure message.
func FailureResult(message string) ToolCallResult {
	return ToolCallResult{
		Success: false,
		Error:   &message,
	}
}
