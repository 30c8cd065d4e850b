package toolgate

// Result is the only value the pipeline ever returns. Success and every
// failure mode are encoded here; nothing propagates as an uncaught
// fault to the caller.
type Result struct {
	Success bool `json:"success"`

	// LLMContent is fed back to the model as the tool outcome.
	LLMContent string `json:"llmContent"`

	// DisplayContent is the human-facing rendering. Empty means the UI
	// should fall back to LLMContent.
	DisplayContent string `json:"displayContent,omitempty"`

	Error    *ToolError     `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// TextResult is a convenience constructor for a successful text result.
func TextResult(text string) *Result {
	return &Result{Success: true, LLMContent: text}
}

// ErrorResult constructs a failed execution result with the given
// message. Tools use this for their own domain failures; the pipeline
// reserves the other error kinds for itself.
func ErrorResult(message string) *Result {
	return &Result{
		Success:    false,
		LLMContent: message,
		Error:      &ToolError{Kind: ErrExecution, Message: message},
	}
}

// failure builds a pipeline-level failure Result.
func failure(kind ErrorKind, message string) *Result {
	return &Result{
		Success:    false,
		LLMContent: message,
		Error:      &ToolError{Kind: kind, Message: message},
	}
}

// setMeta attaches a metadata key, allocating the map lazily.
func (r *Result) setMeta(key string, value any) {
	if r.Metadata == nil {
		r.Metadata = make(map[string]any)
	}
	r.Metadata[key] = value
}
