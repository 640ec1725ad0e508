package domain

// StepCompleted is the sentinel currentStep value the remote service reports
// when enough data has been collected; reaching it triggers validation.
const StepCompleted = "completed"

// ConversationState is the server-reported snapshot of collection progress.
// Each server response that carries one replaces the previous snapshot
// wholesale; the remote service is the single source of truth for progress.
type ConversationState struct {
	CurrentStep        string   `json:"current_step"`
	CollectedFields    []string `json:"collected_fields"`
	NextFieldToCollect string   `json:"next_field_to_collect,omitempty"`
	ProgressPercentage int      `json:"progress_percentage"`
	BusinessType       string   `json:"business_type,omitempty"`
}

// Completed reports whether the state has reached the completion step.
func (s ConversationState) Completed() bool {
	return s.CurrentStep == StepCompleted
}

// UploadResult is the per-file outcome of one upload attempt. It is produced
// per send-attempt and not persisted across turns.
type UploadResult struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ValidationResult is the authoritative, on-demand report of whether enough
// data has been collected to proceed. Overwritten wholesale on each
// validation call, never merged.
type ValidationResult struct {
	IsComplete         bool           `json:"IsComplete"`
	CanCreateStore     bool           `json:"CanCreateStore"`
	CollectedData      map[string]any `json:"CollectedData,omitempty"`
	MissingFields      []string       `json:"MissingFields,omitempty"`
	ValidationErrors   []any          `json:"ValidationErrors,omitempty"`
	ProgressPercentage int            `json:"ProgressPercentage"`
	NextFieldToCollect string         `json:"NextFieldToCollect,omitempty"`
}
