package entities

// StepStatus is the outcome of one step.
type StepStatus string

const (
	StepPassed    StepStatus = "passed"
	StepFailed    StepStatus = "failed"
	StepSkipped   StepStatus = "skipped"
	StepUndefined StepStatus = "undefined"
	StepPending   StepStatus = "pending"
)

// StepResult records a step as it ran.
type StepResult struct {
	Phrase string     `json:"phrase"`
	Status StepStatus `json:"status"`
	Error  string     `json:"error,omitempty"`
	Dump   *FailDump  `json:"dump,omitempty"`
}

// ScenarioResult records a scenario and its steps.
type ScenarioResult struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	URI   string       `json:"uri,omitempty"`
	Steps []StepResult `json:"steps,omitempty"`
}

// Failed reports whether any step failed or was undefined.
func (r ScenarioResult) Failed() bool {
	for _, s := range r.Steps {
		if s.Status == StepFailed || s.Status == StepUndefined {
			return true
		}
	}
	return false
}
