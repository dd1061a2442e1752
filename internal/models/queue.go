package models

const (
	TaskWaiting    = "waiting"
	TaskInProgress = "in-progress"
	TaskDone       = "done"
	TaskError      = "error"
)

// SummaryTask is an entry of the summarize queue.
type SummaryTask struct {
	ID          string `json:"-"`
	Path        string `json:"path"`
	Status      string `json:"status"`
	LastUpdated string `json:"lastUpdated,omitempty"`
	Error       string `json:"error,omitempty"`
}
