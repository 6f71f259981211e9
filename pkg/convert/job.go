package convert

import "time"

// Job fixes the directories one batch run works over. Both are resolved and
// validated before the run starts.
type Job struct {
	SourceDir string
	TargetDir string
}

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// FileResult records the outcome for one source file. Failed files carry the
// error text and zero counts; their reserved output name is not reported
// because nothing exists under it.
type FileResult struct {
	SourceFile string `json:"source_file"`
	TargetFile string `json:"target_file,omitempty"`
	Rows       int64  `json:"rows"`
	SizeBytes  int64  `json:"size_bytes"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

// RunSummary is the per-run report document. FilesProcessed always equals
// len(Results); RowsConverted and FilesConverted count successes only.
type RunSummary struct {
	RunID           string       `json:"run_id"`
	SourceDir       string       `json:"source_directory"`
	TargetDir       string       `json:"target_directory"`
	JobStart        time.Time    `json:"job_start"`
	JobEnd          time.Time    `json:"job_end"`
	DurationSeconds float64      `json:"duration_seconds"`
	FilesProcessed  int          `json:"files_processed"`
	FilesConverted  int          `json:"files_converted"`
	RowsConverted   int64        `json:"rows_converted"`
	Results         []FileResult `json:"results"`
}

// Converted returns the successful results in processing order.
func (s *RunSummary) Converted() []FileResult {
	out := make([]FileResult, 0, s.FilesConverted)
	for _, r := range s.Results {
		if r.Status == StatusSuccess {
			out = append(out, r)
		}
	}
	return out
}
