package report

import "time"

// GenerationData is the content of a generation report
type GenerationData struct {
	RunID     string
	Succeeded []string
	Failed    []string
	Generated string
}

// RenderGeneration renders the HTML summary of a generation run
func RenderGeneration(runID string, succeeded, failed []string, now time.Time) (string, error) {
	return renderHTML(GenerationTemplate, GenerationData{
		RunID:     runID,
		Succeeded: succeeded,
		Failed:    failed,
		Generated: now.Format(TimestampLayout),
	})
}
