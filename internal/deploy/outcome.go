package deploy

import "encoding/json"

// Outcome is the finalized result of a run.
type Outcome struct {
	Reports []Report
	Success bool
}

// NotStartedReport is emitted when a run produced no reports.
var NotStartedReport = Report{
	Conclusion: ConclusionNotStarted,
	Output: Output{
		Title:   "Deployment not started",
		Summary: "Nothing to deploy or missing required inputs",
	},
}

// Finalize aggregates the reports of a run. An empty run is never successful:
// it yields a single not_started report.
func Finalize(reports []Report) Outcome {
	if len(reports) == 0 {
		return Outcome{Reports: []Report{NotStartedReport}, Success: false}
	}

	success := true
	for _, r := range reports {
		if r.Conclusion != ConclusionSuccess {
			success = false
			break
		}
	}
	return Outcome{Reports: append([]Report(nil), reports...), Success: success}
}

// FailureReport is the best-effort report emitted when a run aborts.
func FailureReport(mode Mode, err error) Report {
	title := "Deploy preview failed"
	if mode == ModeProduction {
		title = "Production deploy failed"
	}
	return Report{
		Conclusion: ConclusionFailure,
		Output: Output{
			Title:   title,
			Summary: "Error: " + err.Error(),
		},
	}
}

// FailureMessage is the JSON of the last report, used as the terminal error
// of an unsuccessful run.
func (o Outcome) FailureMessage() string {
	if len(o.Reports) == 0 {
		return "deployment failed"
	}
	msg, err := json.Marshal(o.Reports[len(o.Reports)-1])
	if err != nil {
		return "deployment failed"
	}
	return string(msg)
}
