package deploy

// Context is a deployable domain.
type Context string

const (
	ContextHosting   Context = "hosting"
	ContextFunctions Context = "functions"
)

// ProductionChannel is the reserved channel id that selects production mode.
const ProductionChannel = "live"

// Mode is derived from the configured channel id and never stored.
type Mode int

const (
	ModePreview Mode = iota
	ModeProduction
)

// ModeFor returns ModeProduction iff channelID is exactly "live".
func ModeFor(channelID string) Mode {
	if channelID == ProductionChannel {
		return ModeProduction
	}
	return ModePreview
}

func (m Mode) String() string {
	if m == ModeProduction {
		return "production"
	}
	return "preview"
}

// StepKind identifies a deploy step. Declaration order is execution order.
type StepKind int

const (
	StepProductionHosting StepKind = iota
	StepPreviewHosting
	StepFunctions
)

func (s StepKind) String() string {
	switch s {
	case StepProductionHosting:
		return "production hosting"
	case StepPreviewHosting:
		return "preview hosting"
	case StepFunctions:
		return "functions"
	default:
		return "unknown"
	}
}

// Conclusion is the outcome recorded on a Report.
type Conclusion string

const (
	ConclusionSuccess    Conclusion = "success"
	ConclusionFailure    Conclusion = "failure"
	ConclusionNotStarted Conclusion = "not_started"
)

// Output is the human-readable part of a Report.
type Output struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// Report is the normalized outcome of one executed step.
type Report struct {
	DetailsURL string     `json:"details_url,omitempty"`
	Conclusion Conclusion `json:"conclusion"`
	Output     Output     `json:"output"`
}

// SiteDeploy is one site entry of a preview channel deploy.
type SiteDeploy struct {
	Site       string `json:"site"`
	Target     string `json:"target,omitempty"`
	URL        string `json:"url"`
	ExpireTime string `json:"expireTime"`
}

// ProductionParams configures a production hosting deploy.
type ProductionParams struct {
	ProjectID   string
	Target      string
	ToolVersion string
}

// PreviewParams configures a preview channel deploy.
type PreviewParams struct {
	ProjectID   string
	Expires     string
	ChannelID   string
	Target      string
	ToolVersion string
}

// FunctionsParams configures a functions deploy.
type FunctionsParams struct {
	ProjectID   string
	ToolVersion string
}

// Credentials points at a materialized service-account file.
type Credentials struct {
	File string
}
