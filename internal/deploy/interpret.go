package deploy

import (
	"fmt"
	"strings"
)

// InterpretParams is what the interpreter needs besides the result.
type InterpretParams struct {
	ProjectID string
	Target    string
}

// ChannelInfo is the preview payload in the shape the outputs and comment need.
type ChannelInfo struct {
	ExpireTime string
	URLs       []string
	Sites      []SiteDeploy
}

// Interpret turns a step result into a Report. A *Failure becomes a
// DeployError, and a preview success without URLs an InternalError.
func Interpret(step StepKind, result Result, p InterpretParams) (Report, error) {
	var success *Success
	switch r := result.(type) {
	case *Failure:
		return Report{}, Errorf(KindDeploy, step.String()+" deploy", "%s", r.Message)
	case *Success:
		success = r
	default:
		return Report{}, Errorf(KindInternal, "interpret "+step.String(), "unexpected result type %T", result)
	}

	switch step {
	case StepProductionHosting, StepFunctions:
		hostname := Hostname(p.ProjectID, p.Target)
		url := fmt.Sprintf("https://%s/", hostname)
		title := "Production deploy succeeded"
		if step == StepFunctions {
			title = "Functions deploy succeeded"
		}
		return Report{
			DetailsURL: url,
			Conclusion: ConclusionSuccess,
			Output: Output{
				Title:   title,
				Summary: fmt.Sprintf("[%s](%s)", hostname, url),
			},
		}, nil
	case StepPreviewHosting:
		info, err := ChannelInfoFrom(success)
		if err != nil {
			return Report{}, err
		}
		return Report{
			DetailsURL: info.URLs[0],
			Conclusion: ConclusionSuccess,
			Output: Output{
				Title:   "Deploy preview succeeded",
				Summary: URLsMarkdown(info.URLs),
			},
		}, nil
	default:
		return Report{}, Errorf(KindInternal, "interpret", "unknown step %d", step)
	}
}

// ChannelInfoFrom extracts expiry and URLs from a preview success payload.
func ChannelInfoFrom(s *Success) (ChannelInfo, error) {
	if s == nil || len(s.Sites) == 0 {
		return ChannelInfo{}, Errorf(KindInternal, "interpret preview hosting", "channel deploy returned no URLs")
	}

	info := ChannelInfo{ExpireTime: s.Sites[0].ExpireTime, Sites: s.Sites}
	for _, site := range s.Sites {
		if site.URL == "" {
			return ChannelInfo{}, Errorf(KindInternal, "interpret preview hosting", "site %q has no URL", site.Site)
		}
		info.URLs = append(info.URLs, site.URL)
	}
	return info, nil
}

// Hostname is the default web.app hostname for a target or project.
func Hostname(projectID, target string) string {
	if target != "" {
		return target + ".web.app"
	}
	return projectID + ".web.app"
}

// URLsMarkdown renders a single URL as a link and several as a bulleted list.
func URLsMarkdown(urls []string) string {
	if len(urls) == 1 {
		return fmt.Sprintf("[%s](%s)", urls[0], urls[0])
	}
	lines := make([]string, 0, len(urls))
	for _, u := range urls {
		lines = append(lines, fmt.Sprintf("- [%s](%s)", u, u))
	}
	return strings.Join(lines, "\n")
}
