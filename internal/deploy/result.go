package deploy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Result is the outcome of one deploy step: exactly one of *Success or *Failure.
// Callers switch on the concrete type.
type Result interface {
	isResult()
}

// Success carries the step payload. Sites is only populated by preview deploys.
type Success struct {
	Sites []SiteDeploy
}

// Failure carries the deploy tool's error message.
type Failure struct {
	Message string
}

func (*Success) isResult() {}
func (*Failure) isResult() {}

// cliResponse is the envelope printed by `firebase --json`.
type cliResponse struct {
	Status string          `json:"status"`
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

// ParseOutput converts the CLI's stdout into a Result. Output that is not a
// recognizable envelope becomes a *Failure.
func ParseOutput(out []byte, withSites bool) Result {
	payload := lastJSONObject(out)
	if payload == nil {
		return &Failure{Message: fmt.Sprintf("unexpected output from deploy tool: %q", truncate(string(out), 200))}
	}

	var resp cliResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return &Failure{Message: fmt.Sprintf("failed to parse deploy output: %v", err)}
	}

	switch resp.Status {
	case "success":
		if !withSites {
			return &Success{}
		}
		sites, err := decodeSites(resp.Result)
		if err != nil {
			return &Failure{Message: fmt.Sprintf("failed to parse channel deploy result: %v", err)}
		}
		return &Success{Sites: sites}
	case "error":
		msg := resp.Error
		if msg == "" {
			msg = "deploy tool reported an error without a message"
		}
		return &Failure{Message: msg}
	default:
		return &Failure{Message: fmt.Sprintf("unknown deploy status %q", resp.Status)}
	}
}

// decodeSites reads the site-keyed result object keeping key order.
func decodeSites(raw json.RawMessage) ([]SiteDeploy, error) {
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var sites []SiteDeploy
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyTok.(string)

		var site SiteDeploy
		if err := dec.Decode(&site); err != nil {
			return nil, fmt.Errorf("site %q: %w", key, err)
		}
		if site.Site == "" {
			site.Site = key
		}
		sites = append(sites, site)
	}
	return sites, nil
}

// lastJSONObject returns the last line-initial JSON object in out, or nil.
func lastJSONObject(out []byte) []byte {
	trimmed := bytes.TrimSpace(out)
	if len(trimmed) == 0 {
		return nil
	}
	if json.Valid(trimmed) {
		return trimmed
	}

	for idx := bytes.LastIndex(trimmed, []byte("\n{")); idx >= 0; idx = bytes.LastIndex(trimmed[:idx], []byte("\n{")) {
		candidate := bytes.TrimSpace(trimmed[idx+1:])
		if json.Valid(candidate) {
			return candidate
		}
	}
	return nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
