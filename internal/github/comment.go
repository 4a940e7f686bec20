package github

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/go-github/v39/github"
)

// DeploySignature identifies comments for the same set of sites so reruns
// update the previous comment instead of adding one.
func DeploySignature(sites []string) string {
	sorted := append([]string(nil), sites...)
	sort.Strings(sorted)

	h := sha1.New()
	for _, site := range sorted {
		h.Write([]byte(site))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// IsBotComment reports whether c was written by a bot and carries signature.
func IsBotComment(c *github.IssueComment, signature string) bool {
	return c.GetUser().GetType() == "Bot" && strings.Contains(c.GetBody(), signature)
}

// FindBotComment returns the id of the most recent bot comment with signature.
func FindBotComment(comments []*github.IssueComment, signature string) (int64, bool) {
	for i := len(comments) - 1; i >= 0; i-- {
		if IsBotComment(comments[i], signature) {
			return comments[i].GetID(), true
		}
	}
	return 0, false
}

// PreviewComment is the data rendered into a preview deploy comment.
type PreviewComment struct {
	URLsMarkdown string
	ExpireTime   string
	ShortSHA     string
	Signature    string
}

// Render returns the markdown comment body.
func (p PreviewComment) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Visit the preview URL for this PR (updated for commit %s):\n\n", p.ShortSHA)
	b.WriteString(p.URLsMarkdown)
	b.WriteString("\n\n")
	if expires := formatExpiry(p.ExpireTime); expires != "" {
		fmt.Fprintf(&b, "<sub>(expires %s)</sub>\n\n", expires)
	}
	b.WriteString("<sub>🔥 via Firebase Hosting deploy 🌎</sub>\n\n")
	fmt.Fprintf(&b, "<sub>Sign: %s</sub>", p.Signature)
	return b.String()
}

func formatExpiry(expireTime string) string {
	if expireTime == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339Nano, expireTime)
	if err != nil {
		return expireTime
	}
	return t.UTC().Format(time.RFC1123)
}
