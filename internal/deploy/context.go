package deploy

import (
	"strings"
)

var supportedContexts = []Context{ContextHosting, ContextFunctions}

// ContextSet is the validated set of requested deploy contexts.
type ContextSet map[Context]struct{}

// Has reports whether c was requested.
func (s ContextSet) Has(c Context) bool {
	_, ok := s[c]
	return ok
}

// Selection is the outcome of SelectContexts.
type Selection struct {
	Contexts    ContextSet
	Unsupported []string // Dropped tokens, in input order
}

// SelectContexts splits raw on "|" and keeps the supported tokens. Unsupported
// tokens are returned for the caller to warn about. It fails only when no
// supported token remains.
func SelectContexts(raw string) (Selection, error) {
	sel := Selection{Contexts: ContextSet{}}
	for _, token := range strings.Split(raw, "|") {
		if isSupported(token) {
			sel.Contexts[Context(token)] = struct{}{}
			continue
		}
		sel.Unsupported = append(sel.Unsupported, token)
	}

	if len(sel.Contexts) == 0 {
		return sel, Errorf(KindConfiguration, "select contexts",
			"no supported deploy context in %q (supported: hosting, functions)", raw)
	}
	return sel, nil
}

func isSupported(token string) bool {
	for _, c := range supportedContexts {
		if token == string(c) {
			return true
		}
	}
	return false
}
