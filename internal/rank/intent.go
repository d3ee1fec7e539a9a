// File: internal/rank/intent.go
package rank

import "strings"

// Intent is the coarse classification of an instruction, used to bias role
// weights and to activate per-intent conflict lists. It is a closed set; the
// keyword tables below are the only place intent vocabulary lives.
type Intent int

const (
	IntentGeneric Intent = iota
	IntentProfileSettings
	IntentCreateNew
	IntentFilterSearch
	IntentNavigate
	IntentFormFill
)

// String returns the snake_case label used in diagnostics.
func (i Intent) String() string {
	switch i {
	case IntentProfileSettings:
		return "profile_settings"
	case IntentCreateNew:
		return "create_new"
	case IntentFilterSearch:
		return "filter_search"
	case IntentNavigate:
		return "navigate_tab"
	case IntentFormFill:
		return "form_fill"
	default:
		return "generic"
	}
}

// intentKeywords maps each intent to the phrases that trigger it. Matching is
// substring membership on the lowercased instruction; first hit wins in the
// order of classifyOrder.
var intentKeywords = map[Intent][]string{
	IntentProfileSettings: {"profile", "account", "settings", "preferences", "full name", "display name", "avatar", "picture", "password", "email"},
	IntentCreateNew:       {"create", "new", "add", "start", "open new"},
	IntentFilterSearch:    {"filter", "search", "find", "narrow", "show only", "query"},
	IntentNavigate:        {"go to", "switch to", "tab", "view", "section", "page"},
	IntentFormFill:        {"fill", "enter", "type", "set", "update", "form", "field", "submit", "save"},
}

var classifyOrder = []Intent{
	IntentProfileSettings,
	IntentCreateNew,
	IntentFilterSearch,
	IntentNavigate,
	IntentFormFill,
}

// conflictTokens lists element-name tokens that are almost certainly
// irrelevant under a given intent. A conflict is only penalized when the
// instruction itself does not mention the conflicting token.
var conflictTokens = map[Intent][]string{
	IntentProfileSettings: {"issue", "ticket", "task", "filter", "inbox", "project", "create"},
	IntentCreateNew:       {"filter", "search", "settings", "profile", "logout"},
	IntentFilterSearch:    {"create", "new", "settings", "profile", "logout"},
}

// genericChromeTokens always carry a slight penalty: they name application
// chrome, not task targets.
var genericChromeTokens = map[string]bool{
	"workspace": true, "help": true, "menu": true, "sidebar": true, "navigation": true,
}

// destructiveTokens are penalized hard unless the instruction asks for them.
var destructiveTokens = map[string]bool{
	"delete": true, "remove": true, "discard": true, "close": true, "dismiss": true, "trash": true,
}

// ClassifyIntent maps an instruction to its intent, defaulting to generic.
func ClassifyIntent(instruction string) Intent {
	lc := strings.ToLower(instruction)
	for _, intent := range classifyOrder {
		for _, kw := range intentKeywords[intent] {
			if strings.Contains(lc, kw) {
				return intent
			}
		}
	}
	return IntentGeneric
}
