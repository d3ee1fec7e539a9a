// File: internal/browser/locator.go
package browser

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/api/schemas"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// targetAttribute is the temporary attribute used to pin a resolved element so
// subsequent chromedp actions address exactly the element the locator matched.
const targetAttribute = "data-agent-target"

// ErrLocatorNotFound indicates the described element no longer exists on the
// live page, usually because the UI changed since the catalog snapshot.
var ErrLocatorNotFound = fmt.Errorf("locator did not match any live element")

// locatorScript re-runs the catalog enumeration, counts elements matching the
// locator's role, name and landmark in document order, and tags the ordinal-th
// match. The locator is passed as data; nothing from it is executed.
const locatorScript = `(function(p) {
	` + jsHelpers + `
	let count = 0;
	const nodes = document.querySelectorAll(SELECTOR);
	for (let i = 0; i < nodes.length; i++) {
		const el = nodes[i];
		if (el.disabled) continue;
		if (computeRole(el) !== p.role) continue;
		if (!isVisible(el)) continue;
		if (accessibleName(el) !== p.name) continue;
		if (landmarkOf(el) !== p.landmark) continue;
		if (count === p.ordinal) {
			el.setAttribute(p.attr, p.token);
			return true;
		}
		count++;
	}
	return false;
})(%s)`

type locatorParams struct {
	Role     string `json:"role"`
	Name     string `json:"name"`
	Landmark string `json:"landmark"`
	Ordinal  int    `json:"ordinal"`
	Attr     string `json:"attr"`
	Token    string `json:"token"`
}

// valueOnlyContext strips cancellation from a context so cleanup can still
// run after the action that triggered it was canceled, e.g. by a navigation.
type valueOnlyContext struct {
	context.Context
}

func (valueOnlyContext) Deadline() (deadline time.Time, ok bool) { return }
func (valueOnlyContext) Done() <-chan struct{}                   { return nil }
func (valueOnlyContext) Err() error                              { return nil }

// Resolve re-locates the element a Locator describes on the live page and
// tags it with a unique temporary attribute. It returns a CSS selector for
// the tagged element and a cleanup function that removes the tag. The cleanup
// must be called once the interaction completes.
func (s *Session) Resolve(ctx context.Context, loc schemas.Locator) (string, func(), error) {
	token := uuid.New().String()
	params := locatorParams{
		Role:     string(loc.Role),
		Name:     loc.Name,
		Landmark: string(loc.Landmark),
		Ordinal:  loc.Ordinal,
		Attr:     targetAttribute,
		Token:    token,
	}
	encoded, err := jsonAPI.Marshal(params)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode locator: %w", err)
	}

	var found bool
	if err := s.Evaluate(ctx, fmt.Sprintf(locatorScript, encoded), &found); err != nil {
		return "", nil, fmt.Errorf("locator resolution failed: %w", err)
	}
	if !found {
		return "", nil, fmt.Errorf("%w: role=%s name=%q ordinal=%d",
			ErrLocatorNotFound, loc.Role, loc.Name, loc.Ordinal)
	}

	selector := fmt.Sprintf(`[%s=%q]`, targetAttribute, token)
	cleanup := func() {
		s.removeTargetTag(ctx, selector)
	}
	return selector, cleanup, nil
}

// removeTargetTag strips the temporary attribute, leaving the DOM as found.
func (s *Session) removeTargetTag(ctx context.Context, selector string) {
	detached := valueOnlyContext{ctx}
	cleanupCtx, cancel := context.WithTimeout(detached, 2*time.Second)
	defer cancel()

	script := fmt.Sprintf(`document.querySelector('%s')?.removeAttribute('%s')`,
		selector, targetAttribute)
	if err := s.Evaluate(cleanupCtx, script, nil); err != nil && cleanupCtx.Err() == nil {
		s.logger.Debug("Failed to remove target tag, element may be gone.",
			zap.String("selector", selector), zap.Error(err))
	}
}
