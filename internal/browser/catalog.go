// File: internal/browser/catalog.go
package browser

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"go.uber.org/zap"

	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/api/schemas"
	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/internal/config"
)

// jsHelpers holds the role, accessible-name and landmark derivation shared by
// the catalog snapshot and the locator resolver. Both scripts must enumerate
// and classify elements identically, otherwise locator ordinals drift.
const jsHelpers = `
	const EXPLICIT_ROLES = ['button','link','textbox','textarea','searchbox','combobox',
		'checkbox','radio','switch','menuitem','tab','option'];
	const EXPLICIT_LANDMARKS = {'main':'main','region':'region','navigation':'navigation',
		'complementary':'complementary','banner':'banner','contentinfo':'contentinfo'};
	const IMPLICIT_LANDMARKS = {'main':'main','nav':'navigation','aside':'complementary',
		'header':'banner','footer':'contentinfo','section':'region'};
	const SELECTOR = 'a[href], button, input, select, textarea, option, ' +
		'[role], [contenteditable="true"], [tabindex]';

	function computeRole(el) {
		const explicit = (el.getAttribute('role') || '').trim().toLowerCase();
		if (EXPLICIT_ROLES.indexOf(explicit) >= 0) return explicit;
		const tag = el.tagName.toLowerCase();
		if (tag === 'a' && el.hasAttribute('href')) return 'link';
		if (tag === 'button') return 'button';
		if (tag === 'select') return 'combobox';
		if (tag === 'textarea') return 'textarea';
		if (tag === 'option') return 'option';
		if (el.isContentEditable) return 'contenteditable';
		if (tag === 'input') {
			const t = (el.getAttribute('type') || 'text').toLowerCase();
			if (t === 'hidden') return '';
			if (t === 'checkbox') return 'checkbox';
			if (t === 'radio') return 'radio';
			if (t === 'search') return 'searchbox';
			if (t === 'submit' || t === 'button' || t === 'reset' || t === 'image') return 'button';
			return 'textbox';
		}
		return '';
	}

	function accessibleName(el) {
		const aria = el.getAttribute('aria-label');
		if (aria && aria.trim()) return aria.trim();
		const title = el.getAttribute('title');
		if (title && title.trim()) return title.trim();
		const labelledBy = el.getAttribute('aria-labelledby');
		if (labelledBy) {
			const parts = [];
			labelledBy.trim().split(/\s+/).forEach(function(id) {
				const ref = document.getElementById(id);
				if (ref) parts.push((ref.innerText || ref.textContent || '').trim());
			});
			const joined = parts.join(' ').trim();
			if (joined) return joined;
		}
		if (el.labels && el.labels.length > 0) {
			const label = (el.labels[0].innerText || '').trim();
			if (label) return label;
		}
		const text = (el.innerText || '').trim();
		if (text) return text.replace(/\s+/g, ' ');
		const placeholder = el.getAttribute('placeholder');
		if (placeholder && placeholder.trim()) return placeholder.trim();
		return '';
	}

	function landmarkOf(el) {
		let node = el.parentElement;
		while (node) {
			const role = (node.getAttribute('role') || '').trim().toLowerCase();
			if (EXPLICIT_LANDMARKS[role]) return EXPLICIT_LANDMARKS[role];
			node = node.parentElement;
		}
		node = el.parentElement;
		while (node) {
			const tag = node.tagName.toLowerCase();
			if (IMPLICIT_LANDMARKS[tag]) return IMPLICIT_LANDMARKS[tag];
			node = node.parentElement;
		}
		return '';
	}

	function isVisible(el) {
		const rect = el.getBoundingClientRect();
		if (rect.width <= 0 || rect.height <= 0) return false;
		const style = window.getComputedStyle(el);
		if (style.display === 'none' || style.visibility === 'hidden') return false;
		return true;
	}
`

// catalogScript walks every interactable element in document order and
// returns its classification plus geometry. Ordinals are counted here, before
// any host-side filtering, so they stay valid for later re-resolution against
// the live page.
const catalogScript = `(function() {
	` + jsHelpers + `
	const counters = {};
	const out = [];
	document.querySelectorAll(SELECTOR).forEach(function(el) {
		if (el.disabled) return;
		const role = computeRole(el);
		if (!role) return;
		if (!isVisible(el)) return;
		const name = accessibleName(el);
		const landmark = landmarkOf(el);
		const key = role + '|' + name + '|' + landmark;
		const ordinal = counters[key] || 0;
		counters[key] = ordinal + 1;
		const rect = el.getBoundingClientRect();
		out.push({
			role: role,
			name: name,
			landmark: landmark,
			placeholder: el.getAttribute ? (el.getAttribute('placeholder') || '') : '',
			value: typeof el.value === 'string' ? el.value : '',
			x: rect.x, y: rect.y, width: rect.width, height: rect.height,
			ordinal: ordinal
		});
	});
	return out;
})()`

// rawElement mirrors one entry of the snapshot script's output.
type rawElement struct {
	Role        string  `json:"role"`
	Name        string  `json:"name"`
	Landmark    string  `json:"landmark"`
	Placeholder string  `json:"placeholder"`
	Value       string  `json:"value"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Ordinal     int     `json:"ordinal"`
}

// Catalog produces the per-step element catalog from the live page.
type Catalog struct {
	cfg    config.CatalogConfig
	logger *zap.Logger
}

func NewCatalog(cfg config.CatalogConfig, logger *zap.Logger) *Catalog {
	return &Catalog{
		cfg:    cfg,
		logger: logger.Named("catalog"),
	}
}

// dedupPreferredRoles break ties between overlapping boxes with equally
// informative names.
var dedupPreferredRoles = map[schemas.Role]bool{
	schemas.RoleButton:   true,
	schemas.RoleTextbox:  true,
	schemas.RoleCombobox: true,
}

// Snapshot collects the current interactable elements. Degenerate boxes are
// dropped, overlapping duplicates are collapsed, and ids are reassigned
// densely from 0. Ids are therefore only meaningful within a single snapshot.
func (c *Catalog) Snapshot(ctx context.Context, s *Session) ([]schemas.ElementRecord, error) {
	var raw []rawElement
	if err := s.Evaluate(ctx, catalogScript, &raw); err != nil {
		return nil, fmt.Errorf("failed to snapshot page elements: %w", err)
	}

	records := c.buildRecords(raw)
	c.logger.Debug("Catalog snapshot complete.",
		zap.Int("raw", len(raw)),
		zap.Int("kept", len(records)))
	return records, nil
}

// buildRecords applies the area filter and geometry dedup, then assigns dense
// zero-based ids in document order.
func (c *Catalog) buildRecords(raw []rawElement) []schemas.ElementRecord {
	kept := make([]rawElement, 0, len(raw))
	seen := make(map[string]int)
	for _, el := range raw {
		if !schemas.InteractableRoles[schemas.Role(el.Role)] {
			continue
		}
		if el.Width*el.Height < c.cfg.MinArea {
			continue
		}
		key := c.dedupKey(el)
		if idx, ok := seen[key]; ok {
			if betterDuplicate(el, kept[idx]) {
				kept[idx] = el
			}
			continue
		}
		seen[key] = len(kept)
		kept = append(kept, el)
	}

	records := make([]schemas.ElementRecord, 0, len(kept))
	for i, el := range kept {
		records = append(records, schemas.ElementRecord{
			ID:          strconv.Itoa(i),
			Role:        schemas.Role(el.Role),
			Name:        el.Name,
			Landmark:    schemas.Landmark(el.Landmark),
			Placeholder: el.Placeholder,
			Value:       el.Value,
			BoundingBox: schemas.BoundingBox{
				X:      el.X,
				Y:      el.Y,
				Width:  el.Width,
				Height: el.Height,
			},
			Locator: schemas.Locator{
				Role:     schemas.Role(el.Role),
				Name:     el.Name,
				Landmark: schemas.Landmark(el.Landmark),
				Ordinal:  el.Ordinal,
			},
		})
	}
	return records
}

// dedupKey buckets boxes by their rounded geometry so nested wrappers that
// occupy the same pixels collapse into one record.
func (c *Catalog) dedupKey(el rawElement) string {
	tol := c.cfg.DedupTolerance
	if tol <= 0 {
		tol = 1
	}
	return fmt.Sprintf("%d:%d:%d:%d",
		int(math.Round(el.X/tol)),
		int(math.Round(el.Y/tol)),
		int(math.Round(el.Width/tol)),
		int(math.Round(el.Height/tol)))
}

// betterDuplicate reports whether candidate should replace incumbent within a
// dedup bucket. A named element beats an unnamed one, a longer name beats a
// shorter one, and primary control roles beat wrappers.
func betterDuplicate(candidate, incumbent rawElement) bool {
	candidateNamed := candidate.Name != ""
	incumbentNamed := incumbent.Name != ""
	if candidateNamed != incumbentNamed {
		return candidateNamed
	}
	if len(candidate.Name) != len(incumbent.Name) {
		return len(candidate.Name) > len(incumbent.Name)
	}
	return dedupPreferredRoles[schemas.Role(candidate.Role)] &&
		!dedupPreferredRoles[schemas.Role(incumbent.Role)]
}
