package schemas

// -- Page Element Schemas --

// Role is the normalized UI role of an interactable element, derived from the
// explicit ARIA role where present and from tag/type otherwise.
type Role string

const (
	RoleButton          Role = "button"
	RoleLink            Role = "link"
	RoleTextbox         Role = "textbox"
	RoleTextarea        Role = "textarea"
	RoleSearchbox       Role = "searchbox"
	RoleCombobox        Role = "combobox"
	RoleCheckbox        Role = "checkbox"
	RoleRadio           Role = "radio"
	RoleSwitch          Role = "switch"
	RoleMenuItem        Role = "menuitem"
	RoleTab             Role = "tab"
	RoleContentEditable Role = "contenteditable"
	RoleOption          Role = "option"
)

// InteractableRoles is the fixed set of roles the catalog collects. Snapshot
// entries with any other role are discarded before ids are assigned.
var InteractableRoles = map[Role]bool{
	RoleButton:          true,
	RoleLink:            true,
	RoleTextbox:         true,
	RoleTextarea:        true,
	RoleSearchbox:       true,
	RoleCombobox:        true,
	RoleCheckbox:        true,
	RoleRadio:           true,
	RoleSwitch:          true,
	RoleMenuItem:        true,
	RoleTab:             true,
	RoleContentEditable: true,
	RoleOption:          true,
}

// FillableRoles are the only roles a fill action may legally target.
var FillableRoles = map[Role]bool{
	RoleTextbox:         true,
	RoleTextarea:        true,
	RoleSearchbox:       true,
	RoleCombobox:        true,
	RoleContentEditable: true,
}

// SelectableRoles are the only roles a select action may legally target.
var SelectableRoles = map[Role]bool{
	RoleCombobox: true,
	RoleMenuItem: true,
}

// Landmark identifies the nearest enclosing semantic page region. Empty means
// the element sits outside any recognized landmark, which is common.
type Landmark string

const (
	LandmarkMain          Landmark = "main"
	LandmarkNavigation    Landmark = "navigation"
	LandmarkComplementary Landmark = "complementary"
	LandmarkBanner        Landmark = "banner"
	LandmarkContentInfo   Landmark = "contentinfo"
	LandmarkRegion        Landmark = "region"
)

// BoundingBox is an element's position and size in page pixels.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns width*height in square pixels.
func (b BoundingBox) Area() float64 { return b.Width * b.Height }

// Locator is a serializable, re-resolvable reference to a live element.
// It is interpreted by an explicit lookup routine in the browser package and
// is never evaluated as code. Ordinal disambiguates between elements that
// share role, name and landmark, counted in document order.
type Locator struct {
	Role     Role     `json:"role"`
	Name     string   `json:"name,omitempty"`
	Landmark Landmark `json:"landmark,omitempty"`
	Ordinal  int      `json:"ordinal"`
}

// ElementRecord is one interactable control observed on the page. Ids are
// dense integers (as strings) unique within a single catalog snapshot; they
// are re-assigned on every refresh and must never be persisted across steps.
type ElementRecord struct {
	ID          string      `json:"id"`
	Role        Role        `json:"role"`
	Name        string      `json:"name"`
	Landmark    Landmark    `json:"landmark,omitempty"`
	Placeholder string      `json:"placeholder,omitempty"`
	Value       string      `json:"value,omitempty"`
	BoundingBox BoundingBox `json:"bounding_box"`
	Locator     Locator     `json:"locator"`
}

// ScoredElement pairs an ElementRecord with its ranking score and whether it
// made the candidate cut offered to the proposer.
type ScoredElement struct {
	ElementRecord
	Score    float64 `json:"score"`
	Selected bool    `json:"selected"`
}
