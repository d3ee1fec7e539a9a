// File: api/schemas/schemas_test.go
package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionParamAliases(t *testing.T) {
	t.Parallel()
	a := ProposedAction{Params: map[string]string{"value": "hello"}}
	assert.Equal(t, "hello", a.Text())
	assert.Equal(t, "hello", a.Option())

	a = ProposedAction{Params: map[string]string{"text": "primary", "value": "fallback"}}
	assert.Equal(t, "primary", a.Text())

	v := ValidatedAction{Params: map[string]string{"keys": "Enter"}}
	assert.Equal(t, "Enter", v.Key())
	v = ValidatedAction{Params: map[string]string{"key": "Tab", "keys": "Enter"}}
	assert.Equal(t, "Tab", v.Key())
}

func TestBoundingBoxArea(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 600.0, BoundingBox{Width: 30, Height: 20}.Area())
	assert.Equal(t, 0.0, BoundingBox{}.Area())
}

func TestFormPlanIsForm(t *testing.T) {
	t.Parallel()
	var p *FormPlan
	assert.False(t, p.IsForm())
	assert.False(t, (&FormPlan{Type: "other"}).IsForm())
	assert.True(t, (&FormPlan{Type: "form"}).IsForm())
}

func TestRoleSets(t *testing.T) {
	t.Parallel()
	assert.True(t, FillableRoles[RoleTextbox])
	assert.True(t, FillableRoles[RoleContentEditable])
	assert.False(t, FillableRoles[RoleButton])

	assert.True(t, SelectableRoles[RoleCombobox])
	assert.False(t, SelectableRoles[RoleTextbox])
}
