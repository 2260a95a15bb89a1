package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entitysync/internal/config"
)

const testTemplate = `{
	"Enemy": {"uid": "e1", "variables": {
		"hp": {"type": "int", "default": 10, "description": "Hit points"},
		"state": {"type": "enum", "default": "idle", "options": ["idle", "chase"]}
	}}
}`

func loadClass(t *testing.T, name string) *config.ClassDefinition {
	t.Helper()
	tmpl, err := config.ParseTemplate([]byte(testTemplate))
	require.NoError(t, err)
	class, err := tmpl.Class(name)
	require.NoError(t, err)
	return class
}

func TestNewInstanceIsNone(t *testing.T) {
	inst := NewInstance()
	assert.True(t, inst.IsNone())
	assert.Empty(t, inst.Properties)
}

func TestResetBuildsDefaultsInOrder(t *testing.T) {
	inst := NewInstance()
	inst.Reset(loadClass(t, "Enemy"))

	assert.Equal(t, "Enemy", inst.Class)
	require.Len(t, inst.Properties, 2)
	assert.Equal(t, "hp", inst.Properties[0].Name)
	assert.Equal(t, "int", inst.Properties[0].Type)
	assert.Equal(t, "Hit points", inst.Properties[0].Description)
	assert.Equal(t, int64(10), inst.Properties[0].Value.Get())
	assert.Equal(t, "state", inst.Properties[1].Name)
	assert.Equal(t, "idle", inst.Properties[1].Value.Get())
}

func TestPropertiesDoNotShareDefaults(t *testing.T) {
	class := loadClass(t, "Enemy")
	a := NewInstance()
	b := NewInstance()
	a.Reset(class)
	b.Reset(class)

	hp, ok := a.Property("hp")
	require.True(t, ok)
	require.NoError(t, hp.Value.Set(3))

	other, ok := b.Property("hp")
	require.True(t, ok)
	assert.Equal(t, int64(10), other.Value.Get())

	def, _ := class.Variable("hp")
	assert.Equal(t, int64(10), def.Default.Get())
}

func TestValues(t *testing.T) {
	inst := NewInstance()
	inst.Reset(loadClass(t, "Enemy"))

	values := inst.Values()
	require.Contains(t, values, "state")
	assert.Equal(t, "enum", values["state"].Type)
	assert.Equal(t, "idle", values["state"].Value)
	assert.Equal(t, [][3]string{{"idle", "idle", "idle"}, {"chase", "chase", "chase"}}, values["state"].Items)
	assert.Equal(t, int64(10), values["hp"].Value)
}

func TestCloneIsDeep(t *testing.T) {
	inst := NewInstance()
	inst.Reset(loadClass(t, "Enemy"))
	clone := inst.Clone()

	require.NoError(t, inst.Properties[0].Value.Set(1))
	assert.Equal(t, int64(10), clone.Properties[0].Value.Get())
}

func TestClearKeepsClass(t *testing.T) {
	inst := NewInstance()
	inst.Reset(loadClass(t, "Enemy"))
	inst.Clear()
	assert.Equal(t, "Enemy", inst.Class)
	assert.Empty(t, inst.Properties)
	_, ok := inst.Property("hp")
	assert.False(t, ok)
}
