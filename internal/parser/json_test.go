package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjurado/filerep/internal/types"
)

const validUsers = `{
  "usuarios": [
    {"id": 1, "nombre": "Ana", "email": "ana@example.com", "activo": true, "ultimo_acceso": "2025-03-01T09:00:00"},
    {"id": 2, "nombre": "Luis", "email": "luis@example.com", "activo": false}
  ],
  "sesiones": [
    {"usuario_id": 1, "inicio": "2025-03-01T09:00:00", "duracion_segundos": 300, "paginas_visitadas": 4, "acciones": ["login", "search"]},
    {"usuario_id": 2, "inicio": "2025-03-01T14:30:00", "duracion_segundos": null, "paginas_visitadas": 1, "acciones": ["login", 42, "logout"]}
  ]
}`

func TestParseJSONValid(t *testing.T) {
	path := writeFixture(t, "users.json", validUsers)

	res := ParseJSON(path)
	require.NoError(t, res.Err)
	require.Equal(t, types.StatusOK, res.Status())

	data, ok := res.Data.(UserData)
	require.True(t, ok)
	require.Len(t, data.Users, 2)
	require.Len(t, data.Sessions, 2)

	assert.Equal(t, "Ana", data.Users[0].Name)
	assert.True(t, data.Users[0].Active)
	assert.Equal(t, "", data.Users[1].LastAccess)

	// null duration stays nil instead of becoming zero
	require.NotNil(t, data.Sessions[0].DurationSeconds)
	assert.Equal(t, 300.0, *data.Sessions[0].DurationSeconds)
	assert.Nil(t, data.Sessions[1].DurationSeconds)

	// non-string actions are dropped
	assert.Equal(t, []string{"login", "logout"}, data.Sessions[1].Actions)
}

func TestParseJSONEnumeratesBadRecords(t *testing.T) {
	content := `{
  "usuarios": [
    {"id": 1, "nombre": "Ana", "email": "a@b.c", "activo": true},
    {"id": "x", "nombre": "Luis", "email": "l@b.c", "activo": false},
    {"id": 3, "email": "sin@nombre.c", "activo": true}
  ],
  "sesiones": [
    {"usuario_id": 1.5}
  ]
}`
	path := writeFixture(t, "users.json", content)

	res := ParseJSON(path)
	require.Error(t, res.Err)
	msg := res.Err.Error()
	assert.Contains(t, msg, "JSON validation failed")
	assert.Contains(t, msg, `usuarios[1]: missing or invalid integer field "id"`)
	assert.Contains(t, msg, `usuarios[2]: missing or invalid string field "nombre"`)
	assert.Contains(t, msg, `sesiones[0]: missing or invalid integer field "usuario_id"`)
	assert.NotContains(t, msg, "usuarios[0]")
}

func TestParseJSONSyntaxError(t *testing.T) {
	path := writeFixture(t, "users.json", `{"usuarios": [`)
	res := ParseJSON(path)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "invalid JSON:")
}

func TestParseJSONMissingArrays(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"no usuarios", `{"sesiones": []}`, "usuarios"},
		{"no sesiones", `{"usuarios": []}`, "sesiones"},
		{"usuarios not array", `{"usuarios": {}, "sesiones": []}`, "usuarios"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFixture(t, "users.json", tt.content)
			res := ParseJSON(path)
			require.Error(t, res.Err)
			assert.Contains(t, res.Err.Error(), tt.field)
		})
	}
}

func TestParseJSONEmptyArraysAreValid(t *testing.T) {
	path := writeFixture(t, "users.json", `{"usuarios": [], "sesiones": []}`)
	res := ParseJSON(path)
	require.NoError(t, res.Err)
	data := res.Data.(UserData)
	assert.Empty(t, data.Users)
	assert.Empty(t, data.Sessions)
}
