package ident

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantKind  Kind
		wantToken string
		wantValue string
		wantErr   bool
	}{
		{
			name:      "temporary",
			input:     "offline-abc",
			wantKind:  KindTemporary,
			wantToken: "abc",
		},
		{
			name:      "temporary consultation keeps full token",
			input:     "offline-consultation-42",
			wantKind:  KindTemporary,
			wantToken: "consultation-42",
		},
		{
			name:      "uuid",
			input:     "b692f5c0-2d88-4aa1-a9e1-13aa6e4976d5",
			wantKind:  KindPersisted,
			wantValue: "b692f5c0-2d88-4aa1-a9e1-13aa6e4976d5",
		},
		{
			name:      "date counter patient id",
			input:     "202610193",
			wantKind:  KindPersisted,
			wantValue: "202610193",
		},
		{
			name:    "empty",
			input:   "  ",
			wantErr: true,
		},
		{
			name:    "prefix only",
			input:   "offline-",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, id.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, id.Kind())
			assert.Equal(t, tt.wantToken, id.Token())
			assert.Equal(t, tt.wantValue, id.Value())
			assert.Equal(t, tt.input, id.String())
		})
	}
}

func TestNewTemporary(t *testing.T) {
	a := NewTemporary()
	b := NewTemporary()

	assert.True(t, a.IsTemporary())
	assert.False(t, a.IsPersisted())
	assert.NotEqual(t, a.String(), b.String())
	assert.Contains(t, a.String(), TemporaryPrefix)
}

func TestIsUUID(t *testing.T) {
	assert.True(t, IsUUID("b692f5c0-2d88-4aa1-a9e1-13aa6e4976d5"))
	assert.True(t, IsUUID("B692F5C0-2D88-4AA1-A9E1-13AA6E4976D5"))
	assert.False(t, IsUUID("offline-b692f5c0-2d88-4aa1-a9e1-13aa6e4976d5"))
	assert.False(t, IsUUID("202610193"))
	assert.False(t, IsUUID(""))
}

func TestEqual(t *testing.T) {
	assert.True(t, Temporary("x").Equal(Temporary("x")))
	assert.False(t, Temporary("x").Equal(Persisted("x")))
	assert.False(t, Persisted("x").Equal(Persisted("y")))
}

func TestID_JSON(t *testing.T) {
	type holder struct {
		ID ID `json:"id"`
	}

	data, err := json.Marshal(holder{ID: Temporary("tok")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"offline-tok"}`, string(data))

	var h holder
	require.NoError(t, json.Unmarshal([]byte(`{"id":"2026101912"}`), &h))
	assert.True(t, h.ID.IsPersisted())
	assert.Equal(t, "2026101912", h.ID.Value())

	var empty holder
	require.NoError(t, json.Unmarshal([]byte(`{"id":""}`), &empty))
	assert.True(t, empty.ID.IsZero())

	var null holder
	require.NoError(t, json.Unmarshal([]byte(`{"id":null}`), &null))
	assert.True(t, null.ID.IsZero())

	var bad holder
	assert.Error(t, json.Unmarshal([]byte(`{"id":12}`), &bad))
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParse("") })
	assert.NotPanics(t, func() { MustParse("offline-1") })
}
