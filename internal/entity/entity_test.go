package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name       string
		entityType string
		values     Values
		wantErr    error
	}{
		{"node", TypeNode, Values{"type": "article", "title": "Hello"}, nil},
		{"node without bundle", TypeNode, Values{"title": "Hello"}, ErrMissingField},
		{"node with empty title", TypeNode, Values{"type": "page", "title": ""}, nil},
		{"user", TypeUser, Values{"name": "Ana"}, nil},
		{"unknown type", "comment", Values{"name": "x"}, ErrUnknownEntityType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Build(tt.entityType, tt.values)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, e.IsNew())
			assert.NotEmpty(t, e.UUID())
			assert.Equal(t, tt.entityType, e.Type())
		})
	}
}

func TestEntity_AddTranslation(t *testing.T) {
	e := New(TypeNode, Values{"type": "page", "title": "Home", "langcode": "en"})

	require.NoError(t, e.AddTranslation("es", Values{"title": "Inicio"}))
	require.ErrorIs(t, e.AddTranslation("es", Values{"title": "Otra"}), ErrTranslationExists)
	require.ErrorIs(t, e.AddTranslation("en", Values{"title": "Home"}), ErrTranslationExists)
	require.Error(t, e.AddTranslation("", Values{}))

	tr, ok := e.Translation("es")
	require.True(t, ok)
	assert.Equal(t, "Inicio", tr.String("title"))
	assert.Equal(t, []string{"es"}, e.TranslationLanguages())
}

func TestEntity_ValuesAreCopied(t *testing.T) {
	in := Values{"type": "page", "title": "Home"}
	e := New(TypeNode, in)
	in["title"] = "changed"

	out := e.Values()
	out["title"] = "changed again"

	assert.Equal(t, "Home", e.Label())
}

func TestEntity_Matches(t *testing.T) {
	e := Restore(TypeUser, 7, "u-1", "en", Values{"name": "Ana Pérez", "status": 1}, nil)

	tests := []struct {
		name  string
		props Properties
		want  bool
	}{
		{"by name", Properties{"name": {"Ana Pérez"}}, true},
		{"by uuid", Properties{"uuid": {"u-2", "u-1"}}, true},
		{"by id", Properties{"id": {"7"}}, true},
		{"numeric field", Properties{"status": {"1"}}, true},
		{"wrong name", Properties{"name": {"ana pérez"}}, false},
		{"missing field", Properties{"mail": {"x"}}, false},
		{"all must match", Properties{"name": {"Ana Pérez"}, "uuid": {"other"}}, false},
		{"empty matches all", Properties{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Matches(tt.props))
		})
	}
}
