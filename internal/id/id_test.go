package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	a, err := Generate("run")
	require.NoError(t, err)
	b := MustGenerate("run")

	assert.True(t, strings.HasPrefix(a, "run-"))
	assert.Len(t, a, len("run-")+21)
	assert.NotEqual(t, a, b)
}
