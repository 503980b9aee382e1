package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByName(t *testing.T) {
	got, ok := ByName("gruvbox")
	assert.True(t, ok)
	assert.Equal(t, "gruvbox", got.Name)

	_, ok = ByName("solarized")
	assert.False(t, ok)
}

func TestNextWraps(t *testing.T) {
	assert.Equal(t, "gruvbox", Next("nord").Name)
	assert.Equal(t, "nord", Next("gruvbox").Name)
	assert.Equal(t, "nord", Next("unknown").Name)
}
