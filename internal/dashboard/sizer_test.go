package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizerClamped(t *testing.T) {
	s, err := NewSizer(HeightClamped)
	require.NoError(t, err)

	assert.Equal(t, DefaultMinHeight, s.Size(0))
	assert.Equal(t, DefaultMinHeight, s.Size(6))
	assert.Equal(t, 7*DefaultPerItem+DefaultPadding, s.Size(7))
	assert.Equal(t, DefaultMaxHeight, s.Size(18))
	assert.Equal(t, DefaultMaxHeight, s.Size(500))

	prev := s.Size(0)
	for n := 1; n <= 40; n++ {
		h := s.Size(n)
		assert.GreaterOrEqual(t, h, prev)
		prev = h
	}
}

func TestSizerUnbounded(t *testing.T) {
	s, err := NewSizer(HeightUnbounded)
	require.NoError(t, err)
	assert.Equal(t, DefaultMinHeight, s.Size(-3))
	assert.Equal(t, 500*DefaultPerItem+DefaultPadding, s.Size(500))
}

func TestNewSizerRejectsUnknownPolicy(t *testing.T) {
	_, err := NewSizer("scroll")
	require.Error(t, err)

	s, err := NewSizer("")
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxHeight, s.MaxHeight)
}
