package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBBox(t *testing.T) {
	b, err := parseBBox("48.99, 8.35, 49.05, 8.45")
	require.NoError(t, err)
	assert.Equal(t, 8.35, b.Min[0])
	assert.Equal(t, 48.99, b.Min[1])
	assert.Equal(t, 8.45, b.Max[0])
	assert.Equal(t, 49.05, b.Max[1])

	_, err = parseBBox("49.05,8.35,48.99,8.45") // south above north
	assert.Error(t, err)

	_, err = parseBBox("1,2,3")
	assert.Error(t, err)

	_, err = parseBBox("a,b,c,d")
	assert.Error(t, err)
}
