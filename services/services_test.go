package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSkills(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"go,rust", []string{"go", "rust"}},
		{" go , rust ", []string{"go", "rust"}},
		{"go,,rust,", []string{"go", "rust"}},
		{" , ", []string{}},
		{"", []string{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitSkills(tt.in), "input %q", tt.in)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2020-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2020-03-01T10:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 3, 1, 8, 30, 0, 0, time.UTC), d)

	_, err = ParseDate("03/01/2020")
	assert.Error(t, err)
}
