package id

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		v := New()
		require.False(t, seen[v], "duplicate id %s", v)
		seen[v] = true
	}
}

func TestNew_Format(t *testing.T) {
	v := New()
	assert.Len(t, v, 36)
	assert.Equal(t, "7", v[14:15], "version nibble")
}

func TestTime(t *testing.T) {
	before := time.Now().Add(-time.Second)
	v := New()
	after := time.Now().Add(time.Second)

	got, err := Time(v)
	require.NoError(t, err)
	assert.True(t, got.After(before), "id time %s before %s", got, before)
	assert.True(t, got.Before(after), "id time %s after %s", got, after)
}

func TestTime_Errors(t *testing.T) {
	badInputs := []string{
		"",
		"not-an-id",
		"6ba7b810-9dad-11d1-80b4-00c04fd430c8", // version 1
	}
	for _, input := range badInputs {
		_, err := Time(input)
		assert.Error(t, err, "expected error for input: %s", input)
	}
}
