package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAbbreviateUUID(t *testing.T) {
	assert.Equal(t, "22cd8a0b…", AbbreviateUUID("22cd8a0b-72e7-4212-9099-0764f8e9c5ac"))
	assert.Equal(t, "USR-0042", AbbreviateUUID("USR-0042"))
	assert.Equal(t, "17", AbbreviateUUID("17"))
}

func TestIsValidUUID(t *testing.T) {
	assert.True(t, IsValidUUID("22CD8A0B-72E7-4212-9099-0764F8E9C5AC"))
	assert.False(t, IsValidUUID("not-a-uuid"))
}
