package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusToggle(t *testing.T) {
	assert.Equal(t, StatusInactive, StatusActive.Toggle())
	assert.Equal(t, StatusActive, StatusInactive.Toggle())
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusActive.Valid())
	assert.True(t, StatusInactive.Valid())
	assert.False(t, Status("suspended").Valid())
	assert.False(t, Status("").Valid())
}
