// File: session/commandslot_test.go
package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandSlot_TakeClearsAfterRead(t *testing.T) {
	s := &commandSlot{}
	s.Set('W')
	assert.Equal(t, byte('W'), s.Take())
	assert.Equal(t, byte(0), s.Take())
}

func TestCommandSlot_LatestSetWins(t *testing.T) {
	s := &commandSlot{}
	s.Set('W')
	s.Set('A')
	assert.Equal(t, byte('A'), s.Take())
}
