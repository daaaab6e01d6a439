package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStack(t *testing.T) {
	s := &Stack[string]{}

	_, ok := s.Pop()
	assert.False(t, ok)

	s.Push("a")
	s.Push("b")

	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains("a"))
	assert.False(t, s.Contains("c"))
	assert.Equal(t, []string{"a", "b"}, s.Items())

	top, ok := s.Pop()
	assert.True(t, ok)
	assert.Equal(t, "b", top)
	assert.Equal(t, 1, s.Len())
}

func TestStackItemsIsASnapshot(t *testing.T) {
	s := &Stack[int]{}
	s.Push(1)

	items := s.Items()
	s.Push(2)

	assert.Equal(t, []int{1}, items)
}
