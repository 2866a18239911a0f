// Copyright © 2024 The Qanun authors

package debugger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/qanun/parser/token"
)

func TestBreakpointStore(t *testing.T) {
	s := NewBreakpointStore()
	bp := s.Set("a.qan", 3, "")
	assert.Equal(t, 1, bp.ID)
	again := s.Set("a.qan", 3, "x > 1")
	assert.Same(t, bp, again)
	assert.Equal(t, "x > 1", bp.Condition)

	assert.Same(t, bp, s.Match(&token.Location{File: "a.qan", Line: 3}))
	assert.Nil(t, s.Match(&token.Location{File: "a.qan", Line: 4}))
	assert.Nil(t, s.Match(&token.Location{File: "b.qan", Line: 3}))
	assert.Nil(t, s.Match(nil))

	s.Set("b.qan", 1, "")
	all := s.All()
	require.Len(t, all, 2)
	assert.Equal(t, "a.qan", all[0].File)

	assert.True(t, s.Remove("a.qan", 3))
	assert.False(t, s.Remove("a.qan", 3))
	s.ClearFile("b.qan")
	assert.Empty(t, s.All())
}

func TestBreakpointStore_SetForFile(t *testing.T) {
	s := NewBreakpointStore()
	s.Set("a.qan", 9, "")
	s.Set("ab.qan", 9, "")
	bps := s.SetForFile("a.qan", []int{1, 2}, []string{"", "n == 2"}, map[int]bool{1: true})
	require.Len(t, bps, 2)
	assert.True(t, bps[0].Verified)
	assert.False(t, bps[1].Verified)
	assert.Equal(t, "n == 2", bps[1].Condition)

	assert.Nil(t, s.Match(&token.Location{File: "a.qan", Line: 9}))
	assert.NotNil(t, s.Match(&token.Location{File: "ab.qan", Line: 9}))
	assert.NotNil(t, s.Match(&token.Location{File: "a.qan", Line: 1}))
	assert.Nil(t, s.Match(&token.Location{File: "a.qan", Line: 2}))
}

func TestBreakpointStore_ExceptionBreak(t *testing.T) {
	s := NewBreakpointStore()
	assert.Equal(t, ExceptionBreakNever, s.ExceptionBreak())
	s.SetExceptionBreak(ExceptionBreakAll)
	assert.Equal(t, ExceptionBreakAll, s.ExceptionBreak())
}
