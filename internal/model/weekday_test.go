package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaySet(t *testing.T) {
	s, err := NewDaySet(Monday, Wednesday, Monday)
	require.NoError(t, err)

	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has(Monday))
	assert.False(t, s.Has(Sunday))
	assert.Equal(t, []int{1, 3}, s.Ints())

	s = s.Toggle(Sunday).Toggle(Monday)
	assert.Equal(t, []Weekday{Sunday, Wednesday}, s.Days())

	_, err = NewDaySet(Weekday(7))
	assert.Error(t, err)
	assert.False(t, s.Has(-1))
}

func TestDaySetJSON(t *testing.T) {
	s, err := DaySetFromInts([]int{5, 1, 3})
	require.NoError(t, err)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `[1,3,5]`, string(data))

	var back DaySet
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, s, back)

	assert.Error(t, json.Unmarshal([]byte(`[8]`), &back))

	require.NoError(t, json.Unmarshal([]byte(`4`), &back))
	assert.Equal(t, []Weekday{Thursday}, back.Days())
}

func TestWeekdayString(t *testing.T) {
	assert.Equal(t, "Sunday", Sunday.String())
	assert.Equal(t, "Weekday(9)", Weekday(9).String())
}

func TestParseThemeAndCategory(t *testing.T) {
	th, err := ParseTheme(" Sunset ")
	require.NoError(t, err)
	assert.Equal(t, ThemeSunset, th)
	_, err = ParseTheme("neon")
	assert.Error(t, err)

	c, err := ParseCategory("")
	require.NoError(t, err)
	assert.Equal(t, CategoryHabit, c)
	_, err = ParseCategory("sleep")
	assert.Error(t, err)
}
