package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routinetracker/internal/model"
)

func TestDayArrayConversion(t *testing.T) {
	set, err := model.NewDaySet(model.Sunday, model.Wednesday, model.Saturday)
	require.NoError(t, err)

	arr := toInt16s(set)
	assert.Equal(t, []int16{0, 3, 6}, arr)

	back, err := fromInt16s(arr)
	require.NoError(t, err)
	assert.Equal(t, set, back)

	_, err = fromInt16s([]int16{7})
	assert.Error(t, err)

	empty, err := fromInt16s(nil)
	require.NoError(t, err)
	assert.True(t, empty.Empty())
}
