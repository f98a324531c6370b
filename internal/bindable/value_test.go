package bindable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_SetNotifiesInOrder(t *testing.T) {
	v := NewValue(0)

	var seen []int
	v.BindValueChanged(func(e ValueChangedEvent[int]) {
		seen = append(seen, e.New)
	}, false)

	for _, n := range []int{1, 2, 3, 0, 144} {
		require.NoError(t, v.Set(n))
	}

	assert.Equal(t, []int{1, 2, 3, 0, 144}, seen)
	assert.Equal(t, 144, v.Get())
}

func TestValue_SameValueIsSilent(t *testing.T) {
	v := NewValue(5)
	calls := 0
	v.BindValueChanged(func(ValueChangedEvent[int]) { calls++ }, false)

	require.NoError(t, v.Set(5))
	assert.Equal(t, 0, calls)

	require.NoError(t, v.Set(6))
	require.NoError(t, v.Set(6))
	assert.Equal(t, 1, calls)
}

func TestValue_OldAndNew(t *testing.T) {
	v := NewValue("a")
	var got ValueChangedEvent[string]
	v.BindValueChanged(func(e ValueChangedEvent[string]) { got = e }, false)

	require.NoError(t, v.Set("b"))
	assert.Equal(t, "a", got.Old)
	assert.Equal(t, "b", got.New)
}

func TestValue_RunOnceImmediately(t *testing.T) {
	v := NewValue(7)
	var got []ValueChangedEvent[int]
	v.BindValueChanged(func(e ValueChangedEvent[int]) { got = append(got, e) }, true)

	require.Len(t, got, 1)
	assert.Equal(t, 7, got[0].Old)
	assert.Equal(t, 7, got[0].New)
}

func TestValue_Unbind(t *testing.T) {
	v := NewValue(0)
	calls := 0
	unbind := v.BindValueChanged(func(ValueChangedEvent[int]) { calls++ }, false)
	assert.Equal(t, 1, v.Subscribers())

	require.NoError(t, v.Set(1))
	unbind()
	unbind()
	require.NoError(t, v.Set(2))

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, v.Subscribers())
}

func TestValue_UnbindDuringNotify(t *testing.T) {
	v := NewValue(0)
	var first, second int
	var unbind func()
	unbind = v.BindValueChanged(func(ValueChangedEvent[int]) {
		first++
		unbind()
	}, false)
	v.BindValueChanged(func(ValueChangedEvent[int]) { second++ }, false)

	require.NoError(t, v.Set(1))
	require.NoError(t, v.Set(2))

	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
}

func TestValue_Disabled(t *testing.T) {
	v := NewValue(1)
	v.SetDisabled(true)
	assert.True(t, v.Disabled())

	err := v.Set(2)
	assert.ErrorIs(t, err, ErrDisabled)
	assert.Equal(t, 1, v.Get())

	v.SetDisabled(false)
	require.NoError(t, v.Set(2))
	assert.Equal(t, 2, v.Get())
}
