// Package bindable provides observable values for the UI event loop.
package bindable

import "errors"

// ErrDisabled is returned by Set on a disabled value.
var ErrDisabled = errors.New("bindable value is disabled")

// ValueChangedEvent describes a change to a Value.
type ValueChangedEvent[T comparable] struct {
	Old T
	New T
}

type subscriber[T comparable] struct {
	id int
	fn func(ValueChangedEvent[T])
}

// Value is an observable value. Subscribers run synchronously, in the order
// they were bound, on the goroutine that calls Set. A Value is not safe for
// concurrent use.
type Value[T comparable] struct {
	value    T
	disabled bool
	nextID   int
	subs     []subscriber[T]
}

// NewValue returns a Value holding initial.
func NewValue[T comparable](initial T) *Value[T] {
	return &Value[T]{value: initial}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	return v.value
}

// Set stores value and notifies subscribers if it differs from the current one.
func (v *Value[T]) Set(value T) error {
	if v.disabled {
		return ErrDisabled
	}
	if value == v.value {
		return nil
	}
	ev := ValueChangedEvent[T]{Old: v.value, New: value}
	v.value = value

	// Copy so a subscriber may unbind itself while being notified.
	subs := make([]subscriber[T], len(v.subs))
	copy(subs, v.subs)
	for _, s := range subs {
		s.fn(ev)
	}
	return nil
}

// Disabled reports whether Set is currently rejected.
func (v *Value[T]) Disabled() bool {
	return v.disabled
}

// SetDisabled enables or disables writes.
func (v *Value[T]) SetDisabled(disabled bool) {
	v.disabled = disabled
}

// BindValueChanged registers fn for future changes. With runOnceImmediately,
// fn is also called straight away with Old and New both set to the current
// value. The returned function removes the binding.
func (v *Value[T]) BindValueChanged(fn func(ValueChangedEvent[T]), runOnceImmediately bool) (unbind func()) {
	id := v.nextID
	v.nextID++
	v.subs = append(v.subs, subscriber[T]{id: id, fn: fn})

	if runOnceImmediately {
		fn(ValueChangedEvent[T]{Old: v.value, New: v.value})
	}

	return func() {
		for i, s := range v.subs {
			if s.id == id {
				v.subs = append(v.subs[:i], v.subs[i+1:]...)
				return
			}
		}
	}
}

// Subscribers returns the number of active bindings.
func (v *Value[T]) Subscribers() int {
	return len(v.subs)
}
