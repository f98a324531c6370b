package toolbar

import (
	"strconv"

	"github.com/jmylchreest/overbar/internal/bindable"
	"github.com/jmylchreest/overbar/internal/notify"
	"github.com/jmylchreest/overbar/internal/skin"
)

// NotificationButton mirrors the unread notification count.
type NotificationButton struct {
	count     int
	displayed []int
	unbind    func()

	// OnIncrease runs when the count rises.
	OnIncrease func(from, to int)
}

// NewNotificationButton binds a button to src's unread count.
func NewNotificationButton(src notify.Source) *NotificationButton {
	b := &NotificationButton{}
	b.unbind = src.UnreadCount().BindValueChanged(func(ev bindable.ValueChangedEvent[int]) {
		b.display(ev.New)
		if ev.New > ev.Old && b.OnIncrease != nil {
			b.OnIncrease(ev.Old, ev.New)
		}
	}, true)
	return b
}

func (b *NotificationButton) display(count int) {
	b.count = count
	b.displayed = append(b.displayed, count)
}

// Count returns the value currently shown.
func (b *NotificationButton) Count() int {
	return b.count
}

// Displayed returns every value shown so far, in order, starting with the
// value at bind time.
func (b *NotificationButton) Displayed() []int {
	out := make([]int, len(b.displayed))
	copy(out, b.displayed)
	return out
}

// Label returns the unstyled button text.
func (b *NotificationButton) Label(glyphs skin.Glyphs) string {
	if b.count == 0 {
		return glyphs.Bell
	}
	return glyphs.Bell + " " + strconv.Itoa(b.count)
}

// View renders the button.
func (b *NotificationButton) View(styles skin.Styles, glyphs skin.Glyphs) string {
	if b.count == 0 {
		return styles.Bell.Render(glyphs.Bell)
	}
	return styles.Bell.Render(glyphs.Bell+" ") + styles.Badge.Render(strconv.Itoa(b.count))
}

// Close stops mirroring the source.
func (b *NotificationButton) Close() {
	if b.unbind != nil {
		b.unbind()
		b.unbind = nil
	}
}
