package dbus

import (
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/overbar/internal/model"
)

// Source is the model.Notification source recorded for captured calls.
const Source = "dbus"

// ErrMalformedNotify is returned for a Notify call whose arguments do not
// match the freedesktop signature.
var ErrMalformedNotify = errors.New("malformed Notify call")

// Notify holds the arguments of an org.freedesktop.Notifications.Notify call.
type Notify struct {
	AppName       string
	ReplacesID    uint32
	AppIcon       string
	Summary       string
	Body          string
	Actions       []string // alternating key, label pairs
	Hints         map[string]dbus.Variant
	ExpireTimeout int32 // -1 = server default, 0 = never expire
}

// ParseNotify decodes the body of a Notify method call:
// (susssasa{sv}i).
func ParseNotify(body []any) (*Notify, error) {
	if len(body) < 8 {
		return nil, fmt.Errorf("%w: %d arguments", ErrMalformedNotify, len(body))
	}

	n := &Notify{}
	var ok bool
	if n.AppName, ok = body[0].(string); !ok {
		return nil, fmt.Errorf("%w: app_name is %T", ErrMalformedNotify, body[0])
	}
	if n.ReplacesID, ok = body[1].(uint32); !ok {
		return nil, fmt.Errorf("%w: replaces_id is %T", ErrMalformedNotify, body[1])
	}
	if n.AppIcon, ok = body[2].(string); !ok {
		return nil, fmt.Errorf("%w: app_icon is %T", ErrMalformedNotify, body[2])
	}
	if n.Summary, ok = body[3].(string); !ok {
		return nil, fmt.Errorf("%w: summary is %T", ErrMalformedNotify, body[3])
	}
	if n.Body, ok = body[4].(string); !ok {
		return nil, fmt.Errorf("%w: body is %T", ErrMalformedNotify, body[4])
	}

	// The remaining arguments are optional in practice.
	n.Actions, _ = body[5].([]string)
	n.Hints, _ = body[6].(map[string]dbus.Variant)
	if timeout, ok := body[7].(int32); ok {
		n.ExpireTimeout = timeout
	}
	return n, nil
}

// Urgency returns the urgency hint, or model.UrgencyNormal.
func (n *Notify) Urgency() int {
	if v, ok := n.Hints["urgency"]; ok {
		if b, ok := v.Value().(byte); ok {
			return int(b)
		}
	}
	return model.UrgencyNormal
}

// Category returns the category hint.
func (n *Notify) Category() string {
	return n.hintString("category")
}

// DesktopEntry returns the desktop-entry hint.
func (n *Notify) DesktopEntry() string {
	return n.hintString("desktop-entry")
}

// Transient reports whether the sender asked for the notification not to be
// kept in history.
func (n *Notify) Transient() bool {
	if v, ok := n.Hints["transient"]; ok {
		if b, ok := v.Value().(bool); ok {
			return b
		}
	}
	return false
}

func (n *Notify) hintString(key string) string {
	if v, ok := n.Hints[key]; ok {
		if s, ok := v.Value().(string); ok {
			return s
		}
	}
	return ""
}

// ToNotification converts the call into a history entry. A missing app name
// falls back to the desktop entry, then "unknown".
func (n *Notify) ToNotification() (model.Notification, error) {
	entry, err := model.NewNotification(Source)
	if err != nil {
		return model.Notification{}, err
	}

	entry.AppName = n.AppName
	if entry.AppName == "" {
		entry.AppName = n.DesktopEntry()
	}
	if entry.AppName == "" {
		entry.AppName = "unknown"
	}
	entry.Summary = n.Summary
	entry.Body = n.Body
	entry.Category = n.Category()
	entry.SetUrgency(n.Urgency())
	entry.EnsureContentHash()

	if err := entry.Validate(); err != nil {
		return model.Notification{}, fmt.Errorf("invalid notification from %s: %w", entry.AppName, err)
	}
	return *entry, nil
}
