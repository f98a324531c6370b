package dbus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/overbar/internal/model"
)

const (
	notificationsInterface = "org.freedesktop.Notifications"
	notifyMember           = "Notify"
	notifyMatchRule        = "type='method_call',interface='org.freedesktop.Notifications',member='Notify'"
)

// Sink receives captured notifications. *store.Store satisfies it.
type Sink interface {
	Add(n model.Notification) error
}

// Monitor passively observes Notify calls on the session bus and adds each
// one to a Sink.
type Monitor struct {
	sink   Sink
	logger *slog.Logger
}

// NewMonitor creates a monitor that feeds sink.
func NewMonitor(sink Sink, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{sink: sink, logger: logger}
}

// Run connects to the session bus and captures notifications until ctx is
// cancelled. Failing to connect or to become a monitor is returned; malformed
// calls are logged and skipped.
func (m *Monitor) Run(ctx context.Context) error {
	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if err := m.becomeMonitor(conn); err != nil {
		return err
	}

	ch := make(chan *dbus.Message, 100)
	conn.Eavesdrop(ch)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			m.handle(msg)
		}
	}
}

func (m *Monitor) becomeMonitor(conn *dbus.Conn) error {
	err := conn.BusObject().Call(
		"org.freedesktop.DBus.Monitoring.BecomeMonitor",
		0,
		[]string{notifyMatchRule},
		uint32(0),
	).Err
	if err == nil {
		m.logger.Info("started D-Bus monitor using BecomeMonitor")
		return nil
	}

	// Older buses only offer eavesdropping through AddMatch.
	m.logger.Warn("BecomeMonitor not available, trying AddMatch", "error", err)
	if err := conn.BusObject().Call(
		"org.freedesktop.DBus.AddMatch",
		0,
		notifyMatchRule+",eavesdrop='true'",
	).Err; err != nil {
		return fmt.Errorf("failed to add match rule (eavesdrop may require permissions): %w", err)
	}
	m.logger.Info("started D-Bus monitor using AddMatch with eavesdrop")
	return nil
}

// handle records msg when it is a Notify call.
func (m *Monitor) handle(msg *dbus.Message) {
	if msg.Type != dbus.TypeMethodCall {
		return
	}
	if v, ok := msg.Headers[dbus.FieldInterface]; !ok || v.Value() != notificationsInterface {
		return
	}
	if v, ok := msg.Headers[dbus.FieldMember]; !ok || v.Value() != notifyMember {
		return
	}

	call, err := ParseNotify(msg.Body)
	if err != nil {
		m.logger.Warn("skipping notification", "error", err)
		return
	}
	if call.Transient() {
		m.logger.Debug("skipping transient notification", "app", call.AppName)
		return
	}

	n, err := call.ToNotification()
	if err != nil {
		m.logger.Warn("skipping notification", "error", err)
		return
	}
	if err := m.sink.Add(n); err != nil {
		m.logger.Warn("failed to store notification", "app", n.AppName, "error", err)
		return
	}
	m.logger.Debug("captured notification", "app", n.AppName, "summary", n.Summary, "id", n.ID)
}
