// Package dbus captures desktop notifications from the session bus. It
// eavesdrops on org.freedesktop.Notifications.Notify calls without owning the
// name, so it runs alongside whatever notification daemon is installed.
package dbus
