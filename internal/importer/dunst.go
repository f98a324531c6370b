package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/jmylchreest/overbar/internal/model"
)

// Dunst imports the history kept by dunst through dunstctl.
type Dunst struct {
	// uptime returns the system uptime; dunst timestamps count from boot.
	uptime func() (time.Duration, error)
}

// NewDunst creates a dunst importer.
func NewDunst() *Dunst {
	return &Dunst{uptime: readUptime}
}

// Name returns the source identifier.
func (d *Dunst) Name() string {
	return "dunst"
}

// Import runs dunstctl history.
func (d *Dunst) Import(ctx context.Context) ([]model.Notification, error) {
	output, err := exec.CommandContext(ctx, "dunstctl", "history").Output()
	if err != nil {
		return nil, &Error{Source: "dunst", Message: "failed to execute dunstctl history", Err: err}
	}
	return d.Parse(output)
}

// dunstHistory is the top-level dunstctl history document.
type dunstHistory struct {
	Type string         `json:"type"`
	Data [][]dunstEntry `json:"data"`
}

type dunstEntry struct {
	AppName   dunstValue `json:"appname"`
	Summary   dunstValue `json:"summary"`
	Body      dunstValue `json:"body"`
	Timestamp dunstValue `json:"timestamp"`
	Urgency   dunstValue `json:"urgency"`
	Category  dunstValue `json:"category"`
}

// dunstValue is dunst's typed value: {"type": "INT", "data": 123}.
type dunstValue struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func (v dunstValue) String() string {
	switch d := v.Data.(type) {
	case string:
		return d
	case float64:
		return strconv.FormatFloat(d, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(d)
	}
}

func (v dunstValue) Int64() int64 {
	switch d := v.Data.(type) {
	case float64:
		return int64(d)
	case int64:
		return d
	case int:
		return int64(d)
	case string:
		i, _ := strconv.ParseInt(d, 10, 64)
		return i
	default:
		return 0
	}
}

// Parse decodes dunstctl history output. Entries that do not make a valid
// notification are skipped.
func (d *Dunst) Parse(data []byte) ([]model.Notification, error) {
	var history dunstHistory
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, &Error{Source: "dunst", Message: "failed to parse dunstctl history JSON", Err: err}
	}

	var notifications []model.Notification
	for _, group := range history.Data {
		for _, entry := range group {
			n, err := newEntry("dunst",
				entry.AppName.String(),
				entry.Summary.String(),
				entry.Body.String(),
				d.unixTime(entry.Timestamp.Int64()),
				int(entry.Urgency.Int64()),
				entry.Category.String(),
			)
			if err != nil {
				continue
			}
			notifications = append(notifications, *n)
		}
	}
	return notifications, nil
}

// unixTime converts a dunst timestamp (microseconds since boot) to Unix
// seconds.
func (d *Dunst) unixTime(sinceBoot int64) int64 {
	if sinceBoot == 0 {
		return 0
	}
	uptime, err := d.uptime()
	if err != nil {
		return 0
	}
	boot := time.Now().Add(-uptime)
	return boot.Add(time.Duration(sinceBoot) * time.Microsecond).Unix()
}

func readUptime() (time.Duration, error) {
	data, err := os.ReadFile("/proc/uptime")
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty /proc/uptime")
	}
	seconds, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
