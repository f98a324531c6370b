package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/jmylchreest/overbar/internal/model"
)

// maxInput bounds how much a Reader will consume.
const maxInput = 10 * 1024 * 1024

// Reader imports notifications piped in as a JSON array, or as dunstctl
// history output.
type Reader struct {
	r io.Reader
}

// NewReader creates an importer reading from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Name returns the source identifier.
func (rd *Reader) Name() string {
	return "stdin"
}

// entry is the simple JSON shape accepted on input.
type entry struct {
	AppName   string `json:"app_name"`
	Summary   string `json:"summary"`
	Body      string `json:"body"`
	Timestamp int64  `json:"timestamp"`
	Urgency   *int   `json:"urgency"`
	Category  string `json:"category,omitempty"`
}

// Import reads all input. ctx is checked once the input has been read.
func (rd *Reader) Import(ctx context.Context) ([]model.Notification, error) {
	data, err := io.ReadAll(io.LimitReader(rd.r, maxInput))
	if err != nil {
		return nil, &Error{Source: "stdin", Message: "failed to read input", Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '{' {
		return NewDunst().Parse(data)
	}

	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &Error{Source: "stdin", Message: "failed to parse JSON input", Err: err}
	}

	var notifications []model.Notification
	for _, e := range entries {
		urgency := model.UrgencyNormal
		if e.Urgency != nil {
			urgency = *e.Urgency
		}
		n, err := newEntry("stdin", e.AppName, e.Summary, e.Body, e.Timestamp, urgency, e.Category)
		if err != nil {
			continue
		}
		notifications = append(notifications, *n)
	}
	return notifications, nil
}
