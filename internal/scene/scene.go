// Package scene drives a bubbletea model from tests the way the runtime
// would: steps queue actions and assertions, commands run in the background,
// and their messages are delivered back to the model one frame at a time.
package scene

import (
	"reflect"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

// Defaults for until-steps.
const (
	DefaultMaxAttempts   = 100
	DefaultFrameInterval = 10 * time.Millisecond
)

type stepKind int

const (
	stepAction stepKind = iota
	stepAssert
	stepUntil
)

type step struct {
	name string
	kind stepKind
	fn   func()
	pred func() bool
}

// Option configures a Scene.
type Option func(*Scene)

// WithMaxAttempts sets how many frames an until-step may wait.
func WithMaxAttempts(n int) Option {
	return func(s *Scene) { s.maxAttempts = n }
}

// WithFrameInterval sets the delay between until-step attempts.
func WithFrameInterval(d time.Duration) Option {
	return func(s *Scene) { s.frameInterval = d }
}

// WithWindowSize sends a tea.WindowSizeMsg before any step runs.
func WithWindowSize(width, height int) Option {
	return func(s *Scene) {
		s.size = &tea.WindowSizeMsg{Width: width, Height: height}
	}
}

// Scene is a queue of steps run against one model.
type Scene struct {
	model tea.Model
	Input *InputManager

	maxAttempts   int
	frameInterval time.Duration
	size          *tea.WindowSizeMsg

	setUp    []step
	steps    []step
	tearDown []step

	mu      sync.Mutex
	pending []tea.Msg
	quit    bool
}

// New creates a scene for model.
func New(model tea.Model, opts ...Option) *Scene {
	s := &Scene{
		model:         model,
		maxAttempts:   DefaultMaxAttempts,
		frameInterval: DefaultFrameInterval,
	}
	s.Input = newInputManager(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Model returns the current model. Models with value receivers are replaced
// on every Update, so callers must not hold on to an earlier result.
func (s *Scene) Model() tea.Model {
	return s.model
}

// Quit reports whether the model has returned tea.Quit.
func (s *Scene) Quit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quit
}

// AddStep queues an action.
func (s *Scene) AddStep(name string, fn func()) {
	s.steps = append(s.steps, step{name: name, kind: stepAction, fn: fn})
}

// AddAssert queues a condition that must hold when it is reached.
func (s *Scene) AddAssert(name string, pred func() bool) {
	s.steps = append(s.steps, step{name: name, kind: stepAssert, pred: pred})
}

// AddUntilStep queues a condition that must hold within MaxAttempts frames.
func (s *Scene) AddUntilStep(name string, pred func() bool) {
	s.steps = append(s.steps, step{name: name, kind: stepUntil, pred: pred})
}

// AddSetUpStep queues an action to run before all other steps.
func (s *Scene) AddSetUpStep(name string, fn func()) {
	s.setUp = append(s.setUp, step{name: name, kind: stepAction, fn: fn})
}

// AddTearDownStep queues an action to run after all other steps, including
// after a failed step.
func (s *Scene) AddTearDownStep(name string, fn func()) {
	s.tearDown = append(s.tearDown, step{name: name, kind: stepAction, fn: fn})
}

// Run initialises the model and runs set-up steps, steps and tear-down steps
// in order. The first failing step stops the run; tear-down steps still run.
func (s *Scene) Run(t testing.TB) {
	t.Helper()

	defer func() {
		for _, st := range s.tearDown {
			t.Logf("tear down: %s", st.name)
			st.fn()
			s.Frame()
		}
	}()

	s.exec(s.model.Init())
	if s.size != nil {
		s.Send(*s.size)
	}
	s.Frame()

	for _, st := range s.setUp {
		s.runStep(t, st)
	}
	for _, st := range s.steps {
		s.runStep(t, st)
	}
}

func (s *Scene) runStep(t testing.TB, st step) {
	t.Helper()

	switch st.kind {
	case stepAction:
		t.Logf("step: %s", st.name)
		st.fn()
		s.Frame()

	case stepAssert:
		t.Logf("assert: %s", st.name)
		s.Frame()
		require.Truef(t, st.pred(), "assert %q failed", st.name)

	case stepUntil:
		t.Logf("until: %s", st.name)
		for attempt := 0; attempt < s.maxAttempts; attempt++ {
			s.Frame()
			if st.pred() {
				return
			}
			time.Sleep(s.frameInterval)
		}
		require.Failf(t, "until step timed out", "%q did not hold after %d attempts", st.name, s.maxAttempts)
	}
}

// Send delivers msg to the model immediately and starts any returned
// command.
func (s *Scene) Send(msg tea.Msg) {
	var cmd tea.Cmd
	s.model, cmd = s.model.Update(msg)
	s.exec(cmd)
}

// Frame delivers every message produced by finished commands. Messages
// produced while the frame runs wait for the next frame.
//
// As in the bubbletea runtime, independent commands (including the members
// of a tea.Batch) deliver in the order they finish, not the order they were
// issued. Only a tea.Sequence guarantees order.
func (s *Scene) Frame() {
	s.mu.Lock()
	msgs := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, msg := range msgs {
		switch msg := msg.(type) {
		case nil:
		case tea.BatchMsg:
			for _, cmd := range msg {
				s.exec(cmd)
			}
		case tea.QuitMsg:
			s.mu.Lock()
			s.quit = true
			s.mu.Unlock()
		default:
			if cmds, ok := sequence(msg); ok {
				s.execSequence(cmds)
				continue
			}
			s.Send(msg)
		}
	}
}

var cmdsType = reflect.TypeOf([]tea.Cmd(nil))

// sequence unwraps the message tea.Sequence produces. Its type is unexported,
// but it is a []tea.Cmd underneath.
func sequence(msg tea.Msg) ([]tea.Cmd, bool) {
	v := reflect.ValueOf(msg)
	if v.Kind() != reflect.Slice || !v.Type().ConvertibleTo(cmdsType) {
		return nil, false
	}
	return v.Convert(cmdsType).Interface().([]tea.Cmd), true
}

// exec runs cmd on its own goroutine. A command that never returns simply
// never delivers.
func (s *Scene) exec(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	go func() {
		msg := cmd()
		if msg == nil {
			return
		}
		s.mu.Lock()
		s.pending = append(s.pending, msg)
		s.mu.Unlock()
	}()
}

// execSequence runs cmds one after another on a single goroutine, so their
// messages are queued in order.
func (s *Scene) execSequence(cmds []tea.Cmd) {
	go func() {
		for _, cmd := range cmds {
			if cmd == nil {
				continue
			}
			msg := cmd()
			if msg == nil {
				continue
			}
			s.mu.Lock()
			s.pending = append(s.pending, msg)
			s.mu.Unlock()
		}
	}()
}
