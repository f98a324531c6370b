package toolbar

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/overbar/internal/input"
	"github.com/jmylchreest/overbar/internal/notify"
	"github.com/jmylchreest/overbar/internal/overlay"
	"github.com/jmylchreest/overbar/internal/ruleset"
	"github.com/jmylchreest/overbar/internal/scene"
	"github.com/jmylchreest/overbar/internal/skin"
)

type fixture struct {
	toolbar *Toolbar
	unread  *notify.StaticSource
	skins   *skin.Static
	scene   *scene.Scene
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	unread := notify.NewStaticSource(0)
	skins := skin.NewStatic(skin.Default())
	tb, err := New(Options{
		Rulesets:      ruleset.Default(),
		Notifications: unread,
		Skin:          skins,
		Width:         80,
		Height:        1,
	})
	require.NoError(t, err)

	f := &fixture{toolbar: tb, unread: unread, skins: skins}
	f.scene = scene.New(tb, scene.WithWindowSize(80, 24))
	scene.LegacySkinScene(f.scene, skins, tb)
	f.scene.AddSetUpStep("show toolbar", tb.Show)
	return f
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Options{Notifications: notify.NewStaticSource(0)})
	assert.Error(t, err)

	_, err = New(Options{Rulesets: ruleset.Default()})
	assert.Error(t, err)

	tb, err := New(Options{Rulesets: ruleset.Default(), Notifications: notify.NewStaticSource(0)})
	require.NoError(t, err)
	assert.Equal(t, overlay.Hidden, tb.State())
	assert.Equal(t, overlay.ActivationAll, tb.Gate().ActivationMode())
	assert.Equal(t, 1, tb.Height())
}

func TestToolbar_NotificationCounter(t *testing.T) {
	f := newFixture(t)

	counts := []int{1, 2, 3, 0, 144}
	for _, n := range counts {
		f.scene.AddStep(fmt.Sprintf("set notification count to %d", n), func() {
			require.NoError(t, f.unread.UnreadCount().Set(n))
		})
		f.scene.AddAssert(fmt.Sprintf("button shows %d", n), func() bool {
			return f.toolbar.Button().Count() == n
		})
	}
	f.scene.AddAssert("every value shown once in order", func() bool {
		return assert.Equal(t, []int{0, 1, 2, 3, 0, 144}, f.toolbar.Button().Displayed())
	})
	f.scene.AddAssert("view shows the count", func() bool {
		return strings.Contains(f.toolbar.View(), "144")
	})

	f.scene.Run(t)
}

func TestToolbar_RulesetSwitchingShortcut(t *testing.T) {
	for _, hidden := range []bool{false, true} {
		t.Run(fmt.Sprintf("hidden=%v", hidden), func(t *testing.T) {
			f := newFixture(t)
			if hidden {
				f.scene.AddStep("hide toolbar", f.toolbar.Hide)
			}

			var selector *RulesetSelector
			f.scene.AddStep("retrieve ruleset selector", func() { selector = f.toolbar.Selector() })

			available := ruleset.Default().AvailableRulesets()
			// Start away from the first ruleset so every switch is observable.
			f.scene.AddStep("select last ruleset", func() {
				require.NoError(t, selector.Current.Set(available[len(available)-1]))
			})

			for i := 0; i < 4; i++ {
				expected := available[i]
				digit := fmt.Sprint(i + 1)

				f.scene.AddStep(fmt.Sprintf("switch to ruleset %d via shortcut", i), func() {
					f.scene.Input.PressKey(input.Ctrl)
					f.scene.Input.Key(digit)
					f.scene.Input.ReleaseKey(input.Ctrl)
				})
				f.scene.AddUntilStep("ruleset switched", func() bool {
					return selector.Current.Get() == expected
				})
			}

			if hidden {
				f.scene.AddAssert("toolbar still hidden", func() bool {
					return f.toolbar.State() == overlay.Hidden
				})
			}

			f.scene.Run(t)
		})
	}
}

func TestToolbar_AltShortcut(t *testing.T) {
	f := newFixture(t)
	available := ruleset.Default().AvailableRulesets()

	f.scene.AddStep("press alt+3", func() {
		f.scene.Input.PressKey(input.Alt)
		f.scene.Input.Key("3")
		f.scene.Input.ReleaseKey(input.Alt)
	})
	f.scene.AddUntilStep("ruleset switched", func() bool {
		return f.toolbar.Selector().Current.Get() == available[2]
	})
	f.scene.AddStep("press ctrl+9", func() {
		f.scene.Input.PressKey(input.Ctrl)
		f.scene.Input.Key("9")
		f.scene.Input.ReleaseKey(input.Ctrl)
	})
	f.scene.AddStep("press plain 1", func() { f.scene.Input.Key("1") })
	f.scene.AddAssert("unbound keys ignored", func() bool {
		return f.toolbar.Selector().Current.Get() == available[2]
	})

	f.scene.Run(t)
}

func TestToolbar_RespectsOverlayActivation(t *testing.T) {
	tests := []struct {
		mode overlay.ActivationMode
		want overlay.Visibility
	}{
		{overlay.ActivationAll, overlay.Visible},
		{overlay.ActivationDisabled, overlay.Hidden},
		{overlay.ActivationUserTriggered, overlay.Hidden},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			f := newFixture(t)
			f.scene.AddStep(fmt.Sprintf("set activation mode to %s", tt.mode), func() {
				f.toolbar.SetActivationMode(tt.mode)
			})
			f.scene.AddStep("hide toolbar", f.toolbar.Hide)
			f.scene.AddStep("try to show toolbar", f.toolbar.Show)
			f.scene.AddAssert(fmt.Sprintf("toolbar is %s", tt.want), func() bool {
				return f.toolbar.State() == tt.want
			})
			f.scene.Run(t)
		})
	}
}

func TestToolbar_ToggleMsgIsUserTriggered(t *testing.T) {
	f := newFixture(t)

	f.scene.AddStep("user-triggered only", func() {
		f.toolbar.SetActivationMode(overlay.ActivationUserTriggered)
	})
	f.scene.AddStep("toggle", func() { f.scene.Send(ToggleMsg{}) })
	f.scene.AddAssert("hidden", func() bool { return f.toolbar.State() == overlay.Hidden })
	f.scene.AddStep("toggle", func() { f.scene.Send(ToggleMsg{}) })
	f.scene.AddAssert("visible", func() bool { return f.toolbar.State() == overlay.Visible })
	f.scene.AddStep("disable", func() { f.toolbar.SetActivationMode(overlay.ActivationDisabled) })
	f.scene.AddStep("toggle twice", func() {
		f.scene.Send(ToggleMsg{})
		f.scene.Send(ToggleMsg{})
	})
	f.scene.AddAssert("stays hidden", func() bool { return f.toolbar.State() == overlay.Hidden })

	f.scene.Run(t)
}

func TestToolbar_ScrollInput(t *testing.T) {
	f := newFixture(t)

	f.scene.AddStep("hover toolbar", func() {
		f.scene.Input.MoveMouseToRect(f.toolbar.Bounds())
	})
	f.scene.AddAssert("wheel over toolbar consumed", func() bool {
		return f.toolbar.HandleMouse(wheel(f.scene.Input.Position(), tea.MouseButtonWheelDown))
	})
	f.scene.AddAssert("wheel below toolbar passes through", func() bool {
		return !f.toolbar.HandleMouse(wheel(overlay.Point{X: 5, Y: 3}, tea.MouseButtonWheelDown))
	})
	f.scene.AddAssert("clicks pass through", func() bool {
		return !f.toolbar.HandleMouse(tea.MouseMsg{X: 5, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	})
	f.scene.AddStep("hide toolbar", f.toolbar.Hide)
	f.scene.AddAssert("hidden toolbar consumes nothing", func() bool {
		return !f.toolbar.HandleMouse(wheel(overlay.Point{X: 5, Y: 0}, tea.MouseButtonWheelUp))
	})

	f.scene.Run(t)
}

func TestToolbar_ScrollBeforeFirstResize(t *testing.T) {
	tb, err := New(Options{Rulesets: ruleset.Default(), Notifications: notify.NewStaticSource(0)})
	require.NoError(t, err)
	tb.Show()

	assert.True(t, tb.HandleMouse(wheel(overlay.Point{X: 40, Y: 0}, tea.MouseButtonWheelDown)),
		"the toolbar covers the whole top row until the width is known")
	assert.False(t, tb.HandleMouse(wheel(overlay.Point{X: 40, Y: 1}, tea.MouseButtonWheelDown)))

	tb.SetWidth(20)
	assert.False(t, tb.HandleMouse(wheel(overlay.Point{X: 40, Y: 0}, tea.MouseButtonWheelDown)))
}

func TestToolbar_View(t *testing.T) {
	f := newFixture(t)

	f.scene.AddAssert("legacy glyphs", func() bool {
		return strings.Contains(f.toolbar.View(), "(!)")
	})
	f.scene.AddAssert("current ruleset marked", func() bool {
		return strings.Contains(f.toolbar.View(), "> osu!")
	})
	f.scene.AddStep("switch to default skin", func() {
		f.skins.Set(skin.Default())
		f.toolbar.Reload()
	})
	f.scene.AddAssert("default glyphs", func() bool {
		return strings.Contains(f.toolbar.View(), skin.Default().Glyphs.Bell)
	})
	f.scene.AddStep("hide toolbar", f.toolbar.Hide)
	f.scene.AddAssert("hidden renders nothing", func() bool {
		return f.toolbar.View() == ""
	})

	f.scene.Run(t)
}

func TestToolbar_WindowSize(t *testing.T) {
	f := newFixture(t)
	f.scene.AddAssert("width from window", func() bool {
		return f.toolbar.Bounds() == overlay.Rect{Width: 80, Height: 1}
	})
	f.scene.AddStep("resize", func() { f.scene.Send(tea.WindowSizeMsg{Width: 120, Height: 40}) })
	f.scene.AddAssert("width follows resize", func() bool {
		return f.toolbar.Bounds().Width == 120
	})
	f.scene.Run(t)
}

func TestNotificationButton_OnIncrease(t *testing.T) {
	src := notify.NewStaticSource(2)
	b := NewNotificationButton(src)

	var rises [][2]int
	b.OnIncrease = func(from, to int) { rises = append(rises, [2]int{from, to}) }

	require.NoError(t, src.UnreadCount().Set(3))
	require.NoError(t, src.UnreadCount().Set(1))
	require.NoError(t, src.UnreadCount().Set(5))

	assert.Equal(t, [][2]int{{2, 3}, {1, 5}}, rises)
	assert.Equal(t, []int{2, 3, 1, 5}, b.Displayed())
	assert.Equal(t, "(!) 5", b.Label(skin.Legacy().Glyphs))

	b.Close()
	require.NoError(t, src.UnreadCount().Set(9))
	assert.Equal(t, 5, b.Count())
	assert.Equal(t, 0, src.UnreadCount().Subscribers())
}

func TestRulesetSelector_Bindings(t *testing.T) {
	s := NewRulesetSelector(ruleset.Default(), nil)
	require.Len(t, s.Bindings(), 4)
	assert.Equal(t, []string{"ctrl+1", "alt+1"}, s.Bindings()[0].Keys())
	assert.Equal(t, "osu!mania", s.Bindings()[3].Help().Desc)

	assert.Nil(t, s.Select(4))
	assert.Nil(t, s.HandleKey(input.NewChord("5", input.Ctrl)))

	cmd := s.HandleKey(input.NewChord("2", input.Ctrl))
	require.NotNil(t, cmd)
	assert.True(t, s.Update(cmd()))
	assert.Equal(t, "taiko", s.Current.Get().ShortName)
	assert.False(t, s.Update(tea.KeyMsg{}))
}

func wheel(p overlay.Point, button tea.MouseButton) tea.MouseMsg {
	return tea.MouseMsg{X: p.X, Y: p.Y, Action: tea.MouseActionPress, Button: button}
}
