package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/wiring/pkg/wiring"
)

func browseModel(t *testing.T) DeviceListModel {
	t.Helper()
	res, err := wiring.Build(wiring.Declarations{
		Devices: []wiring.DeviceDecl{
			{Name: "PSU", Type: "LRS-35", Pins: []string{"V+", "GND"}},
			{Name: "MCU", Pins: []string{"VCC", "GND", "RST"}},
		},
		Connections: []wiring.ConnectionDecl{
			{From: wiring.ParseEndpoint("PSU, V+, GND"), To: wiring.ParseEndpoint("MCU, VCC, GND")},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return NewDeviceListModel(res)
}

func press(m DeviceListModel, key string) DeviceListModel {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next.(DeviceListModel)
}

func TestDeviceListNavigation(t *testing.T) {
	m := browseModel(t)

	m = press(m, "up")
	if m.Cursor != 0 {
		t.Errorf("cursor moved above the first device: %d", m.Cursor)
	}
	m = press(m, "down")
	m = press(m, "j")
	if m.Cursor != 1 {
		t.Errorf("cursor = %d, want 1 (last device)", m.Cursor)
	}
	m = press(m, "k")
	if m.Cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.Cursor)
	}
}

func TestDeviceListDetail(t *testing.T) {
	m := browseModel(t)
	m = press(m, "down")
	m = press(m, "enter")
	if !m.Detail {
		t.Fatal("enter should open the pinout")
	}

	view := m.View()
	for _, want := range []string{"MCU", "VCC", "RST", "UnconnectedPin"} {
		if !strings.Contains(view, want) {
			t.Errorf("detail view missing %q\n%s", want, view)
		}
	}

	m = press(m, "esc")
	if m.Detail {
		t.Error("esc should return to the list")
	}
	if !strings.Contains(m.View(), "PSU") {
		t.Error("list view missing PSU")
	}
}

func TestDeviceListQuit(t *testing.T) {
	m := browseModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
}

func TestDeviceListWindowSize(t *testing.T) {
	m := browseModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 8})
	if got := next.(DeviceListModel).Height; got != 5 {
		t.Errorf("Height = %d, want minimum 5", got)
	}
}
