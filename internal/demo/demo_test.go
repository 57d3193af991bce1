package demo

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func newTestApp(t *testing.T, name string) (*App, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	screen.SetSize(80, 10)
	t.Cleanup(screen.Fini)

	return New(screen, name, slog.New(slog.DiscardHandler)), screen
}

func key(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func row(s tcell.Screen, y int) string {
	w, _ := s.Size()
	var b strings.Builder
	for x := range w {
		r, _, _, _ := s.GetContent(x, y)
		if r == 0 {
			r = ' '
		}
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), " ")
}

func renders(a *App) map[string]int {
	out := make(map[string]int)
	for _, name := range []string{"App", "C1", "Name"} {
		out[name] = a.Component(name).Renders()
	}
	return out
}

func TestInitialRender(t *testing.T) {
	a, _ := newTestApp(t, "Saiya")

	tests := []struct {
		name string
		want string
	}{
		{"App", "Name Length 5"},
		{"C1", "C1"},
		{"Name", "Name: Saiya"},
	}
	for _, tt := range tests {
		c := a.Component(tt.name)
		if c == nil {
			t.Fatalf("Component(%q) = nil", tt.name)
		}
		if got := c.Output(); got != tt.want {
			t.Errorf("%s output = %q, want %q", tt.name, got, tt.want)
		}
		if c.Renders() != 1 {
			t.Errorf("%s renders = %d, want 1", tt.name, c.Renders())
		}
	}
	if a.Component("Missing") != nil {
		t.Error("Component(Missing) should be nil")
	}
}

func TestHandleKeys(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		events  []tcell.Event
		want    string
		renders map[string]int
	}{
		{
			name:    "typing re-renders App and Name",
			initial: "Saiya",
			events:  []tcell.Event{runeKey('n'), runeKey('s')},
			want:    "Saiyans",
			renders: map[string]int{"App": 3, "C1": 1, "Name": 3},
		},
		{
			name:    "backspace deletes one rune",
			initial: "Gokü",
			events:  []tcell.Event{key(tcell.KeyBackspace2)},
			want:    "Gok",
			renders: map[string]int{"App": 2, "C1": 1, "Name": 2},
		},
		{
			name:    "backspace on empty name is suppressed",
			initial: "",
			events:  []tcell.Event{key(tcell.KeyBackspace)},
			want:    "",
			renders: map[string]int{"App": 1, "C1": 1, "Name": 1},
		},
		{
			name:    "reverse keeps the length",
			initial: "Goku",
			events:  []tcell.Event{key(tcell.KeyCtrlR)},
			want:    "ukoG",
			renders: map[string]int{"App": 1, "C1": 1, "Name": 2},
		},
		{
			name:    "reversing a palindrome is suppressed",
			initial: "otto",
			events:  []tcell.Event{key(tcell.KeyCtrlR)},
			want:    "otto",
			renders: map[string]int{"App": 1, "C1": 1, "Name": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newTestApp(t, tt.initial)
			for _, ev := range tt.events {
				if a.Handle(ev) {
					t.Fatalf("Handle(%v) requested quit", ev)
				}
			}
			if got := a.Name().Get(); got != tt.want {
				t.Errorf("name = %q, want %q", got, tt.want)
			}
			got := renders(a)
			for name, want := range tt.renders {
				if got[name] != want {
					t.Errorf("%s renders = %d, want %d", name, got[name], want)
				}
			}
		})
	}
}

func TestHandleQuit(t *testing.T) {
	a, _ := newTestApp(t, "Saiya")

	tests := []struct {
		name string
		ev   tcell.Event
		want bool
	}{
		{"escape", key(tcell.KeyEscape), true},
		{"ctrl-c", key(tcell.KeyCtrlC), true},
		{"interrupt", tcell.NewEventInterrupt(nil), true},
		{"resize", tcell.NewEventResize(100, 20), false},
		{"rune", runeKey('x'), false},
	}
	for _, tt := range tests {
		if got := a.Handle(tt.ev); got != tt.want {
			t.Errorf("Handle(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDraw(t *testing.T) {
	a, screen := newTestApp(t, "Saiya")
	a.Handle(runeKey('n'))
	a.Draw()

	if got := row(screen, 0); got != "vstore demo" {
		t.Errorf("row 0 = %q, want %q", got, "vstore demo")
	}

	tests := []struct {
		y      int
		prefix string
		count  string
	}{
		{2, "Name Length 6", "renders: 2"},
		{3, "  C1", "renders: 1"},
		{4, "  Name: Saiyan", "renders: 2"},
	}
	for _, tt := range tests {
		got := row(screen, tt.y)
		if !strings.HasPrefix(got, tt.prefix) {
			t.Errorf("row %d = %q, want prefix %q", tt.y, got, tt.prefix)
		}
		if !strings.HasSuffix(got, tt.count) {
			t.Errorf("row %d = %q, want suffix %q", tt.y, got, tt.count)
		}
	}
	if got := row(screen, 6); !strings.Contains(got, "esc quits") {
		t.Errorf("row 6 = %q, want help line", got)
	}
}

func TestRunStopsOnContext(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	a := New(screen, "Saiya", slog.New(slog.DiscardHandler))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := a.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if n := a.Name().Listeners(); n != 0 {
		t.Errorf("Listeners() = %d after Run, want 0", n)
	}
}
