package demo

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/vango-dev/vstore/internal/errors"
	"github.com/vango-dev/vstore/pkg/bind"
	"github.com/vango-dev/vstore/pkg/store"
)

const help = "type to edit · backspace deletes · ctrl-r reverses · esc quits"

var (
	styleDefault = tcell.StyleDefault
	styleTitle   = tcell.StyleDefault.Bold(true)
	styleCount   = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// App is the demo application. Create it with New and drive it with Run.
type App struct {
	screen tcell.Screen
	logger *slog.Logger
	name   *store.Store[string]

	root       *bind.Component
	components []*bind.Component
}

// New mounts the demo components over a name store holding initialName.
// The screen is initialized by Run.
func New(screen tcell.Screen, initialName string, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		screen: screen,
		logger: logger,
		name: store.New(initialName,
			store.WithName[string]("name"),
			store.WithLogger[string](logger)),
	}

	logRender := func(c *bind.Component) {
		a.logger.Debug(c.Name()+" rendered", "renders", c.Renders())
	}

	a.root = bind.Mount(nil, "App", func(o *bind.Owner) string {
		n := bind.UseSelector(o, a.name, func(s string) int { return utf8.RuneCountInString(s) })
		return "Name Length " + strconv.Itoa(n)
	}, logRender)

	a.components = []*bind.Component{
		a.root,
		bind.Mount(a.root.Owner(), "C1", func(*bind.Owner) string {
			return "C1"
		}, logRender),
		bind.Mount(a.root.Owner(), "Name", func(o *bind.Owner) string {
			return "Name: " + bind.UseStore(o, a.name)
		}, logRender),
	}
	return a
}

// Name returns the name store.
func (a *App) Name() *store.Store[string] {
	return a.name
}

// Component returns the mounted component called name, or nil.
func (a *App) Component(name string) *bind.Component {
	for _, c := range a.components {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// Handle applies ev to the name store. It reports whether the app should
// quit.
func (a *App) Handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return true
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			a.name.Update(func(prev string) string {
				_, size := utf8.DecodeLastRuneInString(prev)
				return prev[:len(prev)-size]
			})
		case tcell.KeyCtrlR:
			a.name.Update(func(prev string) string {
				r := []rune(prev)
				slices.Reverse(r)
				return string(r)
			})
		case tcell.KeyRune:
			a.name.Update(func(prev string) string {
				return prev + string(ev.Rune())
			})
		}
	case *tcell.EventResize:
		a.screen.Sync()
	case *tcell.EventInterrupt:
		return true
	}
	return false
}

// Draw renders every component's last output with its render count.
func (a *App) Draw() {
	a.screen.Clear()

	drawText(a.screen, 0, 0, styleTitle, "vstore demo")
	for i, c := range a.components {
		y := i + 2
		indent := 0
		if c != a.root {
			indent = 2
		}
		x := drawText(a.screen, indent, y, styleDefault, c.Output())
		drawText(a.screen, max(x+2, 28), y, styleCount, fmt.Sprintf("renders: %d", c.Renders()))
	}
	drawText(a.screen, 0, len(a.components)+3, styleCount, help)

	a.screen.Show()
}

// drawText writes s at (x, y) and returns the column after it.
func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) int {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

// Run initializes the screen and processes events until the user quits
// or ctx is done. The components are unmounted on return.
func (a *App) Run(ctx context.Context) error {
	if err := a.screen.Init(); err != nil {
		return errors.New("E061").Wrap(err)
	}
	defer a.screen.Fini()
	defer a.root.Unmount()

	stop := context.AfterFunc(ctx, func() {
		_ = a.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer stop()

	a.Draw()
	for {
		ev := a.screen.PollEvent()
		if ev == nil || a.Handle(ev) {
			a.logger.Info("demo finished", "name", a.name.Get())
			return nil
		}
		a.Draw()
	}
}
