// Package terminal renders the simulation in a character terminal with
// tcell. Each terminal cell keeps a fading trail intensity, so moving agents
// leave streaks the way the graphical front end does.
package terminal

import (
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/systems"
)

// Simulation is what the viewer drives. *game.Game satisfies it.
type Simulation interface {
	Step(dt float64) error
	Agents() []components.Agent
	Bounds() components.Bounds
	SetPointer(target r2.Vec, enabled bool)
	Tick() int32
}

// Options configures a Viewer.
type Options struct {
	DT            float64 // simulated seconds per step
	StepsPerFrame int
	Decay         float64 // trail intensity kept per frame, in [0, 1)
	StopOnFatal   bool    // end Run on a fatal stage error
	FrameInterval time.Duration
}

// ErrQuit is returned by Run when the user quits.
var ErrQuit = errors.New("terminal: quit")

// Viewer draws agents into a tcell screen and handles its input.
type Viewer struct {
	screen tcell.Screen
	sim    Simulation
	opts   Options

	width, height int // drawable area; the last row is the status line
	trail         []float64

	paused bool
	follow bool
	err    error
}

// NewViewer creates a viewer over an initialized screen.
func NewViewer(screen tcell.Screen, sim Simulation, opts Options) *Viewer {
	if opts.StepsPerFrame < 1 {
		opts.StepsPerFrame = 1
	}
	if opts.Decay < 0 || opts.Decay >= 1 {
		opts.Decay = 0.8
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = 16 * time.Millisecond
	}
	v := &Viewer{screen: screen, sim: sim, opts: opts}
	screen.EnableMouse()
	v.resize()
	return v
}

// resize picks up the current screen size and clears the trail.
func (v *Viewer) resize() {
	w, h := v.screen.Size()
	v.width = w
	v.height = h - 1
	if v.height < 0 {
		v.height = 0
	}
	v.trail = make([]float64, v.width*v.height)
}

// CellOf maps a domain point to a terminal cell. Row 0 is the top of the
// domain. ok is false for points outside the domain.
func (v *Viewer) CellOf(p r2.Vec) (x, y int, ok bool) {
	b := v.sim.Bounds()
	if !b.Contains(p) || v.width == 0 || v.height == 0 {
		return 0, 0, false
	}
	size := b.Size()
	x = int((p.X - b.Min.X) / size.X * float64(v.width))
	y = int((b.Max.Y - p.Y) / size.Y * float64(v.height))
	return min(x, v.width-1), min(y, v.height-1), true
}

// ToWorld maps the center of a terminal cell to domain coordinates.
func (v *Viewer) ToWorld(x, y int) r2.Vec {
	b := v.sim.Bounds()
	size := b.Size()
	return r2.Vec{
		X: b.Min.X + (float64(x)+0.5)/float64(v.width)*size.X,
		Y: b.Max.Y - (float64(y)+0.5)/float64(v.height)*size.Y,
	}
}

// Intensity returns the trail intensity of a cell.
func (v *Viewer) Intensity(x, y int) float64 {
	return v.trail[y*v.width+x]
}

// Paused reports whether stepping is suspended.
func (v *Viewer) Paused() bool { return v.paused }

// Following reports whether the mouse drives the pointer target.
func (v *Viewer) Following() bool { return v.follow }

// Frame advances the simulation unless paused, fades the trail, deposits
// the agents and redraws.
func (v *Viewer) Frame() {
	if !v.paused {
		for i := 0; i < v.opts.StepsPerFrame; i++ {
			err := v.sim.Step(v.opts.DT)
			if err != nil && v.opts.StopOnFatal && !systems.IsDegraded(err) {
				v.err = err
				return
			}
		}
	}

	for i := range v.trail {
		v.trail[i] *= v.opts.Decay
	}
	for _, a := range v.sim.Agents() {
		if x, y, ok := v.CellOf(a.Position); ok {
			v.trail[y*v.width+x] = 1
		}
	}

	v.draw()
}

var ramp = []rune(" .:-=+*#%@")

// glyph returns the rune and style for a trail intensity.
func glyph(intensity float64) (rune, tcell.Style) {
	if intensity < 0.02 {
		return ' ', tcell.StyleDefault
	}
	i := int(intensity * float64(len(ramp)-1))
	if i < 1 {
		i = 1
	}
	if i >= len(ramp) {
		i = len(ramp) - 1
	}
	c := int32(80 + intensity*175)
	color := tcell.NewRGBColor(c/2, c*3/4, c)
	return ramp[i], tcell.StyleDefault.Foreground(color)
}

func (v *Viewer) draw() {
	v.screen.Clear()

	for y := 0; y < v.height; y++ {
		for x := 0; x < v.width; x++ {
			r, style := glyph(v.trail[y*v.width+x])
			if r != ' ' {
				v.screen.SetContent(x, y, r, nil, style)
			}
		}
	}

	status := fmt.Sprintf(" tick %d  agents %d  [space] pause  [f] follow  [q] quit", v.sim.Tick(), len(v.sim.Agents()))
	if v.paused {
		status += "  PAUSED"
	}
	if v.follow {
		status += "  FOLLOW"
	}
	v.drawText(0, v.height, status, tcell.StyleDefault.Reverse(true))

	v.screen.Show()
}

func (v *Viewer) drawText(x, y int, text string, style tcell.Style) {
	for _, r := range text {
		if x >= v.width {
			return
		}
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// HandleEvent applies one input event. It returns false once the user quits.
func (v *Viewer) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		switch ev.Rune() {
		case 'q':
			return false
		case ' ':
			v.TogglePause()
		case 'f':
			v.ToggleFollow()
		}

	case *tcell.EventMouse:
		x, y := ev.Position()
		v.PointAt(x, y)

	case *tcell.EventResize:
		v.screen.Sync()
		v.resize()
	}
	return true
}

// TogglePause suspends or resumes stepping.
func (v *Viewer) TogglePause() {
	v.paused = !v.paused
}

// ToggleFollow switches mouse following. Turning it off releases the pointer.
func (v *Viewer) ToggleFollow() {
	v.follow = !v.follow
	if !v.follow {
		v.sim.SetPointer(r2.Vec{}, false)
	}
}

// PointAt moves the pointer target to a terminal cell while following.
// The status row is ignored.
func (v *Viewer) PointAt(x, y int) {
	if !v.follow || y < 0 || y >= v.height || x < 0 || x >= v.width {
		return
	}
	v.sim.SetPointer(v.ToWorld(x, y), true)
}

// Run polls input and renders frames until the user quits or a fatal
// stage error stops the simulation. Quitting returns ErrQuit.
func (v *Viewer) Run() error {
	ticker := time.NewTicker(v.opts.FrameInterval)
	defer ticker.Stop()

	done := make(chan struct{})
	defer close(done)
	eventChan := pollEvents(v.screen.PollEvent, done)

	for {
		select {
		case ev, ok := <-eventChan:
			if !ok || !v.HandleEvent(ev) {
				return ErrQuit
			}

		case <-ticker.C:
			v.Frame()
			if v.err != nil {
				return v.err
			}
		}
	}
}

// pollEvents forwards events from poll until poll returns nil or done is
// closed. The returned channel is closed when forwarding stops.
func pollEvents(poll func() tcell.Event, done <-chan struct{}) <-chan tcell.Event {
	eventChan := make(chan tcell.Event, 100)
	go func() {
		defer close(eventChan)
		for {
			ev := poll()
			if ev == nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-done:
				return
			}
		}
	}()
	return eventChan
}
