package universe

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

//Options represents the Universe's configurable options
type Options struct {
	Width        int
	Height       int
	Interval     time.Duration //pause after each step while playing
	MaxSteps     int           //playing finishes at this generation, 0 means unlimited
	Engine       string
	DefaultValue bool
}

//Status represents the status of the Universe at concrete moment
type Status struct {
	Generation uint64
	Playing    bool
	Width      int
	Height     int
	LiveCells  int
	StepTime   time.Duration
}

//Viewer is the interface to any Viewer - the object who can display simulation data or control the universe
type Viewer interface {
	Refresh()
	Register(u *Universe)
	Start()
}

//Template represent the seeding template which can used to settle the universe with predefined data
type Template struct {
	Name        string  //template name
	Descr       string  //template descr
	Coordinates [][]int //array of [x,y] coordinates
}

//default options
const (
	DefInterval = time.Millisecond * 60
	DefMaxSteps = 1000
	DefWidth    = 40
	DefHeight   = 15
)

var DefaultOptions = Options{
	Width:    DefWidth,
	Height:   DefHeight,
	Interval: DefInterval,
	MaxSteps: DefMaxSteps,
	Engine:   EngineSequential,
}

/*
	Universe is the grid shared between the viewers and the player

	Every grid operation goes through the universe mutex, the player holds the same
	mutex while stepping. The ctl mutex orders Play and Pause with the rest. Operations replacing or reshaping the whole grid
	(Step, Clear, Resize, Randomize, SetGrid, Load, Settle) are refused with ErrPlaying
	while the player is active. Cell reads and writes are allowed at any time.
*/
type Universe struct {
	options   Options
	ctl       sync.Mutex //serializes Play, Pause and the operations refused while playing
	mu        sync.Mutex //guards the grid
	grid      *Grid
	engine    Engine
	stepTime  time.Duration
	player    *Player
	stateCh   chan Status
	views     []Viewer
	templates map[string]Template
}

//New creates the universe with an empty grid
//stateCh is optional, the status is sent without blocking after every change
func New(o *Options, stateCh chan Status) (*Universe, error) {
	if o == nil {
		d := DefaultOptions
		o = &d
	}
	name := o.Engine
	if name == "" {
		name = EngineSequential
	}
	e, ok := EngineByName(name)
	if !ok {
		return nil, fmt.Errorf("unknown engine %q", name)
	}
	g, err := NewGrid(o.Width, o.Height, o.DefaultValue)
	if err != nil {
		return nil, err
	}
	u := &Universe{
		options:   *o,
		grid:      g,
		engine:    e,
		stateCh:   stateCh,
		templates: map[string]Template{},
	}
	u.options.Engine = name
	u.player = NewPlayer(&u.mu, u.notify)
	return u, nil
}

//AddTemplate adds the seeding template to the internal storage
//the universe can be populated with this template by call SettleTemplate
func (u *Universe) AddTemplate(tmpl Template) {
	u.mu.Lock()
	u.templates[tmpl.Name] = tmpl
	u.mu.Unlock()
}

//SettleTemplate populates the universe with the seeding template
func (u *Universe) SettleTemplate(name string) error {
	u.mu.Lock()
	tmpl, ok := u.templates[name]
	u.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return u.Settle(tmpl.Coordinates)
}

//Settle makes alive the cells at the [x,y] coordinates
//nothing is changed if any coordinate is outside the grid
func (u *Universe) Settle(vc [][]int) error {
	return u.whileStopped(func() error {
		u.mu.Lock()
		defer u.mu.Unlock()
		return u.settle(vc)
	})
}

//Cell returns the state of the cell at x, y
func (u *Universe) Cell(x int, y int) (bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.grid.Get(x, y)
}

//SetCell sets the state of the cell at x, y
func (u *Universe) SetCell(x int, y int, alive bool) error {
	u.mu.Lock()
	err := u.grid.Write(x, y, alive)
	u.mu.Unlock()
	if err != nil {
		return err
	}
	u.notify()
	return nil
}

//InverseCell inverses the cell state at point x, y
func (u *Universe) InverseCell(x int, y int) error {
	u.mu.Lock()
	v, err := u.grid.Get(x, y)
	if err == nil {
		err = u.grid.Write(x, y, !v)
	}
	u.mu.Unlock()
	if err != nil {
		return err
	}
	u.notify()
	return nil
}

//Step does one generation in the calling goroutine
func (u *Universe) Step() error {
	return u.whileStopped(func() error {
		u.mu.Lock()
		u.timedStep(u.grid)
		u.mu.Unlock()
		return nil
	})
}

//Play starts the continuous stepping, returns false if the universe is already playing
//or MaxSteps generations are already done, the stepping finishes by itself at MaxSteps
func (u *Universe) Play() bool {
	u.ctl.Lock()
	defer u.ctl.Unlock()
	u.mu.Lock()
	g, interval, maxSteps := u.grid, u.options.Interval, u.options.MaxSteps
	reached := maxSteps > 0 && g.Generation() >= uint64(maxSteps)
	u.mu.Unlock()
	if reached {
		return false
	}
	var until func(g *Grid) bool
	if maxSteps > 0 {
		until = func(g *Grid) bool { return g.Generation() >= uint64(maxSteps) }
	}
	if !u.player.IsPlaying() {
		//joins the loop finished at MaxSteps
		u.player.Stop()
	}
	if !u.player.Start(g, stepFunc(u.timedStep), interval, until) {
		return false
	}
	u.notify()
	return true
}

//Pause stops the continuous stepping and waits for the running step to finish
func (u *Universe) Pause() {
	u.ctl.Lock()
	defer u.ctl.Unlock()
	if !u.player.Stop() {
		return
	}
	u.notify()
}

//Wait blocks until the continuous stepping finishes at MaxSteps or by Pause
func (u *Universe) Wait() {
	u.player.Wait()
}

//IsPlaying reports whether the universe is stepping in the background
func (u *Universe) IsPlaying() bool {
	return u.player.IsPlaying()
}

//Clear kills all cells and resets the generation counter
func (u *Universe) Clear() error {
	return u.whileStopped(func() error {
		u.mu.Lock()
		u.grid.Clear()
		u.stepTime = 0
		u.mu.Unlock()
		return nil
	})
}

//Resize reallocates the grid, all cells are lost
func (u *Universe) Resize(width int, height int) error {
	return u.whileStopped(func() error {
		u.mu.Lock()
		defer u.mu.Unlock()
		if err := u.grid.Resize(width, height); err != nil {
			return err
		}
		u.options.Width, u.options.Height = width, height
		return nil
	})
}

//Randomize sets every cell to a random state, r == nil uses the global source
func (u *Universe) Randomize(r *rand.Rand) error {
	coin := rand.IntN
	if r != nil {
		coin = r.IntN
	}
	return u.whileStopped(func() error {
		u.mu.Lock()
		defer u.mu.Unlock()
		w, h := u.grid.Dimensions()
		for x := 0; x < w; x++ {
			for y := 0; y < h; y++ {
				_ = u.grid.Write(x, y, coin(2) == 1)
			}
		}
		return nil
	})
}

//SetGrid replaces the universe grid, the options follow the new dimensions
func (u *Universe) SetGrid(g *Grid) error {
	if g == nil {
		return fmt.Errorf("set grid: nil grid: %w", ErrInvalidSize)
	}
	return u.whileStopped(func() error {
		u.mu.Lock()
		defer u.mu.Unlock()
		u.grid = g
		u.options.Width, u.options.Height = g.Dimensions()
		u.options.DefaultValue = g.DefaultValue()
		u.stepTime = 0
		return nil
	})
}

//Load replaces the grid with the decoded one, the current grid is kept on error
func (u *Universe) Load(data []byte) error {
	g, err := Decode(data)
	if err != nil {
		return err
	}
	return u.SetGrid(g)
}

//Encode serializes the current grid
func (u *Universe) Encode() ([]byte, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return Encode(u.grid)
}

//Snapshot returns the copy of the current cells indexed [x][y]
func (u *Universe) Snapshot() [][]bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.grid.Snapshot()
}

//CopyGrid returns an independent copy of the grid
func (u *Universe) CopyGrid() *Grid {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.grid.Clone()
}

//Status returns current universe status represented by Status struct
func (u *Universe) Status() Status {
	u.mu.Lock()
	defer u.mu.Unlock()
	w, h := u.grid.Dimensions()
	return Status{
		Generation: u.grid.Generation(),
		Playing:    u.player.IsPlaying(),
		Width:      w,
		Height:     h,
		LiveCells:  u.grid.LiveCells(),
		StepTime:   u.stepTime,
	}
}

//Options returns current universe configuration represented by Options struct
func (u *Universe) Options() Options {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.options
}

//StateCh returns the channel with the universe's status updates
func (u *Universe) StateCh() chan Status {
	return u.stateCh
}

//RegisterViewer registers the viewer - the universe will call the viewer when the state is changed
//viewers must be registered before Play
func (u *Universe) RegisterViewer(v Viewer) {
	u.views = append(u.views, v)
	v.Register(u)
}

//Close stops the player
func (u *Universe) Close() {
	u.Pause()
}

//whileStopped runs f unless the player is active and notifies the viewers on success
func (u *Universe) whileStopped(f func() error) error {
	u.ctl.Lock()
	defer u.ctl.Unlock()
	if u.player.IsPlaying() {
		return ErrPlaying
	}
	if err := f(); err != nil {
		return err
	}
	u.notify()
	return nil
}

//timedStep runs the engine and stores the step duration, the caller holds the mutex
func (u *Universe) timedStep(g *Grid) {
	start := time.Now()
	u.engine.Step(g)
	u.stepTime = time.Since(start)
}

//settle validates all coordinates before changing any cell
func (u *Universe) settle(vc [][]int) error {
	for _, v := range vc {
		if len(v) != 2 {
			return fmt.Errorf("settle: coordinate %v: %w", v, ErrOutOfRange)
		}
		if _, err := u.grid.Get(v[0], v[1]); err != nil {
			return fmt.Errorf("settle: %w", err)
		}
	}
	for _, v := range vc {
		_ = u.grid.Write(v[0], v[1], true)
	}
	return nil
}

//notify publishes the status and refreshes the viewers, must be called without the mutex
func (u *Universe) notify() {
	if u.stateCh != nil {
		select {
		case u.stateCh <- u.Status():
		default:
		}
	}
	for _, v := range u.views {
		v.Refresh()
	}
}

//stepFunc adapts a function to the Engine interface
type stepFunc func(g *Grid)

func (f stepFunc) Step(g *Grid) { f(g) }
