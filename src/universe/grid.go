package universe

import "fmt"

/*
	Grid is the double-buffered cell store
	Get/Write work on the current buffer, Stage writes to the next buffer
	which becomes visible only after Advance swaps the two buffers.

	Grid does no locking of its own, only one goroutine may use it at a time.
	The Universe serializes access with its mutex.
*/
type Grid struct {
	width        int
	height       int
	defaultValue bool
	current      []bool
	next         []bool
	generation   uint64
}

//NewGrid allocates the grid with both buffers filled with defaultValue
func NewGrid(width int, height int, defaultValue bool) (*Grid, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("new grid %dx%d: %w", width, height, ErrInvalidSize)
	}
	g := &Grid{defaultValue: defaultValue}
	g.allocate(width, height)
	return g, nil
}

//Dimensions returns the grid width and height
func (g *Grid) Dimensions() (width int, height int) {
	return g.width, g.height
}

//DefaultValue returns the fill value used on creation, clear, resize and advance
func (g *Grid) DefaultValue() bool {
	return g.defaultValue
}

//Generation returns the number of Advance calls since the grid was created, cleared or resized
func (g *Grid) Generation() uint64 {
	return g.generation
}

//Get returns the current value of the cell at x, y
func (g *Grid) Get(x int, y int) (bool, error) {
	if err := g.validate(x, y); err != nil {
		return false, err
	}
	return g.current[g.index(x, y)], nil
}

//Write sets the current value of the cell, visible to Get immediately
func (g *Grid) Write(x int, y int, v bool) error {
	if err := g.validate(x, y); err != nil {
		return err
	}
	g.current[g.index(x, y)] = v
	return nil
}

//Stage sets the value the cell takes after the next Advance
func (g *Grid) Stage(x int, y int, v bool) error {
	if err := g.validate(x, y); err != nil {
		return err
	}
	g.next[g.index(x, y)] = v
	return nil
}

//Advance makes the staged buffer current, the cells which were not staged take the default value
func (g *Grid) Advance() {
	g.current, g.next = g.next, g.current
	fill(g.next, g.defaultValue)
	g.generation++
}

//Clear resets both buffers to the default value
func (g *Grid) Clear() {
	fill(g.current, g.defaultValue)
	fill(g.next, g.defaultValue)
	g.generation = 0
}

//Resize discards all cells and reallocates both buffers
//the grid is left unchanged when a dimension is less than one
func (g *Grid) Resize(width int, height int) error {
	if width < 1 || height < 1 {
		return fmt.Errorf("resize to %dx%d: %w", width, height, ErrInvalidSize)
	}
	g.allocate(width, height)
	return nil
}

//LiveCells counts the alive cells of the current buffer
func (g *Grid) LiveCells() int {
	n := 0
	for _, c := range g.current {
		if c {
			n++
		}
	}
	return n
}

//Snapshot copies the current buffer, indexed [x][y]
func (g *Grid) Snapshot() [][]bool {
	s := make([][]bool, g.width)
	for x := range s {
		s[x] = make([]bool, g.height)
		copy(s[x], g.current[x*g.height:(x+1)*g.height])
	}
	return s
}

//Clone returns an independent copy of the grid including the generation
func (g *Grid) Clone() *Grid {
	c := &Grid{
		width:        g.width,
		height:       g.height,
		defaultValue: g.defaultValue,
		current:      append([]bool(nil), g.current...),
		next:         append([]bool(nil), g.next...),
		generation:   g.generation,
	}
	return c
}

//alive reads the current buffer without bounds checking, used by the engines
func (g *Grid) alive(x int, y int) bool {
	return g.current[g.index(x, y)]
}

func (g *Grid) allocate(width int, height int) {
	g.width = width
	g.height = height
	g.current = make([]bool, width*height)
	g.next = make([]bool, width*height)
	if g.defaultValue {
		fill(g.current, true)
		fill(g.next, true)
	}
	g.generation = 0
}

func (g *Grid) index(x int, y int) int {
	return x*g.height + y
}

func (g *Grid) validate(x int, y int) error {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return fmt.Errorf("cell %d,%d outside %dx%d: %w", x, y, g.width, g.height, ErrOutOfRange)
	}
	return nil
}

func fill(cells []bool, v bool) {
	for i := range cells {
		cells[i] = v
	}
}
