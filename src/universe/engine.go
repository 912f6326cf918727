package universe

import "sort"

//Engine computes the next generation of a grid
//Step must read only the current buffer, stage every cell and advance the grid once
type Engine interface {
	Step(g *Grid)
}

//Engine names accepted by EngineByName
const (
	EngineSequential = "sequential"
	EngineParallel   = "parallel"
)

var engines = map[string]func() Engine{
	EngineSequential: func() Engine { return Sequential{} },
	EngineParallel:   func() Engine { return NewParallel(DefWorkers) },
}

//EngineByName returns a new engine registered under name
func EngineByName(name string) (Engine, bool) {
	f, ok := engines[name]
	if !ok {
		return nil, false
	}
	return f(), true
}

//EngineNames returns the sorted names of the registered engines
func EngineNames() []string {
	names := make([]string, 0, len(engines))
	for k := range engines {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

/*
	Sequential walks the grid column by column in the calling goroutine
	All cells are staged to the next buffer, then the buffers are swapped once
*/
type Sequential struct{}

func (Sequential) Step(g *Grid) {
	w, h := g.Dimensions()
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			_ = g.Stage(x, y, cellNextState(g, x, y))
		}
	}
	g.Advance()
}

//liveNeighbours counts the alive cells around x, y wrapping at the edges
//counting stops once the result exceeds 3, the rule doesn't distinguish larger values
func liveNeighbours(g *Grid, x int, y int) int {
	w, h := g.width, g.height
	n := 0
	for i := -1; i < 2; i++ {
		for j := -1; j < 2; j++ {
			if i == 0 && j == 0 {
				continue
			}
			if g.alive((x+i+w)%w, (y+j+h)%h) {
				n++
				if n > 3 {
					return n
				}
			}
		}
	}
	return n
}

//cellNextState applies the B3/S23 rule to the cell at x, y
func cellNextState(g *Grid, x int, y int) bool {
	n := liveNeighbours(g, x, y)
	if g.alive(x, y) {
		return n == 2 || n == 3
	}
	return n == 3
}
