package universe

import (
	"golang.org/x/sync/errgroup"
)

/*
	Parallel engine splits the grid into bands of columns, each band is computed by its own goroutine
	Bands only read the current buffer and stage disjoint cells, so the result is equal to Sequential
*/

const (
	DefWorkers             = 10 //default workers
	DefMinColumnsPerWorker = 3  //minimum columns for one worker
)

type Parallel struct {
	workers int
}

//band is the range of columns [x1, x2) computed by one worker
type band struct {
	x1 int
	x2 int
}

//NewParallel creates the engine using up to workers goroutines per step
func NewParallel(workers int) *Parallel {
	if workers < 1 {
		workers = 1
	}
	return &Parallel{workers: workers}
}

func (p *Parallel) Step(g *Grid) {
	var eg errgroup.Group
	for _, b := range p.bands(g.width) {
		b := b
		eg.Go(func() error {
			p.calcBand(g, b)
			return nil
		})
	}
	_ = eg.Wait()
	g.Advance()
}

//calcBand stages the next state for the cells inside band
func (p *Parallel) calcBand(g *Grid, b band) {
	for x := b.x1; x < b.x2; x++ {
		for y := 0; y < g.height; y++ {
			g.next[g.index(x, y)] = cellNextState(g, x, y)
		}
	}
}

//bands splits width columns between the workers
func (p *Parallel) bands(width int) []band {
	perWorker := width / p.workers
	if perWorker < DefMinColumnsPerWorker {
		perWorker = DefMinColumnsPerWorker
	} else if perWorker*p.workers < width {
		perWorker++
	}
	bands := make([]band, 0, p.workers)
	for x1 := 0; x1 < width; x1 += perWorker {
		x2 := x1 + perWorker
		if x2 > width {
			x2 = width
		}
		bands = append(bands, band{x1, x2})
	}
	return bands
}
