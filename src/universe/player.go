package universe

import (
	"sync"
	"sync/atomic"
	"time"
)

/*
	Player runs an engine on a grid in the background goroutine
	Each iteration does one step and then waits for the interval,
	the wait doesn't account for the time spent in the step.

	The step is done while holding the locker passed to NewPlayer,
	so every other user of the grid must hold the same locker.
	The loop finishes by itself when the stop condition given to Start is met.
*/
type Player struct {
	lock    sync.Locker
	onStep  func()
	mu      sync.Mutex //serializes Start and Stop
	playing atomic.Bool
	cancel  chan struct{}
	done    chan struct{}
}

//NewPlayer creates the stopped player
//lock is held around every step, nil means the caller owns the grid exclusively while playing
//onStep is called after every step outside of the lock, may be nil
func NewPlayer(lock sync.Locker, onStep func()) *Player {
	if lock == nil {
		lock = noLock{}
	}
	return &Player{lock: lock, onStep: onStep}
}

//Start launches the background stepping, returns false if the player is already playing
//until is checked after every step with the lock held, the loop finishes once it returns true, may be nil
func (p *Player) Start(g *Grid, e Engine, interval time.Duration, until func(g *Grid) bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done != nil {
		select {
		case <-p.done:
			//finished by itself, nobody has joined it yet
			p.cancel, p.done = nil, nil
		default:
			return false
		}
	}
	p.cancel = make(chan struct{})
	p.done = make(chan struct{})
	p.playing.Store(true)
	Logf("player: started, interval %v", interval)
	go p.loop(g, e, interval, until, p.cancel, p.done)
	return true
}

//Stop cancels the background stepping and waits until the goroutine has exited
//no step is running or will run after Stop returns, stopping a stopped player does nothing
//returns false if there was nothing to stop
func (p *Player) Stop() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done == nil {
		return false
	}
	close(p.cancel)
	<-p.done
	p.cancel, p.done = nil, nil
	p.playing.Store(false)
	Logf("player: stopped")
	return true
}

//Wait blocks until the background stepping has finished by itself or by Stop
func (p *Player) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

//IsPlaying reports whether the background stepping is active
func (p *Player) IsPlaying() bool {
	return p.playing.Load()
}

func (p *Player) loop(g *Grid, e Engine, interval time.Duration, until func(g *Grid) bool, cancel <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	var t *time.Timer
	if interval > 0 {
		t = time.NewTimer(interval)
		defer t.Stop()
	}
	for {
		select {
		case <-cancel:
			return
		default:
		}

		p.lock.Lock()
		e.Step(g)
		finished := until != nil && until(g)
		generation := g.Generation()
		p.lock.Unlock()
		if finished {
			p.playing.Store(false)
			Logf("player: finished at generation %v", generation)
		}
		if p.onStep != nil {
			p.onStep()
		}
		if finished {
			return
		}

		if t == nil {
			continue
		}
		if !t.Stop() {
			select {
			case <-t.C:
			default:
			}
		}
		t.Reset(interval)
		select {
		case <-cancel:
			return
		case <-t.C:
		}
	}
}

type noLock struct{}

func (noLock) Lock()   {}
func (noLock) Unlock() {}
