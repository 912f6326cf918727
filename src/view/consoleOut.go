package view

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/logrusorgru/aurora"

	"toruslife/src/universe"
)

//ConsoleOut prints the headless run progress
type ConsoleOut struct {
	u         *universe.Universe
	out       io.Writer
	startTime time.Time
	every     uint64
	last      uint64
}

//NewConsoleOut creates the printer writing to out, nil means stdout
func NewConsoleOut(out io.Writer) *ConsoleOut {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleOut{out: out, every: 10}
}

func (c *ConsoleOut) Refresh() {
	st := c.u.Status()
	if !st.Playing || st.Generation == 0 || st.Generation == c.last {
		return
	}
	if st.Generation%c.every == 0 {
		c.last = st.Generation
		_, _ = fmt.Fprintf(c.out, "  Generations done: %v\n", st.Generation)
	}
}

func (c *ConsoleOut) Register(u *universe.Universe) {
	c.u = u
	o := c.u.Options()
	_, _ = fmt.Fprintln(c.out, aurora.Bold("Running configuration:"))
	c.printHashData(map[string]interface{}{
		"Dimension":      fmt.Sprintf("%v x %v", o.Width, o.Height),
		"Interval":       o.Interval,
		"Max iterations": fmt.Sprintf("%v steps", o.MaxSteps),
		"Engine":         o.Engine,
	})
}

func (c *ConsoleOut) Start() {
	c.startTime = time.Now()
	_, _ = fmt.Fprintln(c.out, "\nSimulation started...")
}

//Finish prints the final status of the run
func (c *ConsoleOut) Finish() {
	st := c.u.Status()
	_, _ = fmt.Fprintln(c.out, aurora.Red("\nFinished:"))
	c.printHashData(map[string]interface{}{
		"Last generation": st.Generation,
		"Total time":      time.Since(c.startTime).Round(time.Millisecond),
		"Live cells":      st.LiveCells,
		"Last step time":  st.StepTime.Round(time.Microsecond),
	})
}

func (c *ConsoleOut) printHashData(d map[string]interface{}) {
	propNames := make([]string, 0, len(d))
	for k := range d {
		propNames = append(propNames, k)
	}
	sort.Strings(propNames)
	for _, propName := range propNames {
		_, _ = fmt.Fprintf(c.out, "  %s: %v\n", aurora.Green(propName), d[propName])
	}
}
