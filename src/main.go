package main

import (
	"fmt"
	"log"
	"math/rand/v2"
	"strings"

	"github.com/integrii/flaggy"

	"toruslife/src/store"
	"toruslife/src/universe"
	"toruslife/src/view"
)

var (
	testSample = [][]int{
		{1, 1}, {1, 2},
		{2, 1}, {2, 2},
		{3, 3},
		{4, 2},
		{4, 3},
		{5, 3},
	}
)

type EnvOptions struct {
	interactive bool
	randomData  bool
	seed        int64
	loadPath    string
	savePath    string
	dbPath      string
	snapshot    string
}

func main() {
	eo, uo := initOptions()

	var stateCh chan universe.Status

	if !eo.interactive {
		stateCh = make(chan universe.Status, 10) //the buffered channel to getting the universe status
	}

	u, err := universe.New(uo, stateCh)
	if err != nil {
		log.Fatalf("create universe: %v", err)
	}

	var db *store.Store
	if eo.dbPath != "" {
		if db, err = store.Open(eo.dbPath); err != nil {
			log.Fatalf("open snapshot database: %v", err)
		}
		defer db.Close()
	}

	u.AddTemplate(
		universe.Template{
			Name:        "testSample1",
			Descr:       "the test sample with 3 stable patterns",
			Coordinates: testSample,
		})

	if err := settle(u, eo, db); err != nil {
		log.Fatalf("settle universe: %v", err)
	}

	if eo.interactive {
		var saver view.SnapshotSaver
		if db != nil {
			saver = db
		}
		v := view.NewViewTerminal(saver)
		u.RegisterViewer(v)
		v.Start()
		u.Close()
	} else {
		runHeadless(u, stateCh)
		close(stateCh)
	}

	if eo.savePath != "" {
		if err := universe.SaveFile(eo.savePath, u.CopyGrid()); err != nil {
			log.Fatalf("save: %v", err)
		}
		fmt.Printf("Saved to %v\n", eo.savePath)
	}
}

//settle populates the universe from a file, the snapshot database, random data or the test sample
func settle(u *universe.Universe, eo *EnvOptions, db *store.Store) error {
	switch {
	case eo.loadPath != "":
		g, err := universe.LoadFile(eo.loadPath)
		if err != nil {
			return err
		}
		return u.SetGrid(g)
	case eo.snapshot != "":
		if db == nil {
			return fmt.Errorf("--snapshot requires --db")
		}
		g, err := db.LoadByName(eo.snapshot)
		if err != nil {
			g, err = db.Load(eo.snapshot)
		}
		if err != nil {
			return err
		}
		return u.SetGrid(g)
	case eo.randomData:
		return u.Randomize(rand.New(rand.NewPCG(uint64(eo.seed), 0)))
	default:
		return u.SettleTemplate("testSample1")
	}
}

//runHeadless plays the universe until MaxSteps generations are done or no cell is alive
func runHeadless(u *universe.Universe, stateCh chan universe.Status) {
	out := view.NewConsoleOut(nil)
	u.RegisterViewer(out)
	out.Start()

	finished := make(chan struct{})
	if u.Play() {
		go func() {
			u.Wait()
			close(finished)
		}()
	} else {
		close(finished)
	}

loop:
	for {
		select {
		case <-finished:
			break loop
		case st := <-stateCh:
			if st.Playing && st.LiveCells == 0 {
				break loop
			}
		}
	}
	u.Pause()
	out.Finish()
}

func initOptions() (eo *EnvOptions, uo *universe.Options) {

	o := universe.DefaultOptions
	uo = &o
	eo = &EnvOptions{seed: 42}
	flaggy.DefaultParser.ShowHelpOnUnexpected = true
	flaggy.Int(&uo.Width, "x", "width", "Width of a simulation field")
	flaggy.Int(&uo.Height, "y", "height", "Height of a simulation field")
	flaggy.Duration(&uo.Interval, "i", "interval", "Simulation speed (interval between the steps) in format the number with 'ms' suffix, for example 150ms")
	flaggy.Int(&uo.MaxSteps, "s", "maxSteps", "Stop the simulation after maxSteps generations, 0 is unlimited")
	flaggy.String(&uo.Engine, "e", "engine", "Engine to use ["+strings.Join(universe.EngineNames(), "|")+"]")
	flaggy.Bool(&eo.interactive, "n", "interactive", "Start interactive mode")
	flaggy.Bool(&eo.randomData, "r", "random", "Settle with random data")
	flaggy.Int64(&eo.seed, "", "seed", "Seed for the random data")
	flaggy.String(&eo.loadPath, "l", "load", "Load the grid from the JSON file")
	flaggy.String(&eo.savePath, "o", "save", "Save the grid to the JSON file on exit")
	flaggy.String(&eo.dbPath, "", "db", "Snapshot database path")
	flaggy.String(&eo.snapshot, "", "snapshot", "Load the snapshot with this name or id from the database")

	flaggy.Parse()

	if _, ok := universe.EngineByName(uo.Engine); !ok {
		flaggy.ShowHelpAndExit("unknown engine")
	}

	return
}
