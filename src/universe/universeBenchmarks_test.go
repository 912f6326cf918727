package universe

import (
	"math/rand/v2"
	"testing"
)

const (
	benchWidth  = 200
	benchHeight = 200
)

func newBenchmarkGrid(b *testing.B) *Grid {
	g, err := NewGrid(benchWidth, benchHeight, false)
	if err != nil {
		b.Fatal(err)
	}
	r := rand.New(rand.NewPCG(42, 0))
	for x := 0; x < benchWidth; x++ {
		for y := 0; y < benchHeight; y++ {
			_ = g.Write(x, y, r.IntN(2) == 1)
		}
	}
	return g
}

func Benchmark_Step(b *testing.B) {
	for _, name := range EngineNames() {
		b.Run(name, func(b *testing.B) {
			e, _ := EngineByName(name)
			g := newBenchmarkGrid(b)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				e.Step(g)
			}
		})
	}
}

func Benchmark_Encode(b *testing.B) {
	g := newBenchmarkGrid(b)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Encode(g); err != nil {
			b.Fatal(err)
		}
	}
}
