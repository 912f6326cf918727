package universe

import (
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingViewer struct {
	mu        sync.Mutex
	u         *Universe
	refreshes int
}

func (v *recordingViewer) Refresh() {
	v.mu.Lock()
	v.refreshes++
	v.mu.Unlock()
}

func (v *recordingViewer) Register(u *Universe) { v.u = u }
func (v *recordingViewer) Start()              {}

func (v *recordingViewer) count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.refreshes
}

func newTestUniverse(t *testing.T, engine string) *Universe {
	t.Helper()
	o := DefaultOptions
	o.Width, o.Height = 8, 6
	o.Interval = time.Millisecond
	o.Engine = engine
	u, err := New(&o, make(chan Status, 100))
	require.NoError(t, err)
	t.Cleanup(u.Close)
	return u
}

func TestNew(t *testing.T) {
	u, err := New(nil, nil)
	require.NoError(t, err)
	o := u.Options()
	assert.Equal(t, DefWidth, o.Width)
	assert.Equal(t, DefHeight, o.Height)
	assert.Equal(t, EngineSequential, o.Engine)

	_, err = New(&Options{Width: 3, Height: 3, Engine: "bogus"}, nil)
	assert.Error(t, err)
	_, err = New(&Options{Width: 0, Height: 3}, nil)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestUniverse_CellOperations(t *testing.T) {
	u := newTestUniverse(t, EngineSequential)
	v := &recordingViewer{}
	u.RegisterViewer(v)
	assert.Same(t, u, v.u)

	require.NoError(t, u.SetCell(1, 2, true))
	alive, err := u.Cell(1, 2)
	require.NoError(t, err)
	assert.True(t, alive)

	require.NoError(t, u.InverseCell(1, 2))
	alive, _ = u.Cell(1, 2)
	assert.False(t, alive)

	assert.ErrorIs(t, u.SetCell(8, 0, true), ErrOutOfRange)
	assert.ErrorIs(t, u.InverseCell(0, -1), ErrOutOfRange)
	_, err = u.Cell(0, 6)
	assert.ErrorIs(t, err, ErrOutOfRange)

	assert.Equal(t, 2, v.count())
}

func TestUniverse_StepAndStatus(t *testing.T) {
	u := newTestUniverse(t, EngineParallel)
	require.NoError(t, u.Settle([][]int{{2, 1}, {2, 2}, {2, 3}}))
	require.NoError(t, u.Step())

	st := u.Status()
	assert.Equal(t, uint64(1), st.Generation)
	assert.Equal(t, 3, st.LiveCells)
	assert.False(t, st.Playing)
	assert.Equal(t, 8, st.Width)
	assert.Equal(t, 6, st.Height)

	alive, _ := u.Cell(1, 2)
	assert.True(t, alive)

	got := <-u.StateCh()
	assert.Equal(t, uint64(0), got.Generation, "settle publishes first")
	got = <-u.StateCh()
	assert.Equal(t, uint64(1), got.Generation)
}

func TestUniverse_PlayRejectsStructuralChanges(t *testing.T) {
	u := newTestUniverse(t, EngineSequential)
	require.True(t, u.Play())
	assert.False(t, u.Play())
	assert.True(t, u.IsPlaying())

	assert.ErrorIs(t, u.Step(), ErrPlaying)
	assert.ErrorIs(t, u.Clear(), ErrPlaying)
	assert.ErrorIs(t, u.Resize(3, 3), ErrPlaying)
	assert.ErrorIs(t, u.Randomize(nil), ErrPlaying)
	assert.ErrorIs(t, u.Settle([][]int{{0, 0}}), ErrPlaying)
	data, err := u.Encode()
	require.NoError(t, err)
	assert.ErrorIs(t, u.Load(data), ErrPlaying)

	// cell edits are serialized with the player
	assert.NoError(t, u.SetCell(0, 0, true))
	_, err = u.Cell(0, 0)
	assert.NoError(t, err)

	u.Pause()
	assert.False(t, u.IsPlaying())
	assert.False(t, u.Status().Playing)
	assert.NoError(t, u.Step())
}

func TestUniverse_PlayAdvancesGenerations(t *testing.T) {
	u := newTestUniverse(t, EngineSequential)
	v := &recordingViewer{}
	u.RegisterViewer(v)
	require.NoError(t, u.Settle([][]int{{2, 1}, {2, 2}, {2, 3}}))

	require.True(t, u.Play())
	require.Eventually(t, func() bool { return u.Status().Generation >= 4 }, 2*time.Second, time.Millisecond)
	u.Pause()

	st := u.Status()
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, st.Generation, u.Status().Generation)
	assert.Equal(t, 3, st.LiveCells)
	assert.GreaterOrEqual(t, v.count(), 5)
}

func TestUniverse_ConcurrentEditsWhilePlaying(t *testing.T) {
	u := newTestUniverse(t, EngineParallel)
	require.True(t, u.Play())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = u.InverseCell((i+j)%8, j%6)
				_ = u.Snapshot()
				_ = u.Status()
			}
		}(i)
	}
	wg.Wait()
	u.Pause()
	assert.False(t, u.IsPlaying())
}

func TestUniverse_ClearResizeRandomize(t *testing.T) {
	u := newTestUniverse(t, EngineSequential)
	require.NoError(t, u.Randomize(rand.New(rand.NewPCG(1, 2))))
	assert.Greater(t, u.Status().LiveCells, 0)

	require.NoError(t, u.Step())
	require.NoError(t, u.Clear())
	st := u.Status()
	assert.Equal(t, 0, st.LiveCells)
	assert.Equal(t, uint64(0), st.Generation)

	require.NoError(t, u.Resize(4, 9))
	assert.Equal(t, 4, u.Options().Width)
	assert.Equal(t, 9, u.Options().Height)
	s := u.Snapshot()
	require.Len(t, s, 4)
	assert.Len(t, s[0], 9)

	assert.ErrorIs(t, u.Resize(0, 9), ErrInvalidSize)
	assert.Equal(t, 4, u.Status().Width)
}

func TestUniverse_Templates(t *testing.T) {
	u := newTestUniverse(t, EngineSequential)
	u.AddTemplate(Template{Name: "block", Coordinates: [][]int{{1, 1}, {1, 2}, {2, 1}, {2, 2}}})
	require.NoError(t, u.SettleTemplate("block"))
	assert.Equal(t, 4, u.Status().LiveCells)
	assert.Error(t, u.SettleTemplate("missing"))

	// out of range coordinates leave the grid unchanged
	err := u.Settle([][]int{{0, 0}, {100, 0}})
	assert.ErrorIs(t, err, ErrOutOfRange)
	alive, _ := u.Cell(0, 0)
	assert.False(t, alive)
	assert.ErrorIs(t, u.Settle([][]int{{1}}), ErrOutOfRange)
}

func TestUniverse_EncodeLoad(t *testing.T) {
	u := newTestUniverse(t, EngineSequential)
	require.NoError(t, u.Settle([][]int{{0, 0}, {7, 5}}))
	data, err := u.Encode()
	require.NoError(t, err)

	other := newTestUniverse(t, EngineSequential)
	require.NoError(t, other.Resize(2, 2))
	require.NoError(t, other.Load(data))
	assert.Equal(t, u.Snapshot(), other.Snapshot())
	assert.Equal(t, 8, other.Options().Width)

	assert.ErrorIs(t, other.Load([]byte("{}")), ErrMalformedData)
	assert.Equal(t, u.Snapshot(), other.Snapshot(), "failed load keeps the grid")
}

func TestUniverse_PlayFinishesAtMaxSteps(t *testing.T) {
	for _, engine := range EngineNames() {
		t.Run(engine, func(t *testing.T) {
			o := Options{Width: 40, Height: 40, Interval: 0, MaxSteps: 50, Engine: engine}
			u, err := New(&o, nil)
			require.NoError(t, err)
			t.Cleanup(u.Close)
			require.NoError(t, u.Settle([][]int{{1, 0}, {2, 1}, {0, 2}, {1, 2}, {2, 2}}))

			require.True(t, u.Play())
			u.Wait()
			st := u.Status()
			assert.False(t, st.Playing)
			assert.Equal(t, uint64(50), st.Generation)
			assert.Equal(t, 5, st.LiveCells)

			// the limit is reached, playing again does nothing until the grid is cleared
			assert.False(t, u.Play())
			require.NoError(t, u.Clear())
			require.True(t, u.Play())
			u.Wait()
			assert.Equal(t, uint64(50), u.Status().Generation)
			u.Pause()
			assert.False(t, u.IsPlaying())
		})
	}
}

func TestUniverse_SetGridNil(t *testing.T) {
	u := newTestUniverse(t, EngineSequential)
	require.NoError(t, u.SetCell(1, 1, true))
	assert.ErrorIs(t, u.SetGrid(nil), ErrInvalidSize)
	alive, err := u.Cell(1, 1)
	require.NoError(t, err)
	assert.True(t, alive)
}
