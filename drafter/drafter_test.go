package drafter

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/brimdata/airindex/aie"
	"github.com/brimdata/airindex/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scenario = []model.Pair{{1, 0}, {2, 10}, {3, 20}, {4, 30}}

func randomPairs(seed int64, n int) []model.Pair {
	r := rand.New(rand.NewSource(seed))
	pairs := make([]model.Pair, n)
	key := uint64(r.Intn(100))
	for i := range pairs {
		// Mix dense runs with large gaps.
		if r.Intn(10) == 0 {
			key += uint64(r.Intn(1 << 20))
		} else {
			key += 1 + uint64(r.Intn(50))
		}
		pairs[i] = model.Pair{Key: key, Position: uint64(i) * model.PairSize}
	}
	return pairs
}

// checkCover verifies that segs partition the keys of pairs in order and
// that every key is predicted within bound.
func checkCover(t *testing.T, pairs []model.Pair, segs []model.Segment, bound uint64) {
	t.Helper()
	require.NotEmpty(t, segs)
	assert.Equal(t, pairs[0].Key, segs[0].KeyLo)
	total := 0
	for i, s := range segs {
		total += s.Count
		assert.LessOrEqual(t, s.KeyLo, s.KeyMax)
		if i > 0 {
			assert.Less(t, segs[i-1].KeyMax, s.KeyLo)
		}
	}
	assert.Equal(t, len(pairs), total)
	for _, p := range pairs {
		i := sort.Search(len(segs), func(i int) bool { return segs[i].KeyLo > p.Key }) - 1
		require.GreaterOrEqual(t, i, 0)
		s := segs[i]
		err := model.MaxError(s, []model.Pair{p})
		assert.LessOrEqual(t, err, s.Delta, "key %d", p.Key)
		assert.LessOrEqual(t, s.Delta, bound, "key %d", p.Key)
	}
}

func TestGreedyScenario(t *testing.T) {
	segs, err := KindBandGreedy.Draft(scenario, 0)
	require.NoError(t, err)
	require.Len(t, segs, 1)
	s := segs[0]
	assert.Equal(t, model.Linear, s.Tag)
	assert.InDelta(t, 10, s.Slope, 1e-9)
	assert.InDelta(t, -10, s.Intercept(), 1e-9)
	assert.EqualValues(t, 0, s.Delta)
	assert.EqualValues(t, 20, s.Predict(3))
	assert.Equal(t, 4, s.Count)
}

func TestGreedyBound(t *testing.T) {
	for seed := int64(0); seed < 5; seed++ {
		pairs := randomPairs(seed, 5000)
		for _, delta := range []uint64{0, 1, 16, 64, 1000, 1 << 20} {
			segs, err := KindBandGreedy.Draft(pairs, delta)
			require.NoError(t, err)
			checkCover(t, pairs, segs, delta)
		}
	}
}

func TestGreedyMonotone(t *testing.T) {
	pairs := randomPairs(42, 20000)
	prev := len(pairs) + 1
	for delta := uint64(0); delta <= 4096; delta = delta*2 + 1 {
		segs, err := KindBandGreedy.Draft(pairs, delta)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(segs), prev, "delta %d", delta)
		prev = len(segs)
	}
}

func TestGreedyNoisyPositions(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	pairs := make([]model.Pair, 3000)
	var pos uint64
	for i := range pairs {
		pos += uint64(r.Intn(1000))
		pairs[i] = model.Pair{Key: uint64(i*3 + r.Intn(3)), Position: pos}
	}
	segs, err := KindBandGreedy.Draft(pairs, 100)
	require.NoError(t, err)
	checkCover(t, pairs, segs, 100)
}

func TestGreedyHugeKeys(t *testing.T) {
	pairs := []model.Pair{
		{Key: 1 << 62, Position: 0},
		{Key: 1<<62 + 1, Position: 16},
		{Key: 1<<63 + 5, Position: 32},
		{Key: 1<<64 - 2, Position: 48},
		{Key: 1<<64 - 1, Position: 64},
	}
	segs, err := KindBandGreedy.Draft(pairs, 4)
	require.NoError(t, err)
	checkCover(t, pairs, segs, 4)
}

func TestStep(t *testing.T) {
	pairs := randomPairs(3, 500)
	segs, err := KindStep.Draft(pairs, 99)
	require.NoError(t, err)
	assert.Len(t, segs, len(pairs))
	checkCover(t, pairs, segs, 0)
	for _, s := range segs {
		assert.Equal(t, model.Step, s.Tag)
		assert.EqualValues(t, 0, s.Delta)
	}
}

func TestEqualScenario(t *testing.T) {
	segs, err := KindBandEqual.Draft(scenario, 2)
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.EqualValues(t, 1, segs[0].KeyLo)
	assert.EqualValues(t, 3, segs[1].KeyLo)
	for _, s := range segs {
		assert.Equal(t, 2, s.Count)
		assert.Equal(t, s.Delta, model.MaxError(s, scenario[s.KeyLo-1:s.KeyLo+1]))
	}
}

func TestEqualRecordsActualError(t *testing.T) {
	pairs := []model.Pair{{1, 0}, {2, 100}, {3, 101}, {4, 102}, {10, 200}}
	segs, err := KindBandEqual.Draft(pairs, 3)
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.NotZero(t, segs[0].Delta)
	checkCover(t, pairs, segs, segs[0].Delta+segs[1].Delta)
	segs, err = KindBandEqual.Draft(pairs, 0)
	require.NoError(t, err)
	assert.Len(t, segs, len(pairs))
}

func TestEqualBound(t *testing.T) {
	pairs := randomPairs(11, 4000)
	for _, load := range []uint64{1, 7, 64, 4000, 10000} {
		segs, err := KindBandEqual.Draft(pairs, load)
		require.NoError(t, err)
		assert.Len(t, segs, (len(pairs)+int(load)-1)/int(load))
		checkCover(t, pairs, segs, ^uint64(0))
	}
}

func TestRejectBadInput(t *testing.T) {
	unsorted := []model.Pair{{1, 0}, {3, 1}, {2, 2}}
	dup := []model.Pair{{1, 0}, {1, 1}}
	for _, k := range All {
		_, err := k.Draft(unsorted, 4)
		assert.True(t, aie.IsKind(err, aie.Build), "%s", k)
		_, err = k.Draft(dup, 4)
		assert.True(t, aie.IsKind(err, aie.Build), "%s", k)
		_, err = k.Draft(nil, 4)
		assert.True(t, aie.IsKind(err, aie.Build), "%s", k)
	}
}

func TestParseKinds(t *testing.T) {
	kinds, err := ParseKinds("band_equal, step")
	require.NoError(t, err)
	assert.Equal(t, []Kind{KindBandEqual, KindStep}, kinds)
	assert.Equal(t, "band_equal,step", FormatKinds(kinds))
	_, err = ParseKinds("step,step")
	assert.True(t, aie.IsKind(err, aie.Config))
	_, err = ParseKinds("rmi")
	assert.True(t, aie.IsKind(err, aie.Config))
	_, err = ParseKinds("")
	assert.True(t, aie.IsKind(err, aie.Config))
}
