package dataset

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"

	"github.com/brimdata/airindex/model"
)

// Query is a key to look up and the position it is expected to map to.
type Query struct {
	Key      uint64
	Position uint64
}

// DefaultSeed makes generated keysets reproducible.
const DefaultSeed = 54613789

// SampleKeyset draws n queries uniformly, with replacement, from pairs.
func SampleKeyset(pairs []model.Pair, n int, seed int64) []Query {
	if len(pairs) == 0 {
		return nil
	}
	r := rand.New(rand.NewSource(seed))
	queries := make([]Query, n)
	for i := range queries {
		p := pairs[r.Intn(len(pairs))]
		queries[i] = Query{Key: p.Key, Position: p.Position}
	}
	return queries
}

// WriteKeyset writes one "key position" line per query.
func WriteKeyset(w io.Writer, queries []Query) error {
	bw := bufio.NewWriter(w)
	for _, q := range queries {
		if _, err := fmt.Fprintf(bw, "%d %d\n", q.Key, q.Position); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadKeyset reads a keyset written by WriteKeyset.
func ReadKeyset(r io.Reader) ([]Query, error) {
	pairs, err := ReadText(r)
	if err != nil {
		return nil, err
	}
	queries := make([]Query, len(pairs))
	for i, p := range pairs {
		queries[i] = Query(p)
	}
	return queries, nil
}
