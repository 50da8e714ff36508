package display

import (
	"bytes"
	"fmt"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type counter struct {
	n     atomic.Int64
	limit int64
}

func (c *counter) Display(w io.Writer) bool {
	n := c.n.Add(1)
	fmt.Fprintf(w, "tick %d\n", n)
	return c.limit == 0 || n < c.limit
}

func TestRunStopsWhenDisplayerDone(t *testing.T) {
	var out bytes.Buffer
	c := &counter{limit: 3}
	d := New(c, time.Millisecond, &out)
	d.Run()
	d.Close()
	assert.EqualValues(t, 4, c.n.Load())
	assert.Contains(t, out.String(), "tick 4")
}

func TestClose(t *testing.T) {
	var out bytes.Buffer
	c := &counter{}
	d := New(c, time.Hour, &out)
	go d.Run()
	d.Close()
	d.Close()
	assert.GreaterOrEqual(t, c.n.Load(), int64(2))
}
