// Package display redraws a status block on a terminal at a fixed interval.
package display

import (
	"bytes"
	"io"
	"sync"
	"time"

	"github.com/gosuri/uilive"
)

type Displayer interface {
	// Display writes the current status to w and reports whether the
	// display should keep updating.
	Display(w io.Writer) bool
}

type Display struct {
	live     *uilive.Writer
	interval time.Duration
	updater  Displayer
	buffer   bytes.Buffer
	close    chan struct{}
	once     sync.Once
	done     sync.WaitGroup
}

func New(updater Displayer, interval time.Duration, out io.Writer) *Display {
	live := uilive.New()
	live.Out = out
	d := &Display{
		live:     live,
		interval: interval,
		updater:  updater,
		close:    make(chan struct{}),
	}
	d.done.Add(1)
	return d
}

func (d *Display) update() bool {
	d.buffer.Reset()
	cont := d.updater.Display(&d.buffer)
	// Ignore any errors.
	_, _ = io.Copy(d.live, &d.buffer)
	_ = d.live.Flush()
	return cont
}

func (d *Display) Run() {
	defer d.done.Done()
	for {
		if !d.update() {
			return
		}
		select {
		case <-d.close:
			return
		case <-time.After(d.interval):
		}
	}
}

// Close stops Run and draws the final status.
func (d *Display) Close() {
	d.once.Do(func() { close(d.close) })
	d.done.Wait()
	d.update()
}
