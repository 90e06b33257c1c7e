package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
)

// progress prints a running message-rate counter to an io.Writer
// (typically stderr) every `every` messages, and a final summary on
// done. Kept deliberately dumb: a decode run over a multi-gigabyte feed
// file is otherwise silent for minutes, and a terminal counter is
// enough signal that the CLI hasn't hung.
type progress struct {
	out   io.Writer
	every uint64
	start time.Time
	count uint64
}

func newProgress(out io.Writer, every uint64) *progress {
	return &progress{out: out, every: every, start: time.Now()}
}

func (p *progress) tick() {
	p.count++
	if p.every == 0 || p.count%p.every != 0 {
		return
	}
	p.report()
}

func (p *progress) report() {
	elapsed := time.Since(p.start)
	rate := float64(p.count) / elapsed.Seconds()
	fmt.Fprintf(p.out, "%s messages (%s/s)\n", humanize.Comma(int64(p.count)), humanize.Comma(int64(rate)))
}

func (p *progress) done() {
	elapsed := time.Since(p.start)
	fmt.Fprintf(p.out, "done: %s messages in %s\n", humanize.Comma(int64(p.count)), elapsed.Round(time.Millisecond))
}
