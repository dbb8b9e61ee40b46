// Package worker runs short CPU-bound jobs, such as per-stage snapshot
// mirroring, on a fixed pool sized to the machine.
package worker

import (
	"runtime"

	"github.com/getsentry/sentry-go"
)

// The queue holds one extra batch so a submitter fanning out over the
// stages rarely blocks.
var jobs = make(chan func(), runtime.NumCPU()*2)

func init() {
	for i := 0; i < runtime.NumCPU(); i++ {
		go run()
	}
}

func run() {
	defer sentry.Recover()

	for f := range jobs {
		f()
	}
}

// Submit queues f on the pool. It blocks once every worker is busy and
// the queue is full.
func Submit(f func()) {
	jobs <- f
}
