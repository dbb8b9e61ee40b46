package worker

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestSubmitRunsEveryJob(t *testing.T) {
	var done atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		Submit(func() {
			defer wg.Done()
			done.Add(1)
		})
	}
	wg.Wait()
	if n := done.Load(); n != 64 {
		t.Fatalf("ran %d jobs, want 64", n)
	}
}
