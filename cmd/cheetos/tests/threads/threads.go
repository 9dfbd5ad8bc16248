// Package threads holds the end-to-end alarm scenarios spec.md §8
// describes (alarm_single, alarm_multiple, alarm_zero): each spawns
// scheduler threads that call Scheduler.Sleep and reports PASS/FAIL to
// the console the way a QEMU-serial integration test would, since there
// is no hosted `go test` runner at ring 0 to assert against.
package threads

import (
	"fmt"

	"github.com/inhibitor1217/cheetos/internal/console"
	"github.com/inhibitor1217/cheetos/internal/ksync"
	"github.com/inhibitor1217/cheetos/internal/sched"
)

// wake_t records one (thread, iteration) completion, in the order
// threads actually woke up.
type wake_t struct {
	thread int
}

// sleep spawns threadCnt threads, thread i sleeping (i+1)*10 ticks per
// iteration for iterations iterations, and reports one line per
// (thread, iteration) pair plus a final verdict: the completion order's
// iterations*duration product must be non-decreasing, and every thread
// must reach exactly iterations wakeups (spec.md §8 scenarios 4 and 5;
// mirrors original_source/kernel_test/src/threads/sleep.rs's sleep(),
// minus that function's absolute-tick bookkeeping — Scheduler.Sleep
// takes a relative tick count here and there is no cross-goroutine
// scheduling drift to correct for).
func sleep(s sched.Scheduler, c console.Console, name string, threadCnt, iterations int) {
	c.Printf("(%s) creating %d threads to sleep %d times each\n", name, threadCnt, iterations)
	c.Printf("(%s) thread 0 sleeps 10 ticks each time, thread 1 sleeps 20, and so on\n", name)
	c.Printf("(%s) product of each iteration count and sleep duration should appear in nondescending order\n", name)

	lock := ksync.NewLock(s)
	done := ksync.NewSemaphore(s, 0)
	var trace []wake_t

	for i := 0; i < threadCnt; i++ {
		i := i
		duration := (i + 1) * 10
		s.Spawn(fmt.Sprintf("%s-thread-%d", name, i), 0, func() {
			for iter := 0; iter < iterations; iter++ {
				s.Sleep(duration)
				lock.Acquire()
				trace = append(trace, wake_t{thread: i})
				lock.Release()
			}
			done.Up()
		})
	}

	for i := 0; i < threadCnt; i++ {
		done.Down()
	}

	counts := make([]int, threadCnt)
	product := 0
	ok := true
	for _, w := range trace {
		counts[w.thread]++
		duration := (w.thread + 1) * 10
		newProduct := counts[w.thread] * duration
		c.Printf("(%s) thread %d: duration = %d, iterations = %d, product = %d\n",
			name, w.thread, duration, counts[w.thread], newProduct)
		if newProduct < product {
			c.Printf("(%s) FAIL: thread %d woke up out of order (%d > %d)\n", name, w.thread, product, newProduct)
			ok = false
		} else {
			product = newProduct
		}
	}

	for i, cnt := range counts {
		if cnt != iterations {
			c.Printf("(%s) FAIL: thread %d woke up %d times instead of %d\n", name, i, cnt, iterations)
			ok = false
		}
	}

	if ok {
		c.Printf("(%s) PASS\n", name)
	}
}

// AlarmSingle spawns 5 threads that each sleep once, thread i sleeping
// (i+1)*10 ticks, and confirms the completion order's iterations*duration
// product is non-decreasing, ending with the literal marker
// "(alarm_single) PASS" (spec.md §8 scenario 4).
func AlarmSingle(s sched.Scheduler, c console.Console) {
	sleep(s, c, "alarm_single", 5, 1)
}

// AlarmMultiple spawns 5 threads that each sleep 7 times and confirms
// every (thread, iteration) wakeup keeps the duration*iterations product
// non-decreasing across the full trace, with every thread reaching
// exactly 7 iterations (spec.md §8 scenario 5).
func AlarmMultiple(s sched.Scheduler, c console.Console) {
	sleep(s, c, "alarm_multiple", 5, 7)
}

// AlarmZero spawns a thread that sleeps for zero ticks and confirms
// Sleep(0) never blocks it against the scheduler's wake list at all
// (spec.md §4.9's documented edge case).
func AlarmZero(s sched.Scheduler, c console.Console) {
	done := ksync.NewSemaphore(s, 0)
	s.Spawn("alarm-zero", 0, func() {
		s.Sleep(0)
		done.Up()
	})

	done.Down()
	c.Println("alarm_zero: PASS")
}
