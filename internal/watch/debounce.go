package watch

import (
	"sync"
	"time"
)

// Debounce forwards a key once no new occurrence of it has arrived for
// delay. Pending keys are flushed when in closes.
func Debounce(in <-chan string, delay time.Duration) <-chan string {
	out := make(chan string, cap(in)+1)

	go func() {
		var (
			mu     sync.Mutex
			wg     sync.WaitGroup
			timers = make(map[string]*time.Timer)
		)

		for key := range in {
			mu.Lock()
			if t, ok := timers[key]; ok && t.Stop() {
				wg.Done()
			}

			wg.Add(1)
			var t *time.Timer
			t = time.AfterFunc(delay, func() {
				defer wg.Done()

				mu.Lock()
				if timers[key] == t {
					delete(timers, key)
				}
				mu.Unlock()

				out <- key
			})
			timers[key] = t
			mu.Unlock()
		}

		mu.Lock()
		for key, t := range timers {
			if t.Stop() {
				wg.Done()
				out <- key
			}
		}
		timers = nil
		mu.Unlock()

		wg.Wait()
		close(out)
	}()

	return out
}
