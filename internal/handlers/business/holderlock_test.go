package business

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockHolder(t *testing.T) {
	t.Run("Serializes The Same Holder", func(t *testing.T) {
		const workers = 8
		counter := 0
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := lockHolder("holder-serial")
				defer unlock()
				v := counter
				time.Sleep(time.Millisecond)
				counter = v + 1
			}()
		}
		wg.Wait()
		assert.Equal(t, workers, counter)
	})

	t.Run("Entry Removed After Last Release", func(t *testing.T) {
		unlock := lockHolder("holder-idle")
		holderLocksMu.Lock()
		_, present := holderLocks["holder-idle"]
		holderLocksMu.Unlock()
		require.True(t, present)

		unlock()
		holderLocksMu.Lock()
		_, present = holderLocks["holder-idle"]
		holderLocksMu.Unlock()
		assert.False(t, present)
	})

	t.Run("Waiter Keeps The Entry Alive", func(t *testing.T) {
		unlock := lockHolder("holder-busy")
		acquired := make(chan func(), 1)
		go func() {
			acquired <- lockHolder("holder-busy")
		}()

		// 等待第二个调用进入排队
		require.Eventually(t, func() bool {
			holderLocksMu.Lock()
			defer holderLocksMu.Unlock()
			l, ok := holderLocks["holder-busy"]
			return ok && l.refs == 2
		}, time.Second, 5*time.Millisecond)

		unlock()
		second := <-acquired
		second()

		holderLocksMu.Lock()
		_, present := holderLocks["holder-busy"]
		holderLocksMu.Unlock()
		assert.False(t, present)
	})

	t.Run("Different Holders Do Not Block Each Other", func(t *testing.T) {
		unlockA := lockHolder("holder-a")
		defer unlockA()

		done := make(chan struct{})
		go func() {
			unlockB := lockHolder("holder-b")
			unlockB()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("independent holder was blocked")
		}
	})
}
