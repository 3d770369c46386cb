package keylock_test

import (
	"sync"
	"testing"

	"github.com/defent/order-intake/internal/keylock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestKeyLock_MutualExclusion(t *testing.T) {
	locks := keylock.New()

	const goroutines = 50

	counter := 0
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()

			locks.Lock("same-key")
			defer locks.Unlock("same-key")

			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines, counter)
}

func TestKeyLock_IndependentKeys(t *testing.T) {
	locks := keylock.New()

	locks.Lock("key-a")

	// A different key must not block.
	done := make(chan struct{})
	go func() {
		locks.Lock("key-b")
		locks.Unlock("key-b")
		close(done)
	}()

	<-done
	locks.Unlock("key-a")
}

func TestKeyLock_Reacquire(t *testing.T) {
	locks := keylock.New()

	locks.Lock("key")
	locks.Unlock("key")

	// The entry is removed once released; a fresh Lock must still work.
	locks.Lock("key")
	locks.Unlock("key")
}
