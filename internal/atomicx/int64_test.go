package atomicx

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInt64_Concurrent(t *testing.T) {
	var v Int64
	var wg sync.WaitGroup

	const cnt = 100
	wg.Add(cnt)
	for i := 0; i < cnt; i++ {
		go func() {
			defer wg.Done()
			v.Inc()
		}()
	}
	wg.Wait()
	assert.EqualValues(t, cnt, v.Value())

	wg.Add(cnt)
	for i := 0; i < cnt; i++ {
		go func() {
			defer wg.Done()
			v.Dec()
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 0, v.Value())
}
