package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIncAndValue(t *testing.T) {
	reg := NewRegistry()

	assert.Equal(t, int64(0), reg.Value("unknown"))

	reg.Inc("requests")
	reg.Inc("requests")
	reg.Add("requests", 3)

	assert.Equal(t, int64(5), reg.Value("requests"))
}

func TestSnapshotAndReset(t *testing.T) {
	reg := NewRegistry()
	reg.Inc("a")
	reg.Add("b", 10)

	snap := reg.Snapshot()
	assert.Equal(t, int64(1), snap["a"])
	assert.Equal(t, int64(10), snap["b"])

	reg.Reset()
	assert.Equal(t, int64(0), reg.Value("a"))
	assert.Equal(t, int64(0), reg.Value("b"))
}

func TestRegistriesAreIndependent(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()

	a.Inc("shared-name")

	assert.Equal(t, int64(1), a.Value("shared-name"))
	assert.Equal(t, int64(0), b.Value("shared-name"))
}

func TestConcurrentCounting(t *testing.T) {
	reg := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				reg.Inc("hits")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(8000), reg.Value("hits"))
}
