package idgen

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUnique(t *testing.T) {
	require.NoError(t, Init(1))

	const n = 10000
	seen := make(map[int64]bool, n)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < n/10; j++ {
				id := NextID()
				mu.Lock()
				assert.False(t, seen[id], "重复 ID: %d", id)
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, n)
}

func TestBusinessNoPrefix(t *testing.T) {
	require.NoError(t, Init(1))

	assert.True(t, strings.HasPrefix(GeneratePurchaseNo(), "TPU"))
	assert.True(t, strings.HasPrefix(GenerateTransactionNo(), "TTX"))
	assert.NotEqual(t, GeneratePurchaseNo(), GeneratePurchaseNo())
}

func TestInitRejectsBadMachineID(t *testing.T) {
	assert.Error(t, Init(-1))
	assert.Error(t, Init(1024))
	assert.NoError(t, Init(1023))
}
