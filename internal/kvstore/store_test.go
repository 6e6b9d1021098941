// Copyright 2025, Clipwise, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package kvstore

import (
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStoreSetGetDelete(t *testing.T) {
	store := NewMemoryStore()

	_, ok := store.Get("missing")
	assert.False(t, ok)

	store.Set("k1", "v1")
	v, ok := store.Get("k1")
	assert.True(t, ok)
	assert.Equal(t, "v1", v)

	store.Set("k1", 42)
	v, ok = store.Get("k1")
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	store.Delete("k1")
	_, ok = store.Get("k1")
	assert.False(t, ok)
}

func TestMemoryStoreKeys(t *testing.T) {
	store := NewMemoryStore()
	store.Set("b", 2)
	store.Set("a", 1)
	store.Set("c", 3)

	keys := store.Keys()
	sort.Strings(keys)
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", n%4)
			store.Set(key, n)
			store.Get(key)
			store.Keys()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 4, len(store.Keys()))
}
