package provider

import "sync"

// KeyPool hands out API keys in round-robin order so successive requests
// spread load across a provider's credentials. Pools are constructed once
// and injected into each adapter; there is no process-wide key state.
type KeyPool struct {
	mu   sync.Mutex
	keys []string
	next int
}

// NewKeyPool creates a pool over the given keys. A nil or empty slice
// yields a pool that always returns "".
func NewKeyPool(keys []string) *KeyPool {
	clean := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			clean = append(clean, k)
		}
	}
	return &KeyPool{keys: clean}
}

// Next returns the next key in rotation.
func (p *KeyPool) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.keys) == 0 {
		return ""
	}
	k := p.keys[p.next]
	p.next = (p.next + 1) % len(p.keys)
	return k
}

// Size returns the number of keys in the pool.
func (p *KeyPool) Size() int {
	return len(p.keys)
}
