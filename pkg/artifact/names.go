package artifact

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// Names tracks the file names claimed during a run, seeded with the
// names already recorded in the store. Claims are serialized so that
// entries enriched concurrently can never race to the same name.
type Names struct {
	mu  sync.Mutex
	set map[string]bool
}

// NewNames seeds a Names from the store's seen-name set. The input
// map is copied, not retained.
func NewNames(existing map[string]bool) *Names {
	set := make(map[string]bool, len(existing))
	for name := range existing {
		set[name] = true
	}
	return &Names{set: set}
}

// Claim reserves base, or the first -1, -2, ... suffixed variant that
// is still free, and returns the reserved name.
func (n *Names) Claim(base string) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	name := base
	if n.set[name] {
		ext := filepath.Ext(base)
		stem := strings.TrimSuffix(base, ext)
		for i := 1; ; i++ {
			name = fmt.Sprintf("%s-%d%s", stem, i, ext)
			if !n.set[name] {
				break
			}
		}
	}
	n.set[name] = true
	return name
}

// Has reports whether name is already claimed.
func (n *Names) Has(name string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.set[name]
}
