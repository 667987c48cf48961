package bot

import "sync"

// Deduplicator filters repeat delivery of the same webhook update. Telegram
// re-sends an update until it gets an acknowledgement, so the same update_id
// can arrive more than once, including concurrently.
//
// Seen ids are kept in memory for the process lifetime with no eviction;
// after a restart the guarantee is gone (best-effort by design).
type Deduplicator struct {
	mu   sync.Mutex
	seen map[int]struct{}
}

func NewDeduplicator() *Deduplicator {
	return &Deduplicator{seen: make(map[int]struct{})}
}

// ShouldProcess reports whether updateID has never been seen and, in the same
// critical section, records it as seen. Exactly one caller wins per id.
func (d *Deduplicator) ShouldProcess(updateID int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[updateID]; ok {
		return false
	}
	d.seen[updateID] = struct{}{}
	return true
}

// Len returns the number of recorded update ids.
func (d *Deduplicator) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
