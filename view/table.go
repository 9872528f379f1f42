package view

// Table owns one render handle per visible entity. Reconcile is called once
// per tick: handles are created for entities that became visible, updated
// for those still visible, and retired for those that left the frame.
type Table[H any] struct {
	create  func(Entity) H
	update  func(H, Entity) H
	retire  func(key string, h H)
	handles map[string]H
	seen    map[string]struct{}
}

// NewTable returns an empty table. update and retire may be nil.
func NewTable[H any](create func(Entity) H, update func(H, Entity) H, retire func(string, H)) *Table[H] {
	return &Table[H]{
		create:  create,
		update:  update,
		retire:  retire,
		handles: make(map[string]H),
		seen:    make(map[string]struct{}),
	}
}

// Reconcile brings the table in line with f and reports how many handles
// were created and retired.
func (t *Table[H]) Reconcile(f Frame) (added, retired int) {
	clear(t.seen)
	for _, e := range f.Entities {
		t.seen[e.Key] = struct{}{}
		h, ok := t.handles[e.Key]
		if !ok {
			t.handles[e.Key] = t.create(e)
			added++
			continue
		}
		if t.update != nil {
			t.handles[e.Key] = t.update(h, e)
		}
	}
	for key, h := range t.handles {
		if _, ok := t.seen[key]; ok {
			continue
		}
		delete(t.handles, key)
		if t.retire != nil {
			t.retire(key, h)
		}
		retired++
	}
	return added, retired
}

// Get returns the handle for key.
func (t *Table[H]) Get(key string) (H, bool) {
	h, ok := t.handles[key]
	return h, ok
}

// Len returns the number of live handles.
func (t *Table[H]) Len() int { return len(t.handles) }
