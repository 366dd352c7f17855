package domain

// Feed is the ordered, de-duplicated collection of notifications shown to
// the user. It holds at most one record per ID. Feed is not safe for
// concurrent use; callers serialize access.
type Feed struct {
	items []Notification
}

// NewFeed builds a feed from records in the given order. Later duplicates
// of an ID are dropped.
func NewFeed(records []Notification) *Feed {
	f := &Feed{items: make([]Notification, 0, len(records))}
	f.AppendMissing(records)
	return f
}

// Len returns the number of records in the feed.
func (f *Feed) Len() int {
	return len(f.items)
}

// Records returns a copy of the feed in display order.
func (f *Feed) Records() []Notification {
	out := make([]Notification, len(f.items))
	copy(out, f.items)
	return out
}

// IDs returns the record IDs in display order.
func (f *Feed) IDs() []int64 {
	ids := make([]int64, len(f.items))
	for i := range f.items {
		ids[i] = f.items[i].ID
	}
	return ids
}

// Get returns the record with the given ID.
func (f *Feed) Get(id int64) (Notification, bool) {
	if i := f.indexOf(id); i >= 0 {
		return f.items[i], true
	}
	return Notification{}, false
}

// Contains reports whether the feed holds a record with the given ID.
func (f *Feed) Contains(id int64) bool {
	return f.indexOf(id) >= 0
}

// Upsert merges n into an existing record with the same ID, or prepends
// it as the most recent record. Returns true when n was inserted.
func (f *Feed) Upsert(n Notification) bool {
	if i := f.indexOf(n.ID); i >= 0 {
		f.items[i].Merge(n)
		return false
	}
	f.items = append([]Notification{n}, f.items...)
	return true
}

// AppendMissing appends records whose ID is not yet present, preserving
// their order. Returns the number appended.
func (f *Feed) AppendMissing(records []Notification) int {
	added := 0
	for _, n := range records {
		if i := f.indexOf(n.ID); i >= 0 {
			continue
		}
		f.items = append(f.items, n)
		added++
	}
	return added
}

// Reconcile merges fetched records over the feed by ID, then re-sorts the
// whole feed newest first. It returns the fetched records that were not
// in the feed before the merge, in fetched order.
func (f *Feed) Reconcile(fetched []Notification) []Notification {
	var discovered []Notification
	for _, n := range fetched {
		if i := f.indexOf(n.ID); i >= 0 {
			f.items[i].Merge(n)
			continue
		}
		f.items = append(f.items, n)
		discovered = append(discovered, n)
	}
	f.items = SortByCreatedAtDesc(f.items)
	return discovered
}

// MarkRead flips the read flag of the record with the given ID.
// found is false when no such record exists; changed is true only when
// the record was previously unread.
func (f *Feed) MarkRead(id int64) (found, changed bool) {
	i := f.indexOf(id)
	if i < 0 {
		return false, false
	}
	return true, f.items[i].MarkRead()
}

// MarkAllRead flips every record to read and returns how many changed.
func (f *Feed) MarkAllRead() int {
	changed := 0
	for i := range f.items {
		if f.items[i].MarkRead() {
			changed++
		}
	}
	return changed
}

// Remove deletes records by ID and returns how many of the removed
// records were unread.
func (f *Feed) Remove(ids ...int64) (removed, unread int) {
	drop := make(map[int64]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := f.items[:0]
	for _, n := range f.items {
		if drop[n.ID] {
			removed++
			if !n.Read {
				unread++
			}
			continue
		}
		kept = append(kept, n)
	}
	f.items = kept
	return removed, unread
}

func (f *Feed) indexOf(id int64) int {
	for i := range f.items {
		if f.items[i].ID == id {
			return i
		}
	}
	return -1
}
