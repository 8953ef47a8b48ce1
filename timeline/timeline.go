// Package timeline keeps the ordered, deduplicated, author-grouped list of
// messages shown for one channel.
//
// Entries are ordered by CreatedAt with ties broken by ID, regardless of the
// order they arrive in. An entry is Merged when the entry before it has the
// same author, so the renderer can omit its header. Every mutation repairs
// Merged only around the positions it touched.
package timeline

import (
	"cmp"
	"iter"
	"slices"
	"time"

	"github.com/fwojciec/chatline"
	"github.com/fwojciec/chatline/logging"
	"github.com/rs/zerolog"
)

// Entry is one rendered message.
type Entry struct {
	ID          chatline.MessageID
	ChannelID   chatline.ChannelID
	AuthorID    chatline.UserID
	AuthorName  string
	CreatedAt   time.Time
	Content     string
	Attachments []chatline.AttachmentRef
	EditedAt    time.Time

	// Merged is true when the previous entry has the same author.
	Merged bool
}

// Edited reports whether the entry has been edited.
func (e Entry) Edited() bool { return !e.EditedAt.IsZero() }

func newEntry(m chatline.Message) Entry {
	return Entry{
		ID:          m.ID,
		ChannelID:   m.ChannelID,
		AuthorID:    m.AuthorID,
		AuthorName:  m.AuthorName,
		CreatedAt:   m.CreatedAt,
		Content:     m.Content,
		Attachments: slices.Clone(m.Attachments),
		EditedAt:    m.EditedAt,
	}
}

// compare orders entries by CreatedAt, then ID.
func compare(a, b Entry) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// Timeline is the entry collection. It is owned by the UI context and is not
// safe for concurrent use.
type Timeline struct {
	entries    []Entry
	ids        map[chatline.MessageID]time.Time // id -> CreatedAt, for binary search
	tombstones map[chatline.MessageID]struct{}
	logger     zerolog.Logger
}

// Option configures a Timeline.
type Option func(*Timeline)

// WithLogger sets the logger used to report malformed entries.
func WithLogger(l zerolog.Logger) Option {
	return func(t *Timeline) {
		t.logger = logging.Component(l, "timeline")
	}
}

// New creates an empty Timeline.
func New(opts ...Option) *Timeline {
	t := &Timeline{
		ids:        make(map[chatline.MessageID]time.Time),
		tombstones: make(map[chatline.MessageID]struct{}),
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Len returns the number of entries.
func (t *Timeline) Len() int { return len(t.entries) }

// At returns the entry at position i.
func (t *Timeline) At(i int) Entry { return t.entries[i] }

// Entries returns a copy of all entries in order.
func (t *Timeline) Entries() []Entry { return slices.Clone(t.entries) }

// All iterates entries in order.
func (t *Timeline) All() iter.Seq2[int, Entry] {
	return func(yield func(int, Entry) bool) {
		for i, e := range t.entries {
			if !yield(i, e) {
				return
			}
		}
	}
}

// Contains reports whether an entry with id is present.
func (t *Timeline) Contains(id chatline.MessageID) bool {
	_, ok := t.ids[id]
	return ok
}

// Index returns the position of the entry with id, or -1.
func (t *Timeline) Index(id chatline.MessageID) int {
	at, ok := t.ids[id]
	if !ok {
		return -1
	}
	i, found := slices.BinarySearchFunc(t.entries, Entry{ID: id, CreatedAt: at}, compare)
	if !found {
		return -1
	}
	return i
}

// OldestTimestamp returns the CreatedAt of the first entry, the cursor for
// the next history page. It reports false when the timeline is empty.
func (t *Timeline) OldestTimestamp() (time.Time, bool) {
	if len(t.entries) == 0 {
		return time.Time{}, false
	}
	return t.entries[0].CreatedAt, true
}

// InsertBatch adds msgs and returns how many were inserted. Messages whose id
// is already present, or was removed, are dropped silently. Malformed
// messages are logged and dropped without affecting the rest of the batch.
// dir selects the repair path; it does not affect final order.
func (t *Timeline) InsertBatch(msgs []chatline.Message, dir chatline.Direction) int {
	batch := t.admit(msgs)
	if len(batch) == 0 {
		return 0
	}
	slices.SortFunc(batch, compare)

	switch {
	case len(t.entries) == 0:
		t.entries = batch
		t.RecomputeMergeBoundaries(0, len(batch)-1)
	case dir == chatline.Append && compare(batch[0], t.entries[len(t.entries)-1]) > 0:
		start := len(t.entries)
		t.entries = append(t.entries, batch...)
		t.RecomputeMergeBoundaries(start, len(t.entries)-1)
	case dir == chatline.Prepend && compare(batch[len(batch)-1], t.entries[0]) < 0:
		t.entries = slices.Insert(t.entries, 0, batch...)
		// The old first entry may now continue the new page's last run.
		t.RecomputeMergeBoundaries(0, len(batch))
	default:
		t.insertScattered(batch)
	}

	for _, e := range batch {
		t.ids[e.ID] = e.CreatedAt
	}
	return len(batch)
}

// admit filters msgs down to well-formed, unseen entries.
func (t *Timeline) admit(msgs []chatline.Message) []Entry {
	batch := make([]Entry, 0, len(msgs))
	seen := make(map[chatline.MessageID]struct{}, len(msgs))
	for _, m := range msgs {
		if err := m.Validate(); err != nil {
			t.logger.Warn().Err(err).Str("id", m.ID.String()).Msg("dropping malformed message")
			continue
		}
		if _, ok := t.ids[m.ID]; ok {
			continue
		}
		if _, ok := t.tombstones[m.ID]; ok {
			continue
		}
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		batch = append(batch, newEntry(m))
	}
	return batch
}

// insertScattered places each entry at its sorted position and repairs the
// entry and its successor.
func (t *Timeline) insertScattered(batch []Entry) {
	for _, e := range batch {
		i, _ := slices.BinarySearchFunc(t.entries, e, compare)
		t.entries = slices.Insert(t.entries, i, e)
	}
	for _, e := range batch {
		i, found := slices.BinarySearchFunc(t.entries, e, compare)
		if !found {
			continue
		}
		t.RecomputeMergeBoundaries(i, i+1)
	}
}

// RecomputeMergeBoundaries re-derives Merged for positions from..to
// inclusive, clamped to the timeline.
func (t *Timeline) RecomputeMergeBoundaries(from, to int) {
	from = max(from, 0)
	to = min(to, len(t.entries)-1)
	for i := from; i <= to; i++ {
		t.entries[i].Merged = i > 0 && t.entries[i-1].AuthorID == t.entries[i].AuthorID
	}
}

// Remove deletes the entry with id and tombstones the id so that a late echo
// or a re-fetched page cannot bring it back. It reports whether an entry was
// removed. Only the entry that slides into the removed position is repaired.
func (t *Timeline) Remove(id chatline.MessageID) bool {
	t.tombstones[id] = struct{}{}
	i := t.Index(id)
	if i < 0 {
		return false
	}
	t.entries = slices.Delete(t.entries, i, i+1)
	delete(t.ids, id)
	t.RecomputeMergeBoundaries(i, i)
	return true
}

// Removed reports whether id has been tombstoned.
func (t *Timeline) Removed(id chatline.MessageID) bool {
	_, ok := t.tombstones[id]
	return ok
}

// Edit replaces the content, attachments and edit time of the entry with
// m.ID. Ordering and grouping are unaffected. It reports whether the entry
// was found.
func (t *Timeline) Edit(m chatline.Message) bool {
	i := t.Index(m.ID)
	if i < 0 {
		return false
	}
	e := &t.entries[i]
	e.Content = m.Content
	e.Attachments = slices.Clone(m.Attachments)
	e.EditedAt = m.EditedAt
	if e.EditedAt.IsZero() {
		e.EditedAt = time.Now()
	}
	return true
}
