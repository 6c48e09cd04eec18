// Package queue implements the FIFO of pending source compilations
// described in §4.3: entries block on object-directory availability rather
// than on position in the queue.
package queue

import "forge/model"

// Entry is a (Source, Tree) pair, per §3.
type Entry struct {
	Source *model.Source
	Tree   *model.Tree
}

// Queue is a FIFO of Entries plus the set of object directories currently
// busy with an in-flight compile. It does no locking of its own: the
// supervisor calls Extract/MarkFree/InsertTransitiveDependencies from
// multiple concurrently-running compile goroutines (§4.9), and relies on
// holding its own mutex (qmu) around every call into the Queue to serialize
// them. Do not call a Queue's methods from a new call site without holding
// that same lock.
type Queue struct {
	entries []Entry
	busy    map[string]bool

	// present de-duplicates (Source, Tree) pairs so a source is never
	// enqueued twice in one compile phase (§3's invariant).
	present map[entryKey]bool
}

type entryKey struct {
	source *model.Source
	tree   *model.Tree
}

// New creates an empty Queue.
func New() *Queue {
	return &Queue{
		busy:    map[string]bool{},
		present: map[entryKey]bool{},
	}
}

func keyOf(e Entry) entryKey {
	return entryKey{source: e.Source, tree: e.Tree}
}

// Push appends entry to the back of the queue, unless it (or an equal
// pairing) is already present.
func (q *Queue) Push(e Entry) bool {
	k := keyOf(e)
	if q.present[k] {
		return false
	}
	q.present[k] = true
	q.entries = append(q.entries, e)
	return true
}

// Extract returns the first entry in queue order whose object directory is
// not currently busy, removing it from the queue and marking that
// directory busy. The second return is false if no such entry exists.
func (q *Queue) Extract() (Entry, bool) {
	for i, e := range q.entries {
		dir := e.Source.ObjectProject.ObjDir
		if q.busy[dir] {
			continue
		}

		q.entries = append(q.entries[:i], q.entries[i+1:]...)
		q.busy[dir] = true
		return e, true
	}
	return Entry{}, false
}

// MarkFree releases dir, allowing a blocked entry targeting it to be
// extracted.
func (q *Queue) MarkFree(dir string) {
	delete(q.busy, dir)
}

// IsVirtuallyEmpty reports whether the queue is non-empty but every
// remaining entry is blocked on a busy object directory (§4.3).
func (q *Queue) IsVirtuallyEmpty() bool {
	if len(q.entries) == 0 {
		return false
	}
	for _, e := range q.entries {
		if !q.busy[e.Source.ObjectProject.ObjDir] {
			return false
		}
	}
	return true
}

// Len reports the number of entries still queued (including blocked ones).
func (q *Queue) Len() int {
	return len(q.entries)
}

// BusyDirs returns a snapshot of the currently busy object directories, for
// tests asserting the invariant in §8 ("the set of busy object directories
// equals the set of directories of in-flight compiles").
func (q *Queue) BusyDirs() map[string]bool {
	out := make(map[string]bool, len(q.busy))
	for k := range q.busy {
		out[k] = true
	}
	return out
}

// InsertTransitiveDependencies enqueues every source newly reachable via a
// parsed unit manifest's closure, as described in §4.3 and §4.9's
// "if closure_needed, enqueue sources newly reachable via the manifest".
func (q *Queue) InsertTransitiveDependencies(tree *model.Tree, sources []*model.Source) {
	for _, s := range sources {
		q.Push(Entry{Source: s, Tree: tree})
	}
}
