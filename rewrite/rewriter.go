// Package rewrite implements the streaming pattern-substitution byte
// rewriter used to post-process compiler output (§4.1).
package rewrite

// Rewriter performs streaming substitution of a fixed byte pattern with a
// fixed byte replacement over chunks handed to Write, buffering only the
// committed-but-unflushed bytes and the bytes that might still be the
// prefix of a pattern match.
type Rewriter struct {
	pattern     []byte
	replacement []byte

	// committed holds emitted-in-order bytes not yet flushed, capped at
	// size.
	committed []byte
	size      int

	// pending holds bytes that may be the prefix of a pattern match; its
	// length is always in [0, len(pattern)].
	pending []byte

	emit func([]byte)
}

// New creates a Rewriter that replaces every non-overlapping, left-to-right
// occurrence of pattern with replacement. size bounds how much committed
// output is buffered before emit is called. emit is the consumer callback;
// it may be called zero or more times from Write and once more from Flush.
func New(pattern, replacement []byte, size int, emit func([]byte)) *Rewriter {
	if size <= 0 {
		size = 4096
	}
	return &Rewriter{
		pattern:     append([]byte(nil), pattern...),
		replacement: append([]byte(nil), replacement...),
		size:        size,
		emit:        emit,
	}
}

// Write feeds data into the rewriter. An empty pattern makes Write a direct
// passthrough, per §4.1.
func (r *Rewriter) Write(data []byte) {
	if len(r.pattern) == 0 {
		r.appendCommitted(data)
		return
	}

	for _, b := range data {
		r.writeByte(b)
	}
}

// writeByte advances the match state by one byte. On a mismatch no match
// can start at the first pending byte, so that byte is committed as literal
// output and the rest of the pending prefix plus b are scanned again -- a
// match may start inside them (e.g. the pattern "ABC" against input
// "AAB...": the second 'A' both ends the failed match on the first 'A' and
// starts the next one).
func (r *Rewriter) writeByte(b byte) {
	if b == r.pattern[len(r.pending)] {
		r.pending = append(r.pending, b)
		if len(r.pending) == len(r.pattern) {
			r.appendCommitted(r.replacement)
			r.pending = r.pending[:0]
		}
		return
	}

	if len(r.pending) == 0 {
		r.appendCommitted([]byte{b})
		return
	}

	rest := append(append([]byte(nil), r.pending[1:]...), b)
	r.appendCommitted(r.pending[:1])
	r.pending = r.pending[:0]
	for _, c := range rest {
		r.writeByte(c)
	}
}

// appendCommitted appends data to the committed buffer, flushing first if
// there isn't room.
func (r *Rewriter) appendCommitted(data []byte) {
	if len(r.committed)+len(data) > r.size {
		r.flushCommitted()
	}
	r.committed = append(r.committed, data...)
}

func (r *Rewriter) flushCommitted() {
	if len(r.committed) > 0 {
		r.emit(r.committed)
		r.committed = r.committed[:0]
	}
}

// Flush emits committed then pending, in that order, and resets both
// cursors. Call it once, after all input has been written.
func (r *Rewriter) Flush() {
	r.flushCommitted()
	if len(r.pending) > 0 {
		r.emit(r.pending)
		r.pending = r.pending[:0]
	}
}
