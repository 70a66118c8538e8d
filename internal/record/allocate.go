package record

// NextSeq computes the sequence number for a record about to be created:
// one past the highest existing sequence, or 1 for an empty collection.
// Sequence numbers are dense and 1-based; the line stores derive file
// positions from them, so they are never reused or reassigned.
func NextSeq[T any](collection []*T, seqOf func(*T) int) int {
	next := 1
	for _, rec := range collection {
		if seq := seqOf(rec); seq >= next {
			next = seq + 1
		}
	}
	return next
}
