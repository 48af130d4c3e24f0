package changestreamcore

// RecordObserver is notified as each DataChangeRecord is finalized by the
// pipeline orchestrator — the write-side equivalent of being handed each
// record as it's produced rather than as it's later read back.
type RecordObserver interface {
	ObserveRecord(r *DataChangeRecord)
}

// RecordObserverFunc is an adapter to allow ordinary functions as a
// RecordObserver.
type RecordObserverFunc func(*DataChangeRecord)

func (f RecordObserverFunc) ObserveRecord(r *DataChangeRecord) { f(r) }
