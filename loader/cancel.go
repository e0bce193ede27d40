package loader

import "sync"

// registry tracks cancellable in-flight tasks by ID, guarded by mu —
// mirrors the stub registry's "module-owned value with lazy
// initialization" convention from spec.md §9's design notes.
type registry struct {
	mu    sync.Mutex
	tasks map[string]*taskState
}

func (r *registry) put(id string, st *taskState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tasks == nil {
		r.tasks = make(map[string]*taskState)
	}
	r.tasks[id] = st
}

func (r *registry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, id)
}

func (r *registry) get(id string) (*taskState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.tasks[id]
	return st, ok
}

// Cancel aborts the in-flight task identified by taskID, also cancelling
// any pending delayed-stub timer registered against it (spec.md §4.4).
// produceResumableBytes requests that the bytes downloaded so far be
// returned instead of discarded; pass the result as a subsequent Fetch
// call's FetchOptions.ResumableBytes to resume a Buffered transfer via a
// Range request. Large-data (spill-to-file) transfers have no in-memory
// snapshot to return and always yield nil here.
func (l *Loader) Cancel(taskID string, produceResumableBytes bool) []byte {
	st, ok := l.tasks.get(taskID)
	if !ok {
		return nil
	}
	if st.delayTimer != nil {
		st.delayTimer.Stop()
	}
	st.cancel()
	l.tasks.remove(taskID)
	if !produceResumableBytes {
		return nil
	}
	return st.partialSnapshot()
}
