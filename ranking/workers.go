package ranking

import (
	"sync"

	"github.com/google/uuid"
)

// workerMap holds one worker per challenge. The worker's mutex
// serializes rerank execution for its challenge; the dirty slot
// coalesces triggers so at most one trailing run is ever queued
// behind the in-flight one.
type workerMap struct {
	mu      sync.Mutex
	workers map[uuid.UUID]*chWorker
	run     func(challengeUUID uuid.UUID)
}

type chWorker struct {
	runMu sync.Mutex    // held while a rerank for this challenge runs
	dirty chan struct{} // cap 1: a queued trailing rerank
}

func (m *workerMap) init(run func(challengeUUID uuid.UUID)) {
	m.workers = make(map[uuid.UUID]*chWorker)
	m.run = run
}

func (m *workerMap) get(challengeUUID uuid.UUID) *chWorker {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.workers[challengeUUID]
	if !ok {
		w = &chWorker{dirty: make(chan struct{}, 1)}
		m.workers[challengeUUID] = w
		go w.loop(challengeUUID, m.run)
	}
	return w
}

// trigger marks the challenge dirty. If a rerank is already queued
// the trigger collapses into it; a trailing run after the in-flight
// one completes is sufficient to reach a consistent state.
func (m *workerMap) trigger(challengeUUID uuid.UUID) {
	w := m.get(challengeUUID)
	select {
	case w.dirty <- struct{}{}:
	default:
	}
}

// lock acquires the challenge's serialization token for a caller that
// wants to run synchronously (explicit rerank, winner announcement).
func (m *workerMap) lock(challengeUUID uuid.UUID) (unlock func()) {
	w := m.get(challengeUUID)
	w.runMu.Lock()
	return w.runMu.Unlock
}

func (w *chWorker) loop(challengeUUID uuid.UUID, run func(uuid.UUID)) {
	for range w.dirty {
		w.runMu.Lock()
		run(challengeUUID)
		w.runMu.Unlock()
	}
}
