package ecs

// World is the top-level ECS container. It owns the entity pool, the component
// registry, and a deferred destruction queue flushed by CleanupSystem each tick.
// Structures emptied mid-tick stay addressable until the flush so events
// emitted in the same tick can still resolve them.
type World struct {
	pool         *EntityPool
	registry     *Registry
	destroyQueue []EntityID
	queued       map[EntityID]struct{}
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		registry:     NewRegistry(),
		destroyQueue: make([]EntityID, 0, 8),
		queued:       make(map[EntityID]struct{}),
	}
}

func (w *World) Pool() *EntityPool   { return w.pool }
func (w *World) Registry() *Registry { return w.registry }

func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// MarkForDestruction queues an entity for end-of-tick cleanup. Marking the
// same entity twice in one tick queues it once.
func (w *World) MarkForDestruction(id EntityID) {
	if _, dup := w.queued[id]; dup {
		return
	}
	w.queued[id] = struct{}{}
	w.destroyQueue = append(w.destroyQueue, id)
}

// PendingDestruction returns how many entities await the next flush.
func (w *World) PendingDestruction() int { return len(w.destroyQueue) }

// FlushDestroyQueue destroys all queued entities, clears their components and
// returns the IDs that were destroyed, in queue order.
func (w *World) FlushDestroyQueue() []EntityID {
	if len(w.destroyQueue) == 0 {
		return nil
	}
	flushed := make([]EntityID, 0, len(w.destroyQueue))
	for _, id := range w.destroyQueue {
		if !w.pool.Alive(id) {
			continue
		}
		w.registry.RemoveAll(id)
		w.pool.Destroy(id)
		flushed = append(flushed, id)
	}
	w.destroyQueue = w.destroyQueue[:0]
	clear(w.queued)
	return flushed
}
