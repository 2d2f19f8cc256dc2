package ecs

// Arena owns the lifetime of every simulation object and hands out stable
// generational ids. Cells and rosters only ever hold EntityIDs, never pointers,
// so a released object is detectable instead of dangling.
//
// Accessed only from the game loop goroutine. No locks.
type Arena[T any] struct {
	pool         *EntityPool
	slots        []*T
	destroyQueue []EntityID
}

func NewArena[T any]() *Arena[T] {
	return &Arena[T]{
		pool:         NewEntityPool(),
		slots:        make([]*T, 0, 1024),
		destroyQueue: make([]EntityID, 0, 64),
	}
}

// Insert stores v and returns its id.
func (a *Arena[T]) Insert(v *T) EntityID {
	id := a.pool.Create()
	idx := int(id.Index())
	for idx >= len(a.slots) {
		a.slots = append(a.slots, nil)
	}
	a.slots[idx] = v
	return id
}

// Get returns the object for id, or nil and false if id is stale.
func (a *Arena[T]) Get(id EntityID) (*T, bool) {
	if !a.pool.Alive(id) {
		return nil, false
	}
	return a.slots[id.Index()], true
}

// MustGet is Get for call sites that hold an id obtained this tick.
func (a *Arena[T]) MustGet(id EntityID) *T {
	v, _ := a.Get(id)
	return v
}

func (a *Arena[T]) Alive(id EntityID) bool {
	return a.pool.Alive(id)
}

// Release frees the slot immediately. Prefer MarkForDestruction during a tick.
func (a *Arena[T]) Release(id EntityID) {
	if a.pool.Destroy(id) {
		a.slots[id.Index()] = nil
	}
}

func (a *Arena[T]) Len() int {
	return a.pool.Len()
}

// MarkForDestruction queues an object for end-of-tick release.
func (a *Arena[T]) MarkForDestruction(id EntityID) {
	a.destroyQueue = append(a.destroyQueue, id)
}

// Pending reports how many objects are queued for release.
func (a *Arena[T]) Pending() int {
	return len(a.destroyQueue)
}

// FlushDestroyQueue releases all queued objects. onRelease, if set, runs
// before each slot is freed. Called by CleanupSystem at the end of each tick.
func (a *Arena[T]) FlushDestroyQueue(onRelease func(EntityID, *T)) int {
	n := 0
	for _, id := range a.destroyQueue {
		v, ok := a.Get(id)
		if !ok {
			continue
		}
		if onRelease != nil {
			onRelease(id, v)
		}
		a.Release(id)
		n++
	}
	a.destroyQueue = a.destroyQueue[:0]
	return n
}
