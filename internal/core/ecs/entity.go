package ecs

// EntityID is a generational handle: arena slot in the low 32 bits,
// generation in the high 32. A slot's generation moves on every release,
// so ids kept by cells or rosters after their object is gone stop resolving.
//
// Generations start at 1. The zero id is therefore never live and serves as
// the "no object" value.
type EntityID uint64

// None is the "no object" sentinel.
const None EntityID = 0

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == None }

const noFree = ^uint32(0)

type poolSlot struct {
	gen  uint32
	live bool
	next uint32 // next free slot while !live
}

// EntityPool hands out slot indices. Released slots form an intrusive free
// list threaded through the slot table; the most recently released slot is
// reused first.
type EntityPool struct {
	slots []poolSlot
	free  uint32
	live  int
}

func NewEntityPool() *EntityPool {
	return &EntityPool{slots: make([]poolSlot, 0, 1024), free: noFree}
}

func (p *EntityPool) Create() EntityID {
	var idx uint32
	if p.free != noFree {
		idx = p.free
		p.free = p.slots[idx].next
	} else {
		idx = uint32(len(p.slots))
		p.slots = append(p.slots, poolSlot{gen: 1})
	}
	s := &p.slots[idx]
	s.live = true
	s.next = noFree
	p.live++
	return NewEntityID(idx, s.gen)
}

func (p *EntityPool) Alive(id EntityID) bool {
	idx := id.Index()
	if id.IsZero() || int(idx) >= len(p.slots) {
		return false
	}
	s := p.slots[idx]
	return s.live && s.gen == id.Generation()
}

// Destroy releases the slot. Stale or unknown ids are ignored.
func (p *EntityPool) Destroy(id EntityID) bool {
	if !p.Alive(id) {
		return false
	}
	idx := id.Index()
	s := &p.slots[idx]
	s.live = false
	if s.gen++; s.gen == 0 {
		s.gen = 1
	}
	s.next = p.free
	p.free = idx
	p.live--
	return true
}

// Len returns the number of live slots.
func (p *EntityPool) Len() int { return p.live }

// Cap returns how many slots have ever been allocated.
func (p *EntityPool) Cap() int { return len(p.slots) }
