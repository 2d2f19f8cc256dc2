package ecs

// Roster is an insertion-ordered set of ids. Iteration order is stable between
// mutations, which is what the map-wide threat scan relies on.
type Roster struct {
	ids []EntityID
	pos map[EntityID]int
}

func NewRoster() *Roster {
	return &Roster{
		ids: make([]EntityID, 0, 256),
		pos: make(map[EntityID]int, 256),
	}
}

// Add appends id. Adding an id twice is a no-op.
func (r *Roster) Add(id EntityID) {
	if _, ok := r.pos[id]; ok {
		return
	}
	r.pos[id] = len(r.ids)
	r.ids = append(r.ids, id)
}

// Remove deletes id and keeps the relative order of the rest.
func (r *Roster) Remove(id EntityID) bool {
	i, ok := r.pos[id]
	if !ok {
		return false
	}
	copy(r.ids[i:], r.ids[i+1:])
	r.ids = r.ids[:len(r.ids)-1]
	delete(r.pos, id)
	for j := i; j < len(r.ids); j++ {
		r.pos[r.ids[j]] = j
	}
	return true
}

func (r *Roster) Has(id EntityID) bool {
	_, ok := r.pos[id]
	return ok
}

func (r *Roster) Len() int { return len(r.ids) }

func (r *Roster) At(i int) EntityID { return r.ids[i] }

// Each calls fn in insertion order until fn returns false.
func (r *Roster) Each(fn func(EntityID) bool) {
	for _, id := range r.ids {
		if !fn(id) {
			return
		}
	}
}

// Clear empties the roster.
func (r *Roster) Clear() {
	r.ids = r.ids[:0]
	clear(r.pos)
}
