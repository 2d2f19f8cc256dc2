package world

import "github.com/rtsgo/threatgrid/internal/core/ecs"

// chain is a view over one cell's occupant list. Links live in Object.next so
// membership costs no allocation; the view borrows the arena to follow them.
type chain struct {
	cell    *Cell
	objects *ecs.Arena[Object]
}

func (s *State) chainOf(c CellID) chain {
	return chain{cell: &s.cells[c], objects: s.objects}
}

func (ch chain) pushFront(o *Object) {
	o.next = ch.cell.head
	ch.cell.head = o.ID
}

func (ch chain) pushBack(o *Object) {
	o.next = ecs.None
	if ch.cell.head == ecs.None {
		ch.cell.head = o.ID
		return
	}
	id := ch.cell.head
	for {
		cur, ok := ch.objects.Get(id)
		if !ok || cur.next == ecs.None {
			if ok {
				cur.next = o.ID
			}
			return
		}
		id = cur.next
	}
}

// remove unlinks id and reports whether it was present.
func (ch chain) remove(id ecs.EntityID) bool {
	if ch.cell.head == id {
		if o, ok := ch.objects.Get(id); ok {
			ch.cell.head = o.next
			o.next = ecs.None
		} else {
			ch.cell.head = ecs.None
		}
		return true
	}
	prev, ok := ch.objects.Get(ch.cell.head)
	for ok && prev.next != ecs.None {
		if prev.next == id {
			o, live := ch.objects.Get(id)
			if live {
				prev.next = o.next
				o.next = ecs.None
			} else {
				prev.next = ecs.None
			}
			return true
		}
		prev, ok = ch.objects.Get(prev.next)
	}
	return false
}

// each visits members head to tail until fn returns false. fn must not
// mutate the chain.
func (ch chain) each(fn func(*Object) bool) {
	id := ch.cell.head
	for id != ecs.None {
		o, ok := ch.objects.Get(id)
		if !ok {
			return
		}
		if !fn(o) {
			return
		}
		id = o.next
	}
}

func (ch chain) contains(id ecs.EntityID) bool {
	found := false
	ch.each(func(o *Object) bool {
		found = o.ID == id
		return !found
	})
	return found
}

func (ch chain) hasBuilding() (ecs.EntityID, bool) {
	var b ecs.EntityID
	ch.each(func(o *Object) bool {
		if o.IsBuilding() {
			b = o.ID
			return false
		}
		return true
	})
	return b, b != ecs.None
}
