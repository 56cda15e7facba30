package repository

import "container/list"

// fifo is an id-keyed map that forgets its oldest entry once it holds more
// than limit values. A zero limit keeps everything. Not safe for concurrent use.
type fifo[V any] struct {
	byID  map[string]*list.Element
	order *list.List // oldest at front
	limit int
}

type fifoEntry[V any] struct {
	id    string
	value V
}

func newFIFO[V any](limit int) *fifo[V] {
	return &fifo[V]{
		byID:  make(map[string]*list.Element),
		order: list.New(),
		limit: limit,
	}
}

// put stores v under id. Replacing an id counts as the newest write.
func (f *fifo[V]) put(id string, v V) {
	if el, ok := f.byID[id]; ok {
		el.Value = fifoEntry[V]{id: id, value: v}
		f.order.MoveToBack(el)
	} else {
		f.byID[id] = f.order.PushBack(fifoEntry[V]{id: id, value: v})
	}
	for f.limit > 0 && f.order.Len() > f.limit {
		oldest := f.order.Front()
		f.order.Remove(oldest)
		delete(f.byID, oldest.Value.(fifoEntry[V]).id)
	}
}

func (f *fifo[V]) get(id string) (V, bool) {
	el, ok := f.byID[id]
	if !ok {
		var zero V
		return zero, false
	}
	return el.Value.(fifoEntry[V]).value, true
}

func (f *fifo[V]) len() int { return f.order.Len() }
