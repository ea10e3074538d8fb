package inventory

// records is an id-indexed collection that remembers insertion order.
type records[T any] struct {
	id    func(T) string
	order []string
	byID  map[string]T
}

func newRecords[T any](id func(T) string) *records[T] {
	return &records[T]{id: id, byID: map[string]T{}}
}

func (r *records[T]) load(list []T) {
	r.order = r.order[:0]
	r.byID = make(map[string]T, len(list))
	for _, v := range list {
		r.put(v)
	}
}

func (r *records[T]) get(id string) (T, bool) {
	v, ok := r.byID[id]
	return v, ok
}

func (r *records[T]) len() int { return len(r.order) }

func (r *records[T]) list() []T {
	out := make([]T, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// staged returns the listing as it would look after puts and drops,
// without changing r.
func (r *records[T]) staged(puts []T, drops []string) []T {
	dropped := make(map[string]bool, len(drops))
	for _, id := range drops {
		dropped[id] = true
	}
	replaced := make(map[string]T, len(puts))
	var added []T
	for _, v := range puts {
		id := r.id(v)
		if _, ok := r.byID[id]; ok {
			replaced[id] = v
		} else {
			added = append(added, v)
		}
	}
	out := make([]T, 0, len(r.order)+len(added))
	for _, id := range r.order {
		if dropped[id] {
			continue
		}
		if v, ok := replaced[id]; ok {
			out = append(out, v)
			continue
		}
		out = append(out, r.byID[id])
	}
	for _, v := range added {
		if !dropped[r.id(v)] {
			out = append(out, v)
		}
	}
	return out
}

func (r *records[T]) put(v T) {
	id := r.id(v)
	if _, ok := r.byID[id]; !ok {
		r.order = append(r.order, id)
	}
	r.byID[id] = v
}

func (r *records[T]) remove(id string) {
	if _, ok := r.byID[id]; !ok {
		return
	}
	delete(r.byID, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}
