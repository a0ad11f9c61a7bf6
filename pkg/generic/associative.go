package generic

// AssociativeArray is a keyed collection that keeps its values in a dense
// slice. Iteration via Values is cheap and follows insertion order; Set on an
// existing key overwrites the value in place without moving it.
type AssociativeArray[K comparable, V any] struct {
	index  map[K]int
	keys   []K
	values []V
}

// NewAssociativeArray creates an empty AssociativeArray.
func NewAssociativeArray[K comparable, V any]() *AssociativeArray[K, V] {
	return &AssociativeArray[K, V]{
		index: make(map[K]int),
	}
}

// Len returns the number of stored entries.
func (a *AssociativeArray[K, V]) Len() int {
	return len(a.values)
}

// Contains reports whether key is present.
func (a *AssociativeArray[K, V]) Contains(key K) bool {
	_, ok := a.index[key]
	return ok
}

// Get returns the value stored under key.
func (a *AssociativeArray[K, V]) Get(key K) (V, bool) {
	i, ok := a.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	return a.values[i], true
}

// Set inserts or overwrites the value stored under key.
func (a *AssociativeArray[K, V]) Set(key K, value V) {
	if i, ok := a.index[key]; ok {
		a.values[i] = value
		return
	}
	a.index[key] = len(a.values)
	a.keys = append(a.keys, key)
	a.values = append(a.values, value)
}

// Remove deletes key and reports whether it was present. The relative order
// of the remaining values is preserved.
func (a *AssociativeArray[K, V]) Remove(key K) bool {
	i, ok := a.index[key]
	if !ok {
		return false
	}
	delete(a.index, key)

	copy(a.keys[i:], a.keys[i+1:])
	copy(a.values[i:], a.values[i+1:])

	last := len(a.values) - 1
	var (
		zeroK K
		zeroV V
	)
	a.keys[last] = zeroK
	a.values[last] = zeroV
	a.keys = a.keys[:last]
	a.values = a.values[:last]

	for j := i; j < last; j++ {
		a.index[a.keys[j]] = j
	}
	return true
}

// RemoveAll clears the array.
func (a *AssociativeArray[K, V]) RemoveAll() {
	clear(a.index)
	clear(a.keys)
	clear(a.values)
	a.keys = a.keys[:0]
	a.values = a.values[:0]
}

// Values returns the backing slice of values. Callers must not modify it and
// must not hold it across mutations of the array.
func (a *AssociativeArray[K, V]) Values() []V {
	return a.values
}

// Keys returns the backing slice of keys, parallel to Values.
func (a *AssociativeArray[K, V]) Keys() []K {
	return a.keys
}
