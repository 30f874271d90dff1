package al

import "sort"

// Subset is the labeled-subset state: the set of example ids acquired so
// far. It only ever grows, and only the controller mutates it, between
// rounds. Not safe for concurrent use; the loop is single-threaded.
type Subset struct {
	ids map[int64]struct{}
}

// NewSubset returns an empty subset.
func NewSubset() *Subset {
	return &Subset{ids: make(map[int64]struct{})}
}

// Add unions the given ids into the subset and returns how many were new.
func (s *Subset) Add(ids ...int64) int {
	added := 0
	for _, id := range ids {
		if _, ok := s.ids[id]; !ok {
			s.ids[id] = struct{}{}
			added++
		}
	}
	return added
}

// Len returns the number of acquired ids.
func (s *Subset) Len() int {
	return len(s.ids)
}

// Contains reports whether id has been acquired.
func (s *Subset) Contains(id int64) bool {
	_, ok := s.ids[id]
	return ok
}

// IDs returns the acquired ids in ascending order. Sorted output keeps
// subset-derived dataset streams identical across reruns.
func (s *Subset) IDs() []int64 {
	ids := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
