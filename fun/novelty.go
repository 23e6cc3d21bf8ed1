package fun

import "hash/fnv"

// MaxRating is the top of the novelty rating range.
const MaxRating = 100

// Rater derives a stable 0..Max rating from a user identifier.
// Owners always get Max.
type Rater struct {
	Owners map[string]struct{}
	Max    int
}

// NewRater builds a Rater over MaxRating with the given owner ids.
func NewRater(owners ...string) *Rater {
	r := &Rater{Owners: make(map[string]struct{}, len(owners)), Max: MaxRating}
	for _, id := range owners {
		r.Owners[id] = struct{}{}
	}
	return r
}

// Rate is deterministic across runs and processes; it does not touch any
// shared PRNG.
func (r *Rater) Rate(id string) int {
	if _, ok := r.Owners[id]; ok {
		return r.Max
	}

	h := fnv.New64a()
	h.Write([]byte(id))
	return int(h.Sum64() % uint64(r.Max+1))
}

// IsOwner reports whether id is configured as a bot owner.
func (r *Rater) IsOwner(id string) bool {
	_, ok := r.Owners[id]
	return ok
}
