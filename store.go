package bv

import "github.com/benbjohnson/immutable"

// uint64Comparer orders VarStore keys, the variable ids assigned by an
// external SLS driver.
type uint64Comparer struct{}

func (uint64Comparer) Compare(a, b interface{}) int {
	x, y := a.(uint64), b.(uint64)
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

// VarStore is a persistent map from variable id to *Valuation. Set and
// Delete return a new VarStore sharing structure with the receiver,
// so a driver can branch search state (e.g. to back out of a failed
// repair) without deep-copying every variable's domain.
type VarStore struct {
	m *immutable.SortedMap
}

// NewVarStore returns an empty VarStore.
func NewVarStore() *VarStore {
	return &VarStore{m: immutable.NewSortedMap(uint64Comparer{})}
}

// Get returns the Valuation for id, if present.
func (s *VarStore) Get(id uint64) (*Valuation, bool) {
	v, ok := s.m.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*Valuation), true
}

// Set returns a new VarStore with id mapped to val.
func (s *VarStore) Set(id uint64, val *Valuation) *VarStore {
	return &VarStore{m: s.m.Set(id, val)}
}

// Delete returns a new VarStore with id removed.
func (s *VarStore) Delete(id uint64) *VarStore {
	return &VarStore{m: s.m.Delete(id)}
}

// Len returns the number of variables tracked.
func (s *VarStore) Len() int { return s.m.Len() }

// Iterator returns an iterator over (id, *Valuation) pairs in ascending
// id order.
func (s *VarStore) Iterator() *immutable.SortedMapIterator {
	return s.m.Iterator()
}
