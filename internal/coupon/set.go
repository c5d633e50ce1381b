package coupon

// mapCodeSet implements CodeSet using a map for O(1) lookups.
type mapCodeSet struct {
	codes map[string]struct{}
}

// NewMapCodeSet creates a new map-based code set.
func NewMapCodeSet(capacity int) CodeSet {
	return &mapCodeSet{
		codes: make(map[string]struct{}, capacity),
	}
}

// NewCodeSetFrom builds a code set from literal codes.
func NewCodeSetFrom(codes ...string) CodeSet {
	set := NewMapCodeSet(len(codes)).(*mapCodeSet)
	for _, code := range codes {
		set.Add(code)
	}
	return set
}

// Contains checks if a coupon code exists in the set.
func (s *mapCodeSet) Contains(code string) bool {
	_, exists := s.codes[code]
	return exists
}

// Size returns the number of codes in the set.
func (s *mapCodeSet) Size() int {
	return len(s.codes)
}

// Codes returns all codes in the set.
func (s *mapCodeSet) Codes() []string {
	out := make([]string, 0, len(s.codes))
	for code := range s.codes {
		out = append(out, code)
	}
	return out
}

// Add adds a coupon code to the set.
func (s *mapCodeSet) Add(code string) {
	s.codes[code] = struct{}{}
}
