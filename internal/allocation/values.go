package allocation

// FromValues builds a Set from externally supplied slot values, e.g. a JSON
// payload or a stored listing record. Unknown names are dropped (the slot set
// is fixed by the category), nil entries stay unset, and numeric entries are
// clamped and coerced exactly as Put does.
func FromValues(category Category, values map[string]*float64) *Set {
	s := New(category)
	for _, name := range category.Slots {
		if v, ok := values[name]; ok && v != nil {
			val := clamp(coerce(*v))
			s.values[name] = &val
		}
	}
	s.revalidate()
	return s
}

// Snapshot exports every slot in display order, preserving the distinction
// between unset (nil) and zero. The returned map is a copy.
func (s *Set) Snapshot() map[string]*float64 {
	out := make(map[string]*float64, len(s.category.Slots))
	for _, name := range s.category.Slots {
		if v, ok := s.Value(name); ok {
			val := v
			out[name] = &val
		} else {
			out[name] = nil
		}
	}
	return out
}
