// Package allocation implements percentage-breakdown bookkeeping for listing
// forms: a fixed set of named slots whose values must total 100%, with a
// one-pass auto-distribution that spreads the remaining delta across filled
// slots.
package allocation

import (
	"math"
	"strconv"

	dErrors "marketdesk/pkg/domain-errors"
)

// Tolerance is the allowed deviation from 100 (in percentage points) before a
// complete set is flagged invalid. Deviations within tolerance are treated as
// exactly 100.
const Tolerance = 0.01

// Category describes one breakdown use-site: a label for error messages and
// the fixed, display-ordered slot names. The slot set never grows or shrinks
// at runtime.
type Category struct {
	Label string
	Slots []string
}

// The two breakdown categories used by the digital-asset form.
var (
	TrafficSources = Category{
		Label: "Traffic source percentages",
		Slots: []string{"organic", "paid_ads", "social_media", "referral", "email"},
	}
	RevenueSources = Category{
		Label: "Revenue sources",
		Slots: []string{"advertising", "subscriptions", "product_sales", "affiliate", "services"},
	}
)

// Result is the outcome of a validity check.
//
// Incompleteness is not an error: partially filled forms are not flagged
// until every slot has a value, so Valid stays true while Complete is false.
type Result struct {
	Complete bool   `json:"complete"`
	Valid    bool   `json:"valid"`
	Message  string `json:"message,omitempty"`
}

// Set is an allocation set: the category's slots mapped to values in [0,100],
// or unset where the user has not entered anything yet.
//
// A Set is owned by a single form instance and is not safe for concurrent
// use. Every mutation synchronously recomputes validity; the latest result is
// available via LastResult without re-running the check.
type Set struct {
	category Category
	values   map[string]*float64
	last     Result
}

// New creates a Set with every slot unset.
func New(category Category) *Set {
	s := &Set{
		category: category,
		values:   make(map[string]*float64, len(category.Slots)),
	}
	s.revalidate()
	return s
}

// NewWithDefault creates a Set with every slot populated at def (clamped).
// Forms that render zeroed fields on mount use def = 0.
func NewWithDefault(category Category, def float64) *Set {
	s := &Set{
		category: category,
		values:   make(map[string]*float64, len(category.Slots)),
	}
	for _, name := range category.Slots {
		v := clamp(coerce(def))
		s.values[name] = &v
	}
	s.revalidate()
	return s
}

// Category returns the category this set was created for.
func (s *Set) Category() Category {
	return s.category
}

// Put writes a slot value, clamping to [0,100] and coercing NaN to 0, then
// recomputes validity. Unknown slot names are rejected; the slot set is fixed
// per category.
func (s *Set) Put(name string, value float64) error {
	if !s.hasSlot(name) {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown slot: "+name)
	}
	v := clamp(coerce(value))
	s.values[name] = &v
	s.revalidate()
	return nil
}

// Clear unsets a slot, returning it to the "user has not entered anything"
// state, then recomputes validity.
func (s *Set) Clear(name string) error {
	if !s.hasSlot(name) {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown slot: "+name)
	}
	delete(s.values, name)
	s.revalidate()
	return nil
}

// Value returns a slot's value and whether it is set.
func (s *Set) Value(name string) (float64, bool) {
	if v, ok := s.values[name]; ok && v != nil {
		return *v, true
	}
	return 0, false
}

// Values returns the current slot values in display order, with unset slots
// reported as 0. Callers that need to distinguish unset from zero use Value.
func (s *Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s.category.Slots))
	for _, name := range s.category.Slots {
		v, _ := s.Value(name)
		out[name] = v
	}
	return out
}

// Total sums all slot values, treating unset slots as 0. Totals are only
// meaningful for validity once the set is complete.
func (s *Set) Total() float64 {
	total := 0.0
	for _, name := range s.category.Slots {
		v, _ := s.Value(name)
		total += v
	}
	return total
}

// CheckValidity reports whether the set is complete and, if so, whether the
// total is within tolerance of 100. Pure; no side effects.
func (s *Set) CheckValidity() Result {
	for _, name := range s.category.Slots {
		if _, ok := s.Value(name); !ok {
			return Result{Complete: false, Valid: true}
		}
	}
	total := s.Total()
	if math.Abs(total-100) <= Tolerance {
		return Result{Complete: true, Valid: true}
	}
	return Result{
		Complete: true,
		Valid:    false,
		Message:  s.category.Label + " should add up to 100%. Current total: " + formatTotal(total) + "%",
	}
}

// LastResult returns the result stored by the most recent mutation.
func (s *Set) LastResult() Result {
	return s.last
}

// AutoDistribute redistributes the deviation from 100 across the set,
// mutating it in place. Unset slots are coerced to 0 for this operation.
//
//  1. Already within tolerance of 100: no-op, values untouched.
//  2. No slot is strictly positive: every slot gets an equal share of 100.
//  3. Otherwise each filled (>0) slot takes an equal share of the remaining
//     delta, clamped to [0,100]; unfilled slots keep their current value.
//
// All written values are rounded to one decimal place. The adjustment is
// applied uniformly in a single pass: when clamping fires, the resulting
// total can legitimately land short of (or past) 100. The forms surface that
// through the next validity check rather than running a corrective pass.
func (s *Set) AutoDistribute() {
	total := s.Total()
	if math.Abs(total-100) <= Tolerance {
		return
	}

	var filled []string
	for _, name := range s.category.Slots {
		if v, _ := s.Value(name); v > 0 {
			filled = append(filled, name)
		}
	}

	if len(filled) == 0 {
		share := round1(100 / float64(len(s.category.Slots)))
		for _, name := range s.category.Slots {
			v := share
			s.values[name] = &v
		}
		s.revalidate()
		return
	}

	adjustment := (100 - total) / float64(len(filled))
	for _, name := range filled {
		current, _ := s.Value(name)
		v := round1(clamp(current + adjustment))
		s.values[name] = &v
	}
	// Materialize unfilled slots at 0 so the caller can write every field back.
	for _, name := range s.category.Slots {
		if _, ok := s.Value(name); !ok {
			zero := 0.0
			s.values[name] = &zero
		}
	}
	s.revalidate()
}

func (s *Set) revalidate() {
	s.last = s.CheckValidity()
}

func (s *Set) hasSlot(name string) bool {
	for _, slot := range s.category.Slots {
		if slot == name {
			return true
		}
	}
	return false
}

func clamp(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}

// coerce maps non-numeric input to 0 rather than rejecting it; the forms
// clamp-and-continue instead of surfacing parse faults.
func coerce(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// formatTotal renders the raw (unrounded) sum the way the form interpolates
// it into the error message.
func formatTotal(total float64) string {
	return strconv.FormatFloat(total, 'f', -1, 64)
}
