package allocation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(t *testing.T, s *Set, values map[string]float64) {
	t.Helper()
	for name, v := range values {
		require.NoError(t, s.Put(name, v))
	}
}

func TestCheckValidity_CompletenessGating(t *testing.T) {
	t.Run("incomplete set is not flagged regardless of total", func(t *testing.T) {
		s := New(TrafficSources)
		fill(t, s, map[string]float64{"organic": 90, "paid_ads": 90})

		res := s.CheckValidity()
		assert.False(t, res.Complete)
		assert.True(t, res.Valid)
		assert.Empty(t, res.Message)
	})

	t.Run("clearing a slot returns the set to incomplete", func(t *testing.T) {
		s := NewWithDefault(TrafficSources, 20)
		require.NoError(t, s.Clear("email"))

		res := s.CheckValidity()
		assert.False(t, res.Complete)
		assert.True(t, res.Valid)
	})
}

func TestCheckValidity_ToleranceBoundary(t *testing.T) {
	t.Run("deviation within tolerance is treated as 100", func(t *testing.T) {
		s := New(TrafficSources)
		fill(t, s, map[string]float64{
			"organic": 20.009, "paid_ads": 20, "social_media": 20, "referral": 20, "email": 20,
		})
		require.InDelta(t, 100.009, s.Total(), 1e-9)

		res := s.CheckValidity()
		assert.True(t, res.Complete)
		assert.True(t, res.Valid)
	})

	t.Run("deviation past tolerance is flagged with the category label", func(t *testing.T) {
		s := New(RevenueSources)
		fill(t, s, map[string]float64{
			"advertising": 20.02, "subscriptions": 20, "product_sales": 20, "affiliate": 20, "services": 20,
		})

		res := s.CheckValidity()
		assert.True(t, res.Complete)
		assert.False(t, res.Valid)
		assert.Contains(t, res.Message, "Revenue sources should add up to 100%")
		assert.Contains(t, res.Message, "Current total:")
	})
}

func TestCheckValidity_Totality(t *testing.T) {
	// Any numeric input yields a well-formed result; out-of-range and NaN
	// input is clamped or coerced on write rather than rejected.
	s := New(TrafficSources)
	require.NoError(t, s.Put("organic", -50))
	require.NoError(t, s.Put("paid_ads", 250))
	require.NoError(t, s.Put("social_media", math.NaN()))
	require.NoError(t, s.Put("referral", 0))
	require.NoError(t, s.Put("email", 0))

	organic, _ := s.Value("organic")
	paid, _ := s.Value("paid_ads")
	social, _ := s.Value("social_media")
	assert.Equal(t, 0.0, organic, "negative input clamps to 0")
	assert.Equal(t, 100.0, paid, "oversized input clamps to 100")
	assert.Equal(t, 0.0, social, "NaN coerces to 0")

	res := s.CheckValidity()
	assert.True(t, res.Complete)
	assert.True(t, res.Valid, "clamped values happen to total 100 here")
}

func TestAutoDistribute_NoOpWithinTolerance(t *testing.T) {
	s := New(TrafficSources)
	// Deliberately uneven values that already total 100.
	fill(t, s, map[string]float64{
		"organic": 33.3, "paid_ads": 33.3, "social_media": 33.4, "referral": 0, "email": 0,
	})
	before := s.Values()

	s.AutoDistribute()

	assert.Equal(t, before, s.Values(), "values within tolerance must be untouched")
}

func TestAutoDistribute_EmptySetEvenSplit(t *testing.T) {
	t.Run("all slots at zero", func(t *testing.T) {
		s := NewWithDefault(TrafficSources, 0)

		s.AutoDistribute()

		for name, v := range s.Values() {
			assert.Equal(t, 20.0, v, "slot %s", name)
		}
		assert.Equal(t, 100.0, s.Total())
	})

	t.Run("all slots unset", func(t *testing.T) {
		s := New(RevenueSources)

		s.AutoDistribute()

		for name, v := range s.Values() {
			assert.Equal(t, 20.0, v, "slot %s", name)
		}
		assert.Equal(t, 100.0, s.Total())
	})
}

func TestAutoDistribute_ProportionalAdjustment(t *testing.T) {
	// {A:10, B:20, rest 0}: remaining = 70 over 2 filled slots, +35 each.
	s := NewWithDefault(TrafficSources, 0)
	fill(t, s, map[string]float64{"organic": 10, "paid_ads": 20})

	s.AutoDistribute()

	values := s.Values()
	assert.Equal(t, 45.0, values["organic"])
	assert.Equal(t, 55.0, values["paid_ads"])
	assert.Equal(t, 0.0, values["social_media"])
	assert.Equal(t, 0.0, values["referral"])
	assert.Equal(t, 0.0, values["email"])
	assert.Equal(t, 100.0, s.Total())
}

func TestAutoDistribute_NegativeAdjustment(t *testing.T) {
	// Total 105 over 2 filled slots: -2.5 each, no clamping triggered.
	s := NewWithDefault(TrafficSources, 0)
	fill(t, s, map[string]float64{"organic": 95, "paid_ads": 10})

	s.AutoDistribute()

	values := s.Values()
	assert.Equal(t, 92.5, values["organic"])
	assert.Equal(t, 7.5, values["paid_ads"])
	assert.Equal(t, 100.0, s.Total())
}

func TestAutoDistribute_ClampLeavesTotalShort(t *testing.T) {
	// Total 130 over 2 filled slots: adjustment -15 drives the small slot
	// below 0 pre-clamp. The single uniform pass does not redistribute the
	// clamped remainder, so the total legitimately ends up off 100.
	s := NewWithDefault(TrafficSources, 0)
	fill(t, s, map[string]float64{"organic": 120, "paid_ads": 10})
	// organic clamps to 100 on write, so re-set the scenario via two slots
	// that can exceed 100 together.
	fill(t, s, map[string]float64{"organic": 100, "paid_ads": 30})
	require.Equal(t, 130.0, s.Total())

	s.AutoDistribute()

	values := s.Values()
	assert.Equal(t, 85.0, values["organic"], "100 + (-15)")
	assert.Equal(t, 15.0, values["paid_ads"], "30 + (-15)")
	assert.Equal(t, 100.0, s.Total(), "no clamp fired: -15 keeps both in range")

	// Now an actual clamp case: 5 + (-15) would go to -10 pre-clamp.
	s2 := NewWithDefault(TrafficSources, 0)
	fill(t, s2, map[string]float64{"organic": 100, "paid_ads": 5, "social_media": 25})
	require.Equal(t, 130.0, s2.Total())

	s2.AutoDistribute()

	v2 := s2.Values()
	assert.Equal(t, 90.0, v2["organic"], "100 - 10")
	assert.Equal(t, 0.0, v2["paid_ads"], "5 - 10 clamps at 0")
	assert.Equal(t, 15.0, v2["social_media"], "25 - 10")
	assert.Equal(t, 105.0, s2.Total(), "clamped remainder is not re-spread")

	res := s2.CheckValidity()
	assert.False(t, res.Valid, "the deviation surfaces on the next check")
}

func TestAutoDistribute_Rounding(t *testing.T) {
	// Total 30 over 3 filled slots: remaining 70 splits into thirds.
	s := NewWithDefault(TrafficSources, 0)
	fill(t, s, map[string]float64{"organic": 10, "paid_ads": 10, "social_media": 10})

	s.AutoDistribute()

	for name, v := range s.Values() {
		rounded := math.Round(v*10) / 10
		assert.Equal(t, rounded, v, "slot %s must carry at most 1 decimal place", name)
	}

	// Each filled slot gets 10 + 23.333..., rounded to 33.3.
	values := s.Values()
	assert.Equal(t, 33.3, values["organic"])
	assert.Equal(t, 33.3, values["paid_ads"])
	assert.Equal(t, 33.3, values["social_media"])
}

func TestRevalidationOnEveryMutation(t *testing.T) {
	s := New(TrafficSources)
	assert.False(t, s.LastResult().Complete)

	fill(t, s, map[string]float64{
		"organic": 50, "paid_ads": 30, "social_media": 10, "referral": 5, "email": 4,
	})
	res := s.LastResult()
	assert.True(t, res.Complete)
	assert.False(t, res.Valid, "total 99 is out of tolerance")

	require.NoError(t, s.Put("email", 5))
	res = s.LastResult()
	assert.True(t, res.Valid, "stored result tracks the latest write")

	s.AutoDistribute()
	assert.True(t, s.LastResult().Valid)
}

func TestPut_UnknownSlot(t *testing.T) {
	s := New(TrafficSources)
	err := s.Put("direct_mail", 10)
	require.Error(t, err)
	err = s.Clear("direct_mail")
	require.Error(t, err)
}
