package models

import (
	"fmt"
	"time"

	"marketdesk/internal/allocation"
	dErrors "marketdesk/pkg/domain-errors"
)

// BusinessDetails carries the sub-form for established businesses. Franchise
// listings reuse the same block; the franchise-specific fields live in the
// free-form description.
type BusinessDetails struct {
	EstablishedYear int     `json:"established_year"`
	Employees       int     `json:"employees"`
	AnnualRevenue   float64 `json:"annual_revenue"`
	AnnualProfit    float64 `json:"annual_profit"`
	ReasonForSale   string  `json:"reason_for_sale,omitempty"`
}

const earliestEstablishedYear = 1800

func (d *BusinessDetails) clone() *BusinessDetails {
	if d == nil {
		return nil
	}
	out := *d
	return &out
}

func (d *BusinessDetails) Validate(l *Listing) error {
	currentYear := time.Now().Year()
	if d.EstablishedYear < earliestEstablishedYear || d.EstablishedYear > currentYear {
		return dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("established year must be between %d and %d", earliestEstablishedYear, currentYear))
	}
	if d.Employees < 1 {
		return dErrors.New(dErrors.CodeValidation, "employee count must be at least 1")
	}
	if d.AnnualRevenue < 0 {
		return dErrors.New(dErrors.CodeValidation, "annual revenue cannot be negative")
	}
	if d.AnnualProfit > d.AnnualRevenue {
		return dErrors.New(dErrors.CodeValidation, "annual profit cannot exceed annual revenue")
	}
	if len(d.ReasonForSale) > 1000 {
		return dErrors.New(dErrors.CodeValidation, "reason for sale must be 1000 characters or less")
	}
	return nil
}

// StartupDetails carries the sub-form for startups raising through a sale of
// equity.
type StartupDetails struct {
	FoundersCount     int     `json:"founders_count"`
	TeamSize          int     `json:"team_size"`
	MonthlyRevenue    float64 `json:"monthly_revenue"`
	PreMoneyValuation float64 `json:"pre_money_valuation"`
	EquityOffered     float64 `json:"equity_offered"`
}

func (d *StartupDetails) clone() *StartupDetails {
	if d == nil {
		return nil
	}
	out := *d
	return &out
}

func (d *StartupDetails) Validate(l *Listing) error {
	if d.FoundersCount < 1 {
		return dErrors.New(dErrors.CodeValidation, "founders count must be at least 1")
	}
	if d.TeamSize < d.FoundersCount {
		return dErrors.New(dErrors.CodeValidation, "team size cannot be smaller than founders count")
	}
	if d.MonthlyRevenue < 0 {
		return dErrors.New(dErrors.CodeValidation, "monthly revenue cannot be negative")
	}
	if d.PreMoneyValuation <= 0 {
		return dErrors.New(dErrors.CodeValidation, "pre-money valuation must be positive")
	}
	if d.EquityOffered <= 0 || d.EquityOffered > 100 {
		return dErrors.New(dErrors.CodeValidation, "equity offered must be in (0, 100]")
	}
	// The asking price buys EquityOffered percent; asking more than the whole
	// company is worth pre-money is inconsistent.
	if l != nil && l.AskingPrice > d.PreMoneyValuation {
		return dErrors.New(dErrors.CodeValidation, "asking price cannot exceed the pre-money valuation")
	}
	return nil
}

// DigitalAssetKind enumerates what kind of digital property is for sale.
type DigitalAssetKind string

const (
	DigitalAssetWebsite   DigitalAssetKind = "website"
	DigitalAssetMobileApp DigitalAssetKind = "mobile_app"
	DigitalAssetSaaS      DigitalAssetKind = "saas"
	DigitalAssetDomain    DigitalAssetKind = "domain"
	DigitalAssetChannel   DigitalAssetKind = "channel"
)

var validDigitalAssetKinds = map[DigitalAssetKind]bool{
	DigitalAssetWebsite:   true,
	DigitalAssetMobileApp: true,
	DigitalAssetSaaS:      true,
	DigitalAssetDomain:    true,
	DigitalAssetChannel:   true,
}

func (k DigitalAssetKind) IsValid() bool {
	return validDigitalAssetKinds[k]
}

// DigitalAssetDetails carries the sub-form for websites, apps, and other
// digital properties. Traffic and revenue breakdowns are percentage sets that
// must each total 100% before submission; nil entries mean the seller has not
// filled that slot yet.
type DigitalAssetDetails struct {
	Kind            DigitalAssetKind    `json:"kind"`
	MonthlyVisitors int                 `json:"monthly_visitors"`
	MonthlyRevenue  float64             `json:"monthly_revenue"`
	TrafficSources  map[string]*float64 `json:"traffic_sources"`
	RevenueSources  map[string]*float64 `json:"revenue_sources"`
}

func (d *DigitalAssetDetails) clone() *DigitalAssetDetails {
	if d == nil {
		return nil
	}
	out := *d
	out.TrafficSources = cloneBreakdown(d.TrafficSources)
	out.RevenueSources = cloneBreakdown(d.RevenueSources)
	return &out
}

func cloneBreakdown(m map[string]*float64) map[string]*float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]*float64, len(m))
	for k, v := range m {
		if v == nil {
			out[k] = nil
			continue
		}
		val := *v
		out[k] = &val
	}
	return out
}

// TrafficSet materializes the traffic breakdown as an allocation set.
func (d *DigitalAssetDetails) TrafficSet() *allocation.Set {
	return allocation.FromValues(allocation.TrafficSources, d.TrafficSources)
}

// RevenueSet materializes the revenue breakdown as an allocation set.
func (d *DigitalAssetDetails) RevenueSet() *allocation.Set {
	return allocation.FromValues(allocation.RevenueSources, d.RevenueSources)
}

func (d *DigitalAssetDetails) Validate(l *Listing) error {
	if !d.Kind.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid digital asset kind")
	}
	if d.MonthlyVisitors < 0 {
		return dErrors.New(dErrors.CodeValidation, "monthly visitors cannot be negative")
	}
	if d.MonthlyRevenue < 0 {
		return dErrors.New(dErrors.CodeValidation, "monthly revenue cannot be negative")
	}
	for _, set := range []*allocation.Set{d.TrafficSet(), d.RevenueSet()} {
		res := set.CheckValidity()
		if !res.Complete {
			return dErrors.New(dErrors.CodeValidation, set.Category().Label+" must be filled in completely")
		}
		if !res.Valid {
			return dErrors.New(dErrors.CodeValidation, res.Message)
		}
	}
	return nil
}
