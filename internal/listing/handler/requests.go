package handler

import (
	"marketdesk/internal/allocation"
	"marketdesk/internal/listing/models"
	dErrors "marketdesk/pkg/domain-errors"
)

// allocationRequest carries an ad-hoc percentage breakdown: the category name
// plus slot values, where null means the field is still empty.
type allocationRequest struct {
	Category string              `json:"category"`
	Values   map[string]*float64 `json:"values"`

	category allocation.Category
}

// resolve maps the category name onto the known breakdown categories.
func (r *allocationRequest) resolve() error {
	switch r.Category {
	case "traffic_sources":
		r.category = allocation.TrafficSources
	case "revenue_sources":
		r.category = allocation.RevenueSources
	default:
		return dErrors.New(dErrors.CodeInvalidInput, "unknown allocation category: "+r.Category)
	}
	return nil
}

type allocationDistributeResponse struct {
	Values map[string]float64 `json:"values"`
	Result allocation.Result  `json:"result"`
}

type listResponse struct {
	Listings []*models.Listing `json:"listings"`
	Count    int               `json:"count"`
}
