// SPDX-License-Identifier: MIT

package model

// ServiceInfo is a priced catalog entry for a streaming service.
type ServiceInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MonthlyCost Price  `json:"monthly_cost"`
}

// OptimizationRequest names the titles a subscription set must and should
// cover. Both lists are unordered and deduplicated on receipt; an ID present
// in both counts as must-have only.
type OptimizationRequest struct {
	MustHave   []TitleID `json:"must_have"`
	NiceToHave []TitleID `json:"nice_to_have"`
}

// ServiceConfiguration is one candidate subscription set.
type ServiceConfiguration struct {
	Services           []ServiceInfo `json:"services"`
	TotalCost          Price         `json:"total_cost"`
	MustHaveCoverage   int           `json:"must_have_coverage"`
	NiceToHaveCoverage int           `json:"nice_to_have_coverage"`
}

// OptimizationResponse carries the configurations found, cheapest first,
// plus the requested titles no subscription service offers. Slices are
// always present in JSON, empty rather than null.
type OptimizationResponse struct {
	Configurations        []ServiceConfiguration `json:"configurations"`
	UnavailableMustHave   []TitleID              `json:"unavailable_must_have"`
	UnavailableNiceToHave []TitleID              `json:"unavailable_nice_to_have"`
}
