// SPDX-License-Identifier: MIT

package model

import "time"

// AvailabilityType says how a service offers a title.
type AvailabilityType string

const (
	AvailSubscription AvailabilityType = "subscription"
	AvailRent         AvailabilityType = "rent"
	AvailBuy          AvailabilityType = "buy"
	AvailFree         AvailabilityType = "free"
	AvailAddon        AvailabilityType = "addon"
)

// ServiceAvailability is one service's offering of a title.
type ServiceAvailability struct {
	ServiceID   string           `json:"service_id"`
	ServiceName string           `json:"service_name"`
	Type        AvailabilityType `json:"availability_type"`
	Quality     *string          `json:"quality,omitempty"`
	Link        *string          `json:"link,omitempty"`
}

// StreamingAvailability lists where a title can be watched. ID always equals
// the ID the lookup was made with, never an upstream echo, so cache entries
// and optimizer joins line up with the request.
type StreamingAvailability struct {
	ID       TitleID               `json:"id"`
	Services []ServiceAvailability `json:"services"`
	CachedAt time.Time             `json:"cached_at"`
}

// SubscriptionServices returns the IDs of services offering the title via
// subscription, preserving upstream order.
func (a StreamingAvailability) SubscriptionServices() []string {
	var ids []string
	for _, s := range a.Services {
		if s.Type == AvailSubscription {
			ids = append(ids, s.ServiceID)
		}
	}
	return ids
}
