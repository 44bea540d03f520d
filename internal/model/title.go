// SPDX-License-Identifier: MIT

package model

// TitleType classifies a searchable title.
type TitleType string

const (
	TypeMovie  TitleType = "movie"
	TypeSeries TitleType = "series"
)

// Title is a search result as rendered to API clients.
type Title struct {
	ID          TitleID   `json:"id"`
	Title       string    `json:"title"`
	Type        TitleType `json:"title_type"`
	ReleaseYear *int      `json:"release_year,omitempty"`
	Overview    *string   `json:"overview,omitempty"`
}
