package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchURL(t *testing.T) {
	tests := []struct {
		name     string
		jobTitle string
		location string
		radius   int
		limit    int
		start    int
		want     string
	}{
		{
			name:     "basic",
			jobTitle: "software engineer",
			location: "Berlin",
			radius:   25,
			limit:    15,
			want:     "https://de.indeed.com/jobs?q=software+engineer&l=Berlin&radius=25&limit=15",
		},
		{
			name:     "with pagination offset",
			jobTitle: "data scientist",
			location: "Munich",
			radius:   10,
			limit:    20,
			start:    30,
			want:     "https://de.indeed.com/jobs?q=data+scientist&l=Munich&radius=10&limit=20&start=30",
		},
		{
			name:     "special characters",
			jobTitle: "C++ developer",
			location: "Frankfurt am Main",
			radius:   15,
			limit:    15,
			want:     "https://de.indeed.com/jobs?q=C+++developer&l=Frankfurt+am+Main&radius=15&limit=15",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SearchURL(tt.jobTitle, tt.location, tt.radius, tt.limit, tt.start)
			assert.Equal(t, tt.want, got)
		})
	}
}
