package model

import "time"

type Stats struct {
	TotalUsers  int              `json:"totalUsers"`
	ActiveUsers int              `json:"activeUsers"`
	ByType      map[UserType]int `json:"byType"`
	GeneratedAt time.Time        `json:"generatedAt"`
}

// UserTypeCount is one aggregation bucket as returned by the store.
type UserTypeCount struct {
	Type   UserType
	Active bool
	Count  int
}

// NewStats folds store buckets into a Stats value.
func NewStats(buckets []UserTypeCount, now time.Time) *Stats {
	s := &Stats{
		ByType:      make(map[UserType]int),
		GeneratedAt: now.UTC(),
	}
	for _, b := range buckets {
		s.TotalUsers += b.Count
		if b.Active {
			s.ActiveUsers += b.Count
		}
		s.ByType[b.Type] += b.Count
	}
	return s
}
