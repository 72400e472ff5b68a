package memory

import (
	"maps"
	"slices"

	"go-autofill-backend/internal/domain"
)

// Records are copied on the way in and out so callers never share memory
// with the store.

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.Phone = cloneString(u.Phone)
	c.Location = cloneString(u.Location)
	c.CurrentPosition = cloneString(u.CurrentPosition)
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneProfile(p *domain.Profile) *domain.Profile {
	c := *p
	c.PersonalInfo.Website = cloneString(p.PersonalInfo.Website)
	c.WorkExperience = slices.Clone(p.WorkExperience)
	c.Education = slices.Clone(p.Education)
	for i := range c.Education {
		c.Education[i].GPA = cloneString(p.Education[i].GPA)
	}
	c.Skills = slices.Clone(p.Skills)
	c.CustomFields = maps.Clone(p.CustomFields)
	return &c
}

func cloneHistory(h *domain.FormHistory) domain.FormHistory {
	c := *h
	c.PositionTitle = cloneString(h.PositionTitle)
	if h.Details != nil {
		d := *h.Details
		d.Fields = slices.Clone(h.Details.Fields)
		c.Details = &d
	}
	return c
}

func cloneSettings(s *domain.ExtensionSettings) *domain.ExtensionSettings {
	c := *s
	if s.FieldMappings != nil {
		c.FieldMappings = make(domain.FieldMappings, len(s.FieldMappings))
		for site, fields := range s.FieldMappings {
			c.FieldMappings[site] = maps.Clone(fields)
		}
	}
	return &c
}

func cloneStatistics(s *domain.Statistics) *domain.Statistics {
	c := *s
	if s.WeeklyStats != nil {
		c.WeeklyStats = &domain.WeeklyStats{
			ApplicationsFilled: slices.Clone(s.WeeklyStats.ApplicationsFilled),
			SuccessRates:       slices.Clone(s.WeeklyStats.SuccessRates),
		}
	}
	return &c
}
