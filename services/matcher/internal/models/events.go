package models

import (
	"github.com/shopspring/decimal"
)

// ApplicantCreatedEvent is the inbound wire format on applicants.created.
type ApplicantCreatedEvent struct {
	ApplicantID            string           `json:"applicantId"`
	DisplayName            string           `json:"displayName"`
	Country                string           `json:"country"`
	SkillTags              []string         `json:"skillTags"`
	EmploymentPreferences  []string         `json:"employmentPreferences"`
	ExpectedSalaryMin      *decimal.Decimal `json:"expectedSalaryMin"`
	ExpectedSalaryMax      *decimal.Decimal `json:"expectedSalaryMax"`
	HighestEducationDegree string           `json:"highestEducationDegree"`
}

// ToSnapshot converts the wire event into the immutable snapshot evaluated by
// the matching engine.
func (e *ApplicantCreatedEvent) ToSnapshot() ApplicantSnapshot {
	preferences := make([]EmploymentType, 0, len(e.EmploymentPreferences))
	for _, p := range e.EmploymentPreferences {
		preferences = append(preferences, EmploymentType(p))
	}

	return ApplicantSnapshot{
		ApplicantID:            e.ApplicantID,
		DisplayName:            e.DisplayName,
		Country:                e.Country,
		SkillTags:              e.SkillTags,
		EmploymentPreferences:  preferences,
		ExpectedSalaryMin:      e.ExpectedSalaryMin,
		ExpectedSalaryMax:      e.ExpectedSalaryMax,
		HighestEducationDegree: e.HighestEducationDegree,
	}
}

// MatchEvent is the outbound wire format on applicants.matched, one per
// qualifying company.
type MatchEvent struct {
	CompanyID     string `json:"companyId"`
	ApplicantID   string `json:"applicantId"`
	ApplicantName string `json:"applicantName"`
}
