package models

import (
	"github.com/shopspring/decimal"
)

// EmploymentType enumerates the employment arrangements an applicant can
// prefer and a company can search for. Comparisons are case-insensitive.
type EmploymentType string

const (
	EmploymentFullTime   EmploymentType = "FULL_TIME"
	EmploymentPartTime   EmploymentType = "PART_TIME"
	EmploymentContract   EmploymentType = "CONTRACT"
	EmploymentInternship EmploymentType = "INTERNSHIP"
	EmploymentFreelance  EmploymentType = "FREELANCE"
)

// ApplicantSnapshot is the immutable view of an applicant captured at the
// time the applicant-created event was emitted. It is never persisted here.
type ApplicantSnapshot struct {
	ApplicantID            string
	DisplayName            string
	Country                string
	SkillTags              []string
	EmploymentPreferences  []EmploymentType
	ExpectedSalaryMin      *decimal.Decimal
	ExpectedSalaryMax      *decimal.Decimal
	HighestEducationDegree string
}
