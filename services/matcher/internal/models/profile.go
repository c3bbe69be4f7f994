package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// CompanySearchProfile is a company's standing statement of the applicants it
// wants to hear about. Owned and mutated by the directory service; read-only
// from this service's perspective.
type CompanySearchProfile struct {
	CompanyID                 string           `json:"companyId"`
	Country                   string           `json:"country,omitempty"`
	DesiredSkillTags          []string         `json:"desiredSkillTags,omitempty"`
	DesiredEmploymentTypes    []EmploymentType `json:"desiredEmploymentTypes,omitempty"`
	DesiredSalaryMin          *decimal.Decimal `json:"desiredSalaryMin,omitempty"`
	DesiredSalaryMax          *decimal.Decimal `json:"desiredSalaryMax,omitempty"`
	DesiredMinEducationDegree string           `json:"desiredMinEducationDegree,omitempty"`
}

// ProfileList wraps a directory snapshot so it can round-trip through the
// cache layer.
type ProfileList struct {
	Profiles []CompanySearchProfile `json:"profiles"`
}

func (l ProfileList) MarshalBinary() ([]byte, error) {
	return json.Marshal(l)
}

func (l *ProfileList) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, l)
}
