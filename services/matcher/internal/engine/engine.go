// Package engine evaluates applicant snapshots against company search
// profiles. It is pure: no I/O, no clocks, no shared state.
package engine

import (
	"strings"

	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/matcher/internal/models"

	"github.com/shopspring/decimal"
)

// Matches reports whether the applicant satisfies every criterion of the
// profile. Criteria are checked in order and short-circuit on the first
// failure: country, skill overlap, employment-type overlap, salary interval
// overlap, education.
func Matches(applicant models.ApplicantSnapshot, profile models.CompanySearchProfile) bool {
	if !countryMatches(applicant.Country, profile.Country) {
		return false
	}
	if !skillsOverlap(applicant.SkillTags, profile.DesiredSkillTags) {
		return false
	}
	if !employmentTypesMatch(applicant.EmploymentPreferences, profile.DesiredEmploymentTypes) {
		return false
	}
	if !salaryRangesOverlap(applicant, profile) {
		return false
	}
	return educationMatches(applicant.HighestEducationDegree, profile.DesiredMinEducationDegree)
}

// FindMatchingCompanies returns the ids of every profile the applicant
// matches, preserving the relative order of the input profiles.
func FindMatchingCompanies(applicant models.ApplicantSnapshot, profiles []models.CompanySearchProfile) []string {
	companyIDs := make([]string, 0)
	for _, profile := range profiles {
		if Matches(applicant, profile) {
			companyIDs = append(companyIDs, profile.CompanyID)
		}
	}
	return companyIDs
}

// countryMatches requires both sides to state a country. A profile without a
// country matches nobody.
func countryMatches(applicantCountry, profileCountry string) bool {
	if applicantCountry == "" || profileCountry == "" {
		return false
	}
	return strings.EqualFold(applicantCountry, profileCountry)
}

// skillsOverlap requires both tag sets to be non-empty and share at least one
// tag, compared case-insensitively.
func skillsOverlap(applicantTags, desiredTags []string) bool {
	if len(applicantTags) == 0 || len(desiredTags) == 0 {
		return false
	}

	desired := make(map[string]struct{}, len(desiredTags))
	for _, tag := range desiredTags {
		desired[strings.ToLower(tag)] = struct{}{}
	}

	for _, tag := range applicantTags {
		if _, ok := desired[strings.ToLower(tag)]; ok {
			return true
		}
	}
	return false
}

// employmentTypesMatch treats an empty desired set as a wildcard. When the
// profile does state desired types, the applicant must share at least one.
func employmentTypesMatch(preferences, desired []models.EmploymentType) bool {
	if len(desired) == 0 {
		return true
	}
	if len(preferences) == 0 {
		return false
	}

	for _, want := range desired {
		for _, have := range preferences {
			if strings.EqualFold(string(want), string(have)) {
				return true
			}
		}
	}
	return false
}

// salaryRangesOverlap passes unconditionally when the applicant states no
// salary preference at all. Otherwise missing bounds are unbounded in their
// direction: the profile floor defaults to zero and the profile ceiling to
// +infinity, and the two intervals must overlap.
func salaryRangesOverlap(applicant models.ApplicantSnapshot, profile models.CompanySearchProfile) bool {
	if applicant.ExpectedSalaryMin == nil && applicant.ExpectedSalaryMax == nil {
		return true
	}

	profileMin := decimal.Zero
	if profile.DesiredSalaryMin != nil {
		profileMin = *profile.DesiredSalaryMin
	}

	if applicant.ExpectedSalaryMax != nil && applicant.ExpectedSalaryMax.LessThan(profileMin) {
		return false
	}
	if applicant.ExpectedSalaryMin != nil && profile.DesiredSalaryMax != nil &&
		applicant.ExpectedSalaryMin.GreaterThan(*profile.DesiredSalaryMax) {
		return false
	}
	return true
}

// educationMatches does an exact case-insensitive comparison, not an ordered
// "at least this degree" one: a profile asking for a Master's does not accept
// a PhD. An absent profile requirement is a wildcard.
func educationMatches(applicantDegree, desiredDegree string) bool {
	if desiredDegree == "" {
		return true
	}
	if applicantDegree == "" {
		return false
	}
	return strings.EqualFold(applicantDegree, desiredDegree)
}
