package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Notification is the durable record of one applicant/company match. At most
// one row exists per (CompanyID, ApplicantID) pair; duplicate match events
// collapse onto the first row.
type Notification struct {
	ID            string    `json:"id"`
	CompanyID     string    `json:"companyId"`
	ApplicantID   string    `json:"applicantId"`
	ApplicantName string    `json:"applicantName"`
	Message       string    `json:"message"`
	Read          bool      `json:"read"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (n Notification) MarshalBinary() ([]byte, error) {
	return json.Marshal(n)
}

func (n *Notification) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, n)
}

// MatchMessage builds the user-visible message for a fresh match.
func MatchMessage(applicantName string) string {
	if applicantName == "" {
		applicantName = "A new applicant"
	}
	return fmt.Sprintf("%s matches your search profile", applicantName)
}

// MatchEvent mirrors the wire format published by the matcher service on
// applicants.matched.
type MatchEvent struct {
	CompanyID     string `json:"companyId"`
	ApplicantID   string `json:"applicantId"`
	ApplicantName string `json:"applicantName"`
}
