package entity

import "github.com/google/uuid"

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "PENDING"
	VerificationVerified VerificationStatus = "VERIFIED"
	VerificationRejected VerificationStatus = "REJECTED"
)

// Suppliers are owned by the onboarding flow and only read here.
type Supplier struct {
	UserId             uuid.UUID          `json:"userId" db:"user_id"`
	BusinessName       string             `json:"businessName" db:"business_name"`
	VerificationStatus VerificationStatus `json:"verificationStatus" db:"verification_status"`
}

func (s *Supplier) IsVerified() bool {
	return s.VerificationStatus == VerificationVerified
}
