package entity

import "github.com/retroquest-labs/backend/pkg/enum"

type ClaimStatus string

var (
	ClaimPending  = enum.New(ClaimStatus("pending"))
	ClaimApproved = enum.New(ClaimStatus("approved"))
	ClaimRejected = enum.New(ClaimStatus("rejected"))
)

type Claim struct {
	Base

	QuestID string `gorm:"index"`
	Quest   Quest  `gorm:"foreignKey:QuestID"`

	UserID string `gorm:"index"`
	User   User   `gorm:"foreignKey:UserID"`

	ProofURL string
	Status   ClaimStatus
}
