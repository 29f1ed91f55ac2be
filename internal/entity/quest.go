package entity

import (
	"database/sql"

	"github.com/retroquest-labs/backend/pkg/enum"
)

type QuestType string

var (
	QuestRegular   = enum.New(QuestType("regular"))
	QuestTimeBased = enum.New(QuestType("time_based"))
)

type QuestStatusType string

var (
	QuestOpen      = enum.New(QuestStatusType("open"))
	QuestCompleted = enum.New(QuestStatusType("completed"))
	QuestExpired   = enum.New(QuestStatusType("expired"))
)

type Quest struct {
	Base

	Title       string
	Description string `gorm:"type:text"`
	GithubURL   string

	Type   QuestType
	Status QuestStatusType

	// Expiry is set iff Type is time_based.
	Expiry sql.NullTime

	RewardAmount  float64
	SuppliedFunds float64
	FundsReleased bool

	// TransactionHash of the escrow deposit. Empty when the creator has not
	// recorded an on-chain deposit for this quest.
	TransactionHash string

	CreatorID string
	Creator   User `gorm:"foreignKey:CreatorID"`

	Tags []Tag `gorm:"many2many:quest_tags;"`
}
