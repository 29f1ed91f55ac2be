package entity

type User struct {
	Base
	WalletAddress string `gorm:"unique;not null"`
	Username      string
	Email         string
	XP            uint64
	Level         uint64 `gorm:"default:1"`
}
