package models

import "time"

// Board groups posts under a category and carries the posting policy for it.
// AllowAnonymous gates whether guest comments are accepted on the board's posts.
type Board struct {
	ID             int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Category       string    `json:"category" gorm:"uniqueIndex;not null"`
	Name           string    `json:"name" gorm:"not null"`
	AllowAnonymous bool      `json:"allow_anonymous" gorm:"default:true;not null"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Board) TableName() string {
	return "boards"
}
