package models

import "time"

type Post struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	BoardID   int64     `json:"board_id" gorm:"not null;index"`
	AuthorID  string    `json:"author_id" gorm:"type:uuid;not null;index"`
	Title     string    `json:"title" gorm:"not null"`
	Body      string    `json:"body" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Associations
	Board  Board `json:"board,omitempty" gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE;"`
	Author User  `json:"author,omitempty" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
}

func (Post) TableName() string {
	return "posts"
}
