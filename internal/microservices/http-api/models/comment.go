package models

import "time"

// Comment is a single node in a post's discussion. Nesting is capped at one
// level: a comment with a nil ParentID is top-level, a non-nil ParentID must
// point at a top-level comment. Soft deletion flips IsDeleted and keeps the
// row so replies stay attached.
//
// Authorship is either a registered user (UserID set) or a guest
// (IsGuest set, GuestNickname shown, GuestPasswordHash guards deletion).
type Comment struct {
	ID                int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	PostID            int64     `json:"post_id" gorm:"not null;index"`
	ParentID          *int64    `json:"parent_id,omitempty" gorm:"index"`
	UserID            *string   `json:"user_id,omitempty" gorm:"type:uuid;index"`
	IsGuest           bool      `json:"is_guest" gorm:"default:false;not null"`
	GuestNickname     string    `json:"guest_nickname,omitempty"`
	GuestPasswordHash string    `json:"-" gorm:"column:guest_password_hash"`
	Content           string    `json:"content" gorm:"not null;type:text"`
	LikeCount         int       `json:"like_count" gorm:"default:0;not null"`
	IsDeleted         bool      `json:"is_deleted" gorm:"default:false;not null"`
	CreatedAt         time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Associations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL;"`
	Post Post  `json:"post,omitempty" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE;"`
}

func (Comment) TableName() string {
	return "comments"
}

// IsTopLevel reports whether the comment sits directly under its post.
func (c *Comment) IsTopLevel() bool {
	return c.ParentID == nil
}

// AuthorName resolves the display name for either authorship model.
func (c *Comment) AuthorName() string {
	if c.IsGuest {
		return c.GuestNickname
	}
	if c.User != nil {
		return c.User.Username
	}
	return ""
}
