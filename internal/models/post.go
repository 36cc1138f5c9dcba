package models

import "time"

// Post is a blog entry. A post is publicly visible only while it is
// published, its pub date has passed and its category is published.
type Post struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	Title   string    `gorm:"size:256;not null" json:"title"`
	Text    string    `gorm:"type:text;not null" json:"text"`
	PubDate time.Time `gorm:"not null;index" json:"pub_date"`

	IsPublished bool `gorm:"not null" json:"is_published"`
	// IsScheduled records whether the post was created with a future pub
	// date. It is set once on create and never recomputed.
	IsScheduled bool `gorm:"not null" json:"is_scheduled"`

	AuthorID   uint      `gorm:"not null;index" json:"author_id"`
	Author     User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	CategoryID *uint     `gorm:"index" json:"category_id,omitempty"`
	Category   *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	LocationID *uint     `gorm:"index" json:"location_id,omitempty"`
	Location   *Location `gorm:"foreignKey:LocationID;constraint:OnDelete:SET NULL" json:"location,omitempty"`

	// Image is stored through the storage backend; ImageKey is the object key
	ImageKey string `gorm:"size:512" json:"-"`
	ImageURL string `gorm:"size:1024" json:"image_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	// CommentCount is filled by listing queries only
	CommentCount int64 `gorm:"->;-:migration" json:"comment_count"`
}

// IsAuthoredBy reports whether userID wrote the post
func (p *Post) IsAuthoredBy(userID uint) bool {
	return userID != 0 && p.AuthorID == userID
}
