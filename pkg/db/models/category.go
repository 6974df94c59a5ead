package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups catalog products (bangles, pendants, beads, ...).
type Category struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Slug      string    `gorm:"column:slug;type:text;not null;uniqueIndex"`
	Name      string    `gorm:"column:name;not null"`
	NameZh    string    `gorm:"column:name_zh;not null;default:''"`
	SortOrder int       `gorm:"column:sort_order;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
