package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a jade catalog entry. Prices are integer minor-currency units;
// the zh columns carry the Chinese storefront copy.
type Product struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Slug          string     `gorm:"column:slug;type:text;not null;uniqueIndex"`
	Name          string     `gorm:"column:name;not null"`
	NameZh        string     `gorm:"column:name_zh;not null;default:''"`
	Description   string     `gorm:"column:description;not null;default:''"`
	DescriptionZh string     `gorm:"column:description_zh;not null;default:''"`
	PriceCents    int        `gorm:"column:price_cents;not null"`
	CategoryID    *uuid.UUID `gorm:"column:category_id;type:uuid"`
	ImageURL      *string    `gorm:"column:image_url"`
	IsActive      bool       `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
