package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webqianduansong/shn-jade-backend/pkg/db/models"
)

// Repository defines persistence operations for the database-backed cart.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	FindWithItems(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddQuantity(ctx context.Context, cartID, productID uuid.UUID, qty int) error
	SetQuantity(ctx context.Context, cartID, productID uuid.UUID, qty int) error
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error
	ReplaceItems(ctx context.Context, cartID uuid.UUID, items []Item) error
	ClearItems(ctx context.Context, cartID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = models.Cart{UserID: userID}
	if err := r.db.WithContext(ctx).Create(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *repository) FindWithItems(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *repository) AddQuantity(ctx context.Context, cartID, productID uuid.UUID, qty int) error {
	tx := r.db.WithContext(ctx)

	var existing models.CartItem
	err := tx.Where("cart_id = ? AND product_id = ?", cartID, productID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&models.CartItem{
			CartID:    cartID,
			ProductID: productID,
			Quantity:  qty,
		}).Error
	}
	if err != nil {
		return err
	}

	return tx.Model(&existing).UpdateColumn("quantity", existing.Quantity+qty).Error
}

func (r *repository) SetQuantity(ctx context.Context, cartID, productID uuid.UUID, qty int) error {
	tx := r.db.WithContext(ctx)

	var existing models.CartItem
	err := tx.Where("cart_id = ? AND product_id = ?", cartID, productID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&models.CartItem{
			CartID:    cartID,
			ProductID: productID,
			Quantity:  qty,
		}).Error
	}
	if err != nil {
		return err
	}

	return tx.Model(&existing).UpdateColumn("quantity", qty).Error
}

func (r *repository) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartItem{}).Error
}

func (r *repository) ReplaceItems(ctx context.Context, cartID uuid.UUID, items []Item) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	rows := make([]models.CartItem, 0, len(items))
	for _, item := range items {
		rows = append(rows, models.CartItem{
			CartID:    cartID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return tx.Create(&rows).Error
}

func (r *repository) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}
