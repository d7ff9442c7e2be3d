package topic

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eristic-ai/eristic/internal/database"
	"github.com/eristic-ai/eristic/types"
)

// Store persists generated topic content.
type Store interface {
	Create(ctx context.Context, item *Item) error
	Get(ctx context.Context, id string) (*Item, error)
	List(ctx context.Context) ([]Item, error)
	Delete(ctx context.Context, id string) (*Item, error)
}

type gormStore struct {
	db *gorm.DB
}

// NewStore creates a Store on the managed pool.
func NewStore(pool *database.PoolManager) Store {
	return &gormStore{db: pool.DB()}
}

// Migrate creates or updates the topics table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Item{})
}

func (s *gormStore) Create(ctx context.Context, item *Item) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return types.NewStorageError("create topic", err)
	}
	return nil
}

func (s *gormStore) Get(ctx context.Context, id string) (*Item, error) {
	var item Item
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NewNotFoundError("topic")
	}
	if err != nil {
		return nil, types.NewStorageError("get topic", err)
	}
	return &item, nil
}

func (s *gormStore) List(ctx context.Context) ([]Item, error) {
	var items []Item
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, types.NewStorageError("list topics", err)
	}
	return items, nil
}

// Delete removes the item and returns it so callers can evict caches.
func (s *gormStore) Delete(ctx context.Context, id string) (*Item, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Delete(&Item{}, "id = ?", id).Error; err != nil {
		return nil, types.NewStorageError("delete topic", err)
	}
	return item, nil
}
