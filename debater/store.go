package debater

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eristic-ai/eristic/internal/database"
	"github.com/eristic-ai/eristic/types"
)

// Store persists debater personas.
type Store interface {
	Create(ctx context.Context, d *Debater) error
	Get(ctx context.Context, id string) (*Debater, error)
	GetByName(ctx context.Context, name string) (*Debater, error)
	List(ctx context.Context) ([]Debater, error)
	ListActive(ctx context.Context) ([]Debater, error)
	Update(ctx context.Context, id string, fields map[string]any) (*Debater, error)
	Delete(ctx context.Context, id string) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore creates a Store on the managed pool.
func NewStore(pool *database.PoolManager) Store {
	return &gormStore{db: pool.DB()}
}

// Migrate creates or updates the debaters table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Debater{})
}

func (s *gormStore) Create(ctx context.Context, d *Debater) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(d).Error; err != nil {
		return types.NewStorageError("create debater", err)
	}
	return nil
}

func (s *gormStore) Get(ctx context.Context, id string) (*Debater, error) {
	var d Debater
	err := s.db.WithContext(ctx).First(&d, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NewNotFoundError("debater")
	}
	if err != nil {
		return nil, types.NewStorageError("get debater", err)
	}
	return &d, nil
}

func (s *gormStore) GetByName(ctx context.Context, name string) (*Debater, error) {
	var d Debater
	err := s.db.WithContext(ctx).First(&d, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NewNotFoundError("debater")
	}
	if err != nil {
		return nil, types.NewStorageError("get debater", err)
	}
	return &d, nil
}

func (s *gormStore) List(ctx context.Context) ([]Debater, error) {
	var debaters []Debater
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&debaters).Error; err != nil {
		return nil, types.NewStorageError("list debaters", err)
	}
	return debaters, nil
}

func (s *gormStore) ListActive(ctx context.Context) ([]Debater, error) {
	var debaters []Debater
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).Order("name ASC").Find(&debaters).Error
	if err != nil {
		return nil, types.NewStorageError("list debaters", err)
	}
	return debaters, nil
}

func (s *gormStore) Update(ctx context.Context, id string, fields map[string]any) (*Debater, error) {
	fields["updated_at"] = time.Now()
	res := s.db.WithContext(ctx).Model(&Debater{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, types.NewStorageError("update debater", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, types.NewNotFoundError("debater")
	}
	return s.Get(ctx, id)
}

func (s *gormStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&Debater{}, "id = ?", id)
	if res.Error != nil {
		return types.NewStorageError("delete debater", res.Error)
	}
	if res.RowsAffected == 0 {
		return types.NewNotFoundError("debater")
	}
	return nil
}
