package debate

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eristic-ai/eristic/internal/database"
	"github.com/eristic-ai/eristic/types"
)

// Store is the persistence contract of the state machine. Every call
// either succeeds, fails NOT_FOUND, or fails STORAGE_ERROR.
type Store interface {
	// CreateDebate persists the debate and its participants atomically.
	CreateDebate(ctx context.Context, d *Debate) error
	// GetDebate loads the debate row only.
	GetDebate(ctx context.Context, id string) (*Debate, error)
	// GetDebateWithDetails loads the debate with participants, rounds and
	// responses, rounds ordered by number and responses by order.
	GetDebateWithDetails(ctx context.Context, id string) (*Debate, error)
	// ListDebates returns all debates, newest first.
	ListDebates(ctx context.Context) ([]Debate, error)
	UpdateDebateStatus(ctx context.Context, id string, status Status) error
	UpdateCurrentRound(ctx context.Context, id string, round int) error
	// DeleteDebate removes the debate and cascades to participants,
	// rounds and responses.
	DeleteDebate(ctx context.Context, id string) error

	GetRoundByNumber(ctx context.Context, debateID string, number int) (*Round, error)
	CreateRound(ctx context.Context, debateID string, number int) (*Round, error)
	UpdateRoundStatus(ctx context.Context, roundID string, status RoundStatus) error
	UpdateRoundSummary(ctx context.Context, roundID string, summary string) error
	ListRounds(ctx context.Context, debateID string) ([]Round, error)

	AddResponse(ctx context.Context, r *Response) error
	// ListResponses returns one round's responses ordered by response order.
	ListResponses(ctx context.Context, roundID string) ([]Response, error)
	// ListDebateResponses returns every response across the debate in
	// (round number, response order) sequence.
	ListDebateResponses(ctx context.Context, debateID string) ([]Response, error)

	// InTransaction runs fn against a transactional view of the store.
	// Multi-table mutations (round completion) go through here.
	InTransaction(ctx context.Context, fn func(Store) error) error
}

// gormStore implements Store on a GORM connection.
type gormStore struct {
	db *gorm.DB
}

// NewStore creates a Store on the managed pool.
func NewStore(pool *database.PoolManager) Store {
	return &gormStore{db: pool.DB()}
}

// Migrate creates or updates the debate tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Debate{}, &Participant{}, &Round{}, &Response{})
}

func (s *gormStore) CreateDebate(ctx context.Context, d *Debate) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	for i := range d.Participants {
		if d.Participants[i].ID == "" {
			d.Participants[i].ID = uuid.NewString()
		}
		d.Participants[i].DebateID = d.ID
	}

	// A single Create writes the debate and its participant associations
	// in one transaction.
	if err := s.db.WithContext(ctx).Create(d).Error; err != nil {
		return types.NewStorageError("create debate", err)
	}
	return nil
}

func (s *gormStore) GetDebate(ctx context.Context, id string) (*Debate, error) {
	var d Debate
	err := s.db.WithContext(ctx).First(&d, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NewNotFoundError("debate")
	}
	if err != nil {
		return nil, types.NewStorageError("get debate", err)
	}
	return &d, nil
}

func (s *gormStore) GetDebateWithDetails(ctx context.Context, id string) (*Debate, error) {
	var d Debate
	err := s.db.WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Rounds", func(db *gorm.DB) *gorm.DB {
			return db.Order("round_number ASC")
		}).
		Preload("Rounds.Responses", func(db *gorm.DB) *gorm.DB {
			return db.Order("response_order ASC")
		}).
		First(&d, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NewNotFoundError("debate")
	}
	if err != nil {
		return nil, types.NewStorageError("get debate", err)
	}
	return &d, nil
}

func (s *gormStore) ListDebates(ctx context.Context) ([]Debate, error) {
	var debates []Debate
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&debates).Error
	if err != nil {
		return nil, types.NewStorageError("list debates", err)
	}
	return debates, nil
}

func (s *gormStore) UpdateDebateStatus(ctx context.Context, id string, status Status) error {
	return s.updateDebate(ctx, id, map[string]any{"status": status})
}

func (s *gormStore) UpdateCurrentRound(ctx context.Context, id string, round int) error {
	return s.updateDebate(ctx, id, map[string]any{"current_round": round})
}

func (s *gormStore) updateDebate(ctx context.Context, id string, fields map[string]any) error {
	fields["updated_at"] = time.Now()
	res := s.db.WithContext(ctx).Model(&Debate{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return types.NewStorageError("update debate", res.Error)
	}
	if res.RowsAffected == 0 {
		return types.NewNotFoundError("debate")
	}
	return nil
}

func (s *gormStore) DeleteDebate(ctx context.Context, id string) error {
	return s.InTransaction(ctx, func(tx Store) error {
		ts := tx.(*gormStore)

		var roundIDs []string
		if err := ts.db.WithContext(ctx).Model(&Round{}).
			Where("debate_id = ?", id).Pluck("id", &roundIDs).Error; err != nil {
			return types.NewStorageError("delete debate", err)
		}
		if len(roundIDs) > 0 {
			if err := ts.db.WithContext(ctx).
				Where("round_id IN ?", roundIDs).Delete(&Response{}).Error; err != nil {
				return types.NewStorageError("delete debate", err)
			}
		}
		if err := ts.db.WithContext(ctx).
			Where("debate_id = ?", id).Delete(&Round{}).Error; err != nil {
			return types.NewStorageError("delete debate", err)
		}
		if err := ts.db.WithContext(ctx).
			Where("debate_id = ?", id).Delete(&Participant{}).Error; err != nil {
			return types.NewStorageError("delete debate", err)
		}

		res := ts.db.WithContext(ctx).Delete(&Debate{}, "id = ?", id)
		if res.Error != nil {
			return types.NewStorageError("delete debate", res.Error)
		}
		if res.RowsAffected == 0 {
			return types.NewNotFoundError("debate")
		}
		return nil
	})
}

func (s *gormStore) GetRoundByNumber(ctx context.Context, debateID string, number int) (*Round, error) {
	var r Round
	err := s.db.WithContext(ctx).
		First(&r, "debate_id = ? AND round_number = ?", debateID, number).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NewNotFoundError("round")
	}
	if err != nil {
		return nil, types.NewStorageError("get round", err)
	}
	return &r, nil
}

func (s *gormStore) CreateRound(ctx context.Context, debateID string, number int) (*Round, error) {
	r := &Round{
		ID:          uuid.NewString(),
		DebateID:    debateID,
		RoundNumber: number,
		Status:      RoundPending,
	}
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, types.NewStorageError("create round", err)
	}
	return r, nil
}

func (s *gormStore) UpdateRoundStatus(ctx context.Context, roundID string, status RoundStatus) error {
	fields := map[string]any{"status": status}
	if status == RoundCompleted {
		now := time.Now()
		fields["completed_at"] = &now
	}
	res := s.db.WithContext(ctx).Model(&Round{}).Where("id = ?", roundID).Updates(fields)
	if res.Error != nil {
		return types.NewStorageError("update round", res.Error)
	}
	if res.RowsAffected == 0 {
		return types.NewNotFoundError("round")
	}
	return nil
}

func (s *gormStore) UpdateRoundSummary(ctx context.Context, roundID string, summary string) error {
	res := s.db.WithContext(ctx).Model(&Round{}).
		Where("id = ?", roundID).Update("summary", summary)
	if res.Error != nil {
		return types.NewStorageError("update round summary", res.Error)
	}
	if res.RowsAffected == 0 {
		return types.NewNotFoundError("round")
	}
	return nil
}

func (s *gormStore) ListRounds(ctx context.Context, debateID string) ([]Round, error) {
	var rounds []Round
	err := s.db.WithContext(ctx).
		Where("debate_id = ?", debateID).Order("round_number ASC").Find(&rounds).Error
	if err != nil {
		return nil, types.NewStorageError("list rounds", err)
	}
	return rounds, nil
}

func (s *gormStore) AddResponse(ctx context.Context, r *Response) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return types.NewStorageError("add response", err)
	}
	return nil
}

func (s *gormStore) ListResponses(ctx context.Context, roundID string) ([]Response, error) {
	var responses []Response
	err := s.db.WithContext(ctx).
		Where("round_id = ?", roundID).Order("response_order ASC").Find(&responses).Error
	if err != nil {
		return nil, types.NewStorageError("list responses", err)
	}
	return responses, nil
}

func (s *gormStore) ListDebateResponses(ctx context.Context, debateID string) ([]Response, error) {
	var responses []Response
	err := s.db.WithContext(ctx).
		Joins("JOIN rounds ON rounds.id = responses.round_id").
		Where("rounds.debate_id = ?", debateID).
		Order("rounds.round_number ASC, responses.response_order ASC").
		Find(&responses).Error
	if err != nil {
		return nil, types.NewStorageError("list debate responses", err)
	}
	return responses, nil
}

func (s *gormStore) InTransaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
