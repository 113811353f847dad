package infra

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"toolkit-gateway/contact/domain"
)

// ContactSubmissionModel é a linha persistida de uma submissão.
type ContactSubmissionModel struct {
	ID        string            `gorm:"primaryKey;size:36"`
	Email     string            `gorm:"size:320;not null"`
	Subject   string            `gorm:"size:200;not null"`
	Message   string            `gorm:"type:text;not null"`
	Language  string            `gorm:"size:16"`
	Identity  string            `gorm:"size:191;index"`
	Status    string            `gorm:"size:32;not null"`
	Metadata  datatypes.JSONMap `gorm:"type:json"`
	CreatedAt time.Time         `gorm:"index"`
}

func (ContactSubmissionModel) TableName() string { return "contact_submissions" }

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&ContactSubmissionModel{})
}

func (r *GormRepository) Create(ctx context.Context, s *domain.Submission) error {
	m := toModel(s)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("insert contact submission: %w", err)
	}
	return nil
}

func (r *GormRepository) List(ctx context.Context, limit int) ([]domain.Submission, error) {
	var rows []ContactSubmissionModel
	q := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list contact submissions: %w", err)
	}
	out := make([]domain.Submission, 0, len(rows))
	for _, m := range rows {
		out = append(out, fromModel(m))
	}
	return out, nil
}

func toModel(s *domain.Submission) ContactSubmissionModel {
	var meta datatypes.JSONMap
	if len(s.Metadata) > 0 {
		meta = make(datatypes.JSONMap, len(s.Metadata))
		for k, v := range s.Metadata {
			meta[k] = v
		}
	}
	return ContactSubmissionModel{
		ID:        s.ID,
		Email:     s.Email,
		Subject:   s.Subject,
		Message:   s.Message,
		Language:  s.Language,
		Identity:  s.Identity,
		Status:    s.Status,
		Metadata:  meta,
		CreatedAt: s.CreatedAt,
	}
}

func fromModel(m ContactSubmissionModel) domain.Submission {
	var meta map[string]string
	if len(m.Metadata) > 0 {
		meta = make(map[string]string, len(m.Metadata))
		for k, v := range m.Metadata {
			if s, ok := v.(string); ok {
				meta[k] = s
			} else {
				meta[k] = fmt.Sprint(v)
			}
		}
	}
	return domain.Submission{
		ID:        m.ID,
		Email:     m.Email,
		Subject:   m.Subject,
		Message:   m.Message,
		Language:  m.Language,
		Identity:  m.Identity,
		CreatedAt: m.CreatedAt,
		Status:    m.Status,
		Metadata:  meta,
	}
}
