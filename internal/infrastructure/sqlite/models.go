package sqlite

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/strategic-ledger/internal/domain/entity"
)

// Los importes se guardan como TEXT: la afinidad NUMERIC de SQLite los convertiría a REAL.

type departmentModel struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	CreatedAt time.Time
}

func (departmentModel) TableName() string { return "departments" }

type resourceModel struct {
	ID             string           `gorm:"primaryKey"`
	Slug           string           `gorm:"not null;uniqueIndex:resources_slug_key"`
	Name           string           `gorm:"not null"`
	Description    string           `gorm:"not null;default:''"`
	DepartmentID   *string          `gorm:"index"`
	Department     *departmentModel `gorm:"foreignKey:DepartmentID;references:ID"`
	InitialBalance decimal.Decimal  `gorm:"type:text;not null"`
	CurrentBalance decimal.Decimal  `gorm:"type:text;not null"`
	Status         string           `gorm:"not null;default:active"`
	CreatedBy      string           `gorm:"not null"`
	CreatedAt      time.Time        `gorm:"not null;index:resources_created_at_idx"`
	UpdatedAt      time.Time        `gorm:"not null"`
}

func (resourceModel) TableName() string { return "resources" }

type movementModel struct {
	ID              string          `gorm:"primaryKey"`
	ResourceID      string          `gorm:"not null;uniqueIndex:movements_resource_sequence_key,priority:1;index:movements_resource_created_idx,priority:1"`
	Resource        *resourceModel  `gorm:"foreignKey:ResourceID;references:ID"`
	Sequence        int64           `gorm:"not null;uniqueIndex:movements_resource_sequence_key,priority:2;index:movements_resource_created_idx,priority:3"`
	Type            string          `gorm:"not null"`
	Quantity        decimal.Decimal `gorm:"type:text;not null"`
	Notes           string          `gorm:"not null;default:''"`
	ReferencePeriod string          `gorm:"not null;default:''"`
	PerformedBy     string          `gorm:"not null"`
	CreatedAt       time.Time       `gorm:"not null;index:movements_resource_created_idx,priority:2"`
}

func (movementModel) TableName() string { return "movements" }

func toResourceModel(r *entity.Resource) *resourceModel {
	return &resourceModel{
		ID:             r.ID,
		Slug:           r.Slug,
		Name:           r.Name,
		Description:    r.Description,
		DepartmentID:   r.DepartmentID,
		InitialBalance: r.InitialBalance,
		CurrentBalance: r.CurrentBalance,
		Status:         string(r.Status),
		CreatedBy:      r.CreatedBy,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func (m *resourceModel) toEntity() *entity.Resource {
	return &entity.Resource{
		ID:             m.ID,
		Slug:           m.Slug,
		Name:           m.Name,
		Description:    m.Description,
		DepartmentID:   m.DepartmentID,
		InitialBalance: m.InitialBalance,
		CurrentBalance: m.CurrentBalance,
		Status:         entity.ResourceStatus(m.Status),
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

func toMovementModel(m *entity.Movement) *movementModel {
	return &movementModel{
		ID:              m.ID,
		ResourceID:      m.ResourceID,
		Sequence:        m.Sequence,
		Type:            string(m.Type),
		Quantity:        m.Quantity,
		Notes:           m.Notes,
		ReferencePeriod: m.ReferencePeriod,
		PerformedBy:     m.PerformedBy,
		CreatedAt:       m.CreatedAt,
	}
}

func (m *movementModel) toEntity() *entity.Movement {
	return &entity.Movement{
		ID:              m.ID,
		ResourceID:      m.ResourceID,
		Sequence:        m.Sequence,
		Type:            entity.MovementType(m.Type),
		Quantity:        m.Quantity,
		Notes:           m.Notes,
		ReferencePeriod: m.ReferencePeriod,
		PerformedBy:     m.PerformedBy,
		CreatedAt:       m.CreatedAt.UTC(),
	}
}
