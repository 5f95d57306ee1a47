package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Categoria struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Nome      string    `gorm:"type:varchar(100);not null" json:"nome"`
	Descricao *string   `gorm:"type:text" json:"descricao,omitempty"`
	EmpresaID uuid.UUID `gorm:"type:char(36);not null;index" json:"empresaId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Categoria) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.ID)
	return nil
}

func (Categoria) TableName() string {
	return "categorias"
}
