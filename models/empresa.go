package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Empresa struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Nome      string    `gorm:"type:varchar(255);not null" json:"nome"`
	CNPJ      string    `gorm:"column:cnpj;type:varchar(18);uniqueIndex;not null" json:"cnpj"`
	Telefone  *string   `gorm:"type:varchar(20)" json:"telefone,omitempty"`
	Email     *string   `gorm:"type:varchar(255)" json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (e *Empresa) BeforeCreate(tx *gorm.DB) error {
	assignID(&e.ID)
	return nil
}

func (Empresa) TableName() string {
	return "empresas"
}
