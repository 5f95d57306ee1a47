package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PapelAdmin       = "ADMIN"
	PapelGarcom      = "GARCOM"
	PapelFuncionario = "FUNCIONARIO"
)

type Usuario struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Nome      string    `gorm:"type:varchar(255);not null" json:"nome"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Senha     string    `gorm:"type:varchar(255);not null" json:"-"`
	Papel     string    `gorm:"type:varchar(20);not null;default:'FUNCIONARIO'" json:"papel"`
	EmpresaID uuid.UUID `gorm:"type:char(36);not null;index" json:"empresaId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *Usuario) BeforeCreate(tx *gorm.DB) error {
	assignID(&u.ID)
	return nil
}

func (Usuario) TableName() string {
	return "usuarios"
}
