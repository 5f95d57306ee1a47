package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Produto is a sellable catalog item. The comanda core only reads it.
type Produto struct {
	ID          uuid.UUID       `gorm:"type:char(36);primaryKey" json:"id"`
	Nome        string          `gorm:"type:varchar(255);not null" json:"nome"`
	Descricao   *string         `gorm:"type:text" json:"descricao,omitempty"`
	Preco       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"preco"`
	Estoque     int             `gorm:"not null;default:0" json:"estoque"`
	Ativo       bool            `gorm:"not null" json:"ativo"`
	Imagem      *string         `gorm:"type:varchar(255)" json:"imagem,omitempty"`
	CategoriaID *uuid.UUID      `gorm:"type:char(36);index" json:"categoriaId,omitempty"`
	Categoria   *Categoria      `gorm:"foreignKey:CategoriaID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"categoria,omitempty"`
	EmpresaID   uuid.UUID       `gorm:"type:char(36);not null;index" json:"empresaId"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (p *Produto) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	return nil
}

func (Produto) TableName() string {
	return "produtos"
}
