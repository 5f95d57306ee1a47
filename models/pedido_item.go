package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	QuantidadeScale = 3
	PrecoScale      = 2
	// SubtotalScale holds quantidade * precoUnitario without rounding.
	SubtotalScale = QuantidadeScale + PrecoScale
)

// PedidoItem is the single ledger row of one produto inside one comanda.
type PedidoItem struct {
	ID            uuid.UUID       `gorm:"type:char(36);primaryKey" json:"id"`
	ComandaID     uuid.UUID       `gorm:"type:char(36);not null;uniqueIndex:idx_pedido_comanda_produto,priority:1" json:"comandaId"`
	ProdutoID     uuid.UUID       `gorm:"type:char(36);not null;uniqueIndex:idx_pedido_comanda_produto,priority:2;index" json:"produtoId"`
	Produto       *Produto        `gorm:"foreignKey:ProdutoID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"produto,omitempty"`
	Quantidade    decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"quantidade"`
	PrecoUnitario decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"precoUnitario"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(22,5);not null" json:"subtotal"`
	Observacoes   *string         `gorm:"type:text" json:"observacoes,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// NewPedidoItem builds a fresh ledger row with its subtotal derived.
func NewPedidoItem(comandaID, produtoID uuid.UUID, quantidade, precoUnitario decimal.Decimal, observacoes *string) PedidoItem {
	item := PedidoItem{
		ComandaID:     comandaID,
		ProdutoID:     produtoID,
		Quantidade:    quantidade.Round(QuantidadeScale),
		PrecoUnitario: precoUnitario.Round(PrecoScale),
		Observacoes:   observacoes,
	}
	item.Recalculate()
	return item
}

// Merge adds quantidade to the row and takes the latest price.
// Observacoes are replaced only when provided.
func (p *PedidoItem) Merge(quantidade, precoUnitario decimal.Decimal, observacoes *string) {
	p.Quantidade = p.Quantidade.Add(quantidade.Round(QuantidadeScale))
	p.PrecoUnitario = precoUnitario.Round(PrecoScale)
	if observacoes != nil {
		p.Observacoes = observacoes
	}
	p.Recalculate()
}

func (p *PedidoItem) Recalculate() {
	p.Subtotal = p.Quantidade.Mul(p.PrecoUnitario)
}

func (p *PedidoItem) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// BeforeSave keeps subtotal consistent at rest whatever path wrote the row.
func (p *PedidoItem) BeforeSave(tx *gorm.DB) error {
	p.Recalculate()
	return nil
}

func (PedidoItem) TableName() string {
	return "pedido_itens"
}
