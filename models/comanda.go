package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ComandaStatus string

const (
	StatusAberta    ComandaStatus = "ABERTA"
	StatusPendente  ComandaStatus = "PENDENTE"
	StatusFechada   ComandaStatus = "FECHADA"
	StatusCancelada ComandaStatus = "CANCELADA"
)

// FECHADA and CANCELADA have no outgoing edges.
var comandaTransitions = map[ComandaStatus][]ComandaStatus{
	StatusAberta:    {StatusPendente, StatusFechada, StatusCancelada},
	StatusPendente:  {StatusAberta, StatusFechada, StatusCancelada},
	StatusFechada:   {},
	StatusCancelada: {},
}

// ComandaStatuses lists every declared status in declaration order.
func ComandaStatuses() []ComandaStatus {
	return []ComandaStatus{StatusAberta, StatusPendente, StatusFechada, StatusCancelada}
}

// ParseComandaStatus accepts the declared values case-insensitively.
func ParseComandaStatus(value string) (ComandaStatus, bool) {
	status := ComandaStatus(strings.ToUpper(strings.TrimSpace(value)))
	return status, status.IsValid()
}

func (s ComandaStatus) IsValid() bool {
	_, ok := comandaTransitions[s]
	return ok
}

func (s ComandaStatus) IsTerminal() bool {
	next, ok := comandaTransitions[s]
	return ok && len(next) == 0
}

func (s ComandaStatus) CanTransitionTo(next ComandaStatus) bool {
	for _, allowed := range comandaTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Comanda is a tab opened for a table or customer. Numero is unique per empresa.
type Comanda struct {
	ID        uuid.UUID       `gorm:"type:char(36);primaryKey" json:"id"`
	Numero    string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_comanda_empresa_numero,priority:2" json:"numero"`
	Status    ComandaStatus   `gorm:"type:varchar(20);not null;default:'ABERTA';index" json:"status"`
	EmpresaID uuid.UUID       `gorm:"type:char(36);not null;uniqueIndex:idx_comanda_empresa_numero,priority:1" json:"empresaId"`
	UsuarioID *uuid.UUID      `gorm:"type:char(36);index" json:"usuarioId,omitempty"`
	Usuario   *Usuario        `gorm:"foreignKey:UsuarioID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"usuario,omitempty"`
	Data      time.Time       `gorm:"not null" json:"data"`
	Pedidos   []PedidoItem    `gorm:"foreignKey:ComandaID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"pedidos"`
	Total     decimal.Decimal `gorm:"-" json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (c *Comanda) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.ID)
	if c.Status == "" {
		c.Status = StatusAberta
	}
	if c.Data.IsZero() {
		c.Data = time.Now()
	}
	return nil
}

// RefreshTotal sums the loaded line items into Total. Total is never persisted.
func (c *Comanda) RefreshTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range c.Pedidos {
		total = total.Add(p.Subtotal)
	}
	c.Total = total
	return total
}

// AcceptsItems reports whether line items may still be added, edited or removed.
func (c *Comanda) AcceptsItems() bool {
	return !c.Status.IsTerminal()
}

func (Comanda) TableName() string {
	return "comandas"
}
