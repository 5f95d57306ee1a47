package services

import "github.com/google/uuid"

const (
	EventComandaUpdate    = "comanda_update"
	EventComandaDelete    = "comanda_delete"
	EventPedidoItemUpdate = "pedido_item_update"
	EventPedidoItemDelete = "pedido_item_delete"
)

// EventPublisher fans tab changes out to listeners of one empresa.
type EventPublisher interface {
	Publish(empresaID uuid.UUID, eventType string, payload any)
}

type noopPublisher struct{}

func (noopPublisher) Publish(uuid.UUID, string, any) {}

type PedidoItemEvent struct {
	ComandaID uuid.UUID `json:"comandaId"`
	Item      any       `json:"item"`
	Resultado string    `json:"resultado"`
}

type PedidoItemDeletedEvent struct {
	ComandaID uuid.UUID `json:"comandaId"`
	ID        uuid.UUID `json:"id"`
}

type ComandaDeletedEvent struct {
	ID uuid.UUID `json:"id"`
}
