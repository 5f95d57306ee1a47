package services_test

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/comanda-app/database/dbtest"
	"github.com/yeremiapane/comanda-app/repository"
	"github.com/yeremiapane/comanda-app/services"
	"gorm.io/gorm"
)

type publishedEvent struct {
	EmpresaID uuid.UUID
	Type      string
	Payload   any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (r *recordingPublisher) Publish(empresaID uuid.UUID, eventType string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, publishedEvent{EmpresaID: empresaID, Type: eventType, Payload: payload})
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type env struct {
	db       *gorm.DB
	fx       dbtest.Fixture
	store    repository.Store
	events   *recordingPublisher
	comandas *services.ComandaService
	itens    *services.PedidoItemService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := dbtest.New(t)
	fx := dbtest.Seed(t, db)
	return newEnvWithStore(t, db, fx, repository.NewComandaRepository(db))
}

func newEnvWithStore(t *testing.T, db *gorm.DB, fx dbtest.Fixture, store repository.Store) *env {
	t.Helper()
	events := &recordingPublisher{}
	catalog := services.NewCatalog(db)

	comandas, err := services.NewComandaService(services.ComandaServiceParams{
		Store:   store,
		Catalog: catalog,
		Events:  events,
	})
	require.NoError(t, err)

	itens, err := services.NewPedidoItemService(services.PedidoItemServiceParams{
		Store:   store,
		Catalog: catalog,
		Events:  events,
		Retry:   services.RetryPolicy{MaxRetries: 2, BaseDelay: 1},
	})
	require.NoError(t, err)

	return &env{db: db, fx: fx, store: store, events: events, comandas: comandas, itens: itens}
}
