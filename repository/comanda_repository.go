package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yeremiapane/comanda-app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the persistence boundary of the comanda aggregate. Every lookup is
// filtered by empresa, so a foreign comanda reads exactly like a missing one.
type Store interface {
	Transaction(ctx context.Context, fn func(store Store) error) error

	FindTabByIDForTenant(ctx context.Context, empresaID, comandaID uuid.UUID, forUpdate bool) (*models.Comanda, error)
	LoadTab(ctx context.Context, empresaID, comandaID uuid.UUID) (*models.Comanda, error)
	ListTabs(ctx context.Context, empresaID uuid.UUID, filter ListFilter) ([]models.Comanda, error)
	NumeroTaken(ctx context.Context, empresaID uuid.UUID, numero string, exceptID uuid.UUID) (bool, error)
	CreateTab(ctx context.Context, comanda *models.Comanda) error
	SaveTab(ctx context.Context, comanda *models.Comanda) error
	DeleteTab(ctx context.Context, empresaID, comandaID uuid.UUID) error
	UsuarioBelongsTo(ctx context.Context, empresaID, usuarioID uuid.UUID) (bool, error)

	FindLineItem(ctx context.Context, comandaID, produtoID uuid.UUID) (*models.PedidoItem, error)
	FindLineItemForTenant(ctx context.Context, empresaID, itemID uuid.UUID) (*models.PedidoItem, error)
	LoadLineItem(ctx context.Context, empresaID, itemID uuid.UUID) (*models.PedidoItem, error)
	UpsertLineItem(ctx context.Context, item *models.PedidoItem) (bool, error)
	DeleteLineItem(ctx context.Context, itemID uuid.UUID) error
}

type ListFilter struct {
	Status *models.ComandaStatus
}

type ComandaRepository struct {
	db *gorm.DB
}

func NewComandaRepository(db *gorm.DB) *ComandaRepository {
	return &ComandaRepository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *ComandaRepository) WithTx(tx *gorm.DB) *ComandaRepository {
	if tx == nil {
		return r
	}
	return &ComandaRepository{db: tx}
}

func (r *ComandaRepository) conn(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return r.db
	}
	return r.db.WithContext(ctx)
}

// Transaction runs fn inside a database transaction; any error rolls back
// every write fn made.
func (r *ComandaRepository) Transaction(ctx context.Context, fn func(store Store) error) error {
	return r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

func (r *ComandaRepository) FindTabByIDForTenant(ctx context.Context, empresaID, comandaID uuid.UUID, forUpdate bool) (*models.Comanda, error) {
	q := r.conn(ctx)
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var comanda models.Comanda
	err := q.Where("id = ? AND empresa_id = ?", comandaID, empresaID).First(&comanda).Error
	if err != nil {
		return nil, translate(err)
	}
	return &comanda, nil
}

func preloadPedidos(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Pedidos", func(db *gorm.DB) *gorm.DB {
			return db.Order("pedido_itens.created_at ASC, pedido_itens.id ASC")
		}).
		Preload("Pedidos.Produto")
}

// LoadTab returns the comanda with its pedidos and their produto snapshots.
func (r *ComandaRepository) LoadTab(ctx context.Context, empresaID, comandaID uuid.UUID) (*models.Comanda, error) {
	var comanda models.Comanda
	err := preloadPedidos(r.conn(ctx)).
		Where("id = ? AND empresa_id = ?", comandaID, empresaID).
		First(&comanda).Error
	if err != nil {
		return nil, translate(err)
	}
	return &comanda, nil
}

func (r *ComandaRepository) ListTabs(ctx context.Context, empresaID uuid.UUID, filter ListFilter) ([]models.Comanda, error) {
	q := preloadPedidos(r.conn(ctx)).Where("empresa_id = ?", empresaID)
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	var comandas []models.Comanda
	if err := q.Order("data DESC, numero ASC").Find(&comandas).Error; err != nil {
		return nil, translate(err)
	}
	return comandas, nil
}

func (r *ComandaRepository) NumeroTaken(ctx context.Context, empresaID uuid.UUID, numero string, exceptID uuid.UUID) (bool, error) {
	q := r.conn(ctx).Model(&models.Comanda{}).Where("empresa_id = ? AND numero = ?", empresaID, numero)
	if exceptID != uuid.Nil {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

// CreateTab inserts the comanda together with any pedidos it already carries.
func (r *ComandaRepository) CreateTab(ctx context.Context, comanda *models.Comanda) error {
	return translate(r.conn(ctx).Omit("Usuario", "Pedidos.Produto").Create(comanda).Error)
}

func (r *ComandaRepository) SaveTab(ctx context.Context, comanda *models.Comanda) error {
	comanda.UpdatedAt = time.Now()
	return translate(r.conn(ctx).Omit(clause.Associations).Save(comanda).Error)
}

// DeleteTab removes the comanda and its pedidos. The pedidos are deleted
// explicitly so the cascade does not depend on driver foreign key support.
// Callers run it inside Transaction.
func (r *ComandaRepository) DeleteTab(ctx context.Context, empresaID, comandaID uuid.UUID) error {
	if _, err := r.FindTabByIDForTenant(ctx, empresaID, comandaID, true); err != nil {
		return err
	}
	tx := r.conn(ctx)
	if err := tx.Where("comanda_id = ?", comandaID).Delete(&models.PedidoItem{}).Error; err != nil {
		return translate(err)
	}
	res := tx.Where("id = ? AND empresa_id = ?", comandaID, empresaID).Delete(&models.Comanda{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UsuarioBelongsTo reports whether the usuario exists inside the empresa.
func (r *ComandaRepository) UsuarioBelongsTo(ctx context.Context, empresaID, usuarioID uuid.UUID) (bool, error) {
	var count int64
	err := r.conn(ctx).Model(&models.Usuario{}).
		Where("id = ? AND empresa_id = ?", usuarioID, empresaID).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

// FindLineItem returns the ledger row of a (comanda, produto) pair, locking it
// when running inside a transaction on drivers that support row locks.
func (r *ComandaRepository) FindLineItem(ctx context.Context, comandaID, produtoID uuid.UUID) (*models.PedidoItem, error) {
	var item models.PedidoItem
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("comanda_id = ? AND produto_id = ?", comandaID, produtoID).
		First(&item).Error
	if err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (r *ComandaRepository) FindLineItemForTenant(ctx context.Context, empresaID, itemID uuid.UUID) (*models.PedidoItem, error) {
	var item models.PedidoItem
	err := r.conn(ctx).
		Joins("JOIN comandas ON comandas.id = pedido_itens.comanda_id").
		Where("pedido_itens.id = ? AND comandas.empresa_id = ?", itemID, empresaID).
		First(&item).Error
	if err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

// LoadLineItem returns the pedido item with its produto snapshot.
func (r *ComandaRepository) LoadLineItem(ctx context.Context, empresaID, itemID uuid.UUID) (*models.PedidoItem, error) {
	var item models.PedidoItem
	err := r.conn(ctx).
		Preload("Produto").
		Joins("JOIN comandas ON comandas.id = pedido_itens.comanda_id").
		Where("pedido_itens.id = ? AND comandas.empresa_id = ?", itemID, empresaID).
		First(&item).Error
	if err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

// UpsertLineItem inserts a row without an id and saves one that has it.
// The boolean reports whether a new row was created.
func (r *ComandaRepository) UpsertLineItem(ctx context.Context, item *models.PedidoItem) (bool, error) {
	q := r.conn(ctx).Omit(clause.Associations)
	if item.ID == uuid.Nil {
		if err := q.Create(item).Error; err != nil {
			item.ID = uuid.Nil
			return false, translate(err)
		}
		return true, nil
	}
	item.UpdatedAt = time.Now()
	if err := q.Save(item).Error; err != nil {
		return false, translate(err)
	}
	return false, nil
}

func (r *ComandaRepository) DeleteLineItem(ctx context.Context, itemID uuid.UUID) error {
	res := r.conn(ctx).Where("id = ?", itemID).Delete(&models.PedidoItem{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
