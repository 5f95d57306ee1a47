package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/comanda-app/metrics"
	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/repository"
	"github.com/yeremiapane/comanda-app/utils"
)

type AddResult string

const (
	AddCreated AddResult = "created"
	AddMerged  AddResult = "merged"
)

const (
	defaultMergeRetries   uint64 = 3
	defaultMergeBaseDelay        = 10 * time.Millisecond
)

type AddInput struct {
	ProdutoID     uuid.UUID
	Quantidade    decimal.Decimal
	PrecoUnitario *decimal.Decimal
	Observacoes   *string
}

// UpdateInput is a partial update; nil fields are left untouched.
type UpdateInput struct {
	ProdutoID     *uuid.UUID
	Quantidade    *decimal.Decimal
	PrecoUnitario *decimal.Decimal
	Observacoes   *string
}

type RetryPolicy struct {
	MaxRetries uint64
	BaseDelay  time.Duration
}

type PedidoItemServiceParams struct {
	Store   repository.Store
	Catalog CatalogReader
	Locker  PairLocker
	Events  EventPublisher
	Metrics *metrics.ComandaMetrics
	Retry   RetryPolicy
}

// PedidoItemService owns the line-item ledger of every comanda.
type PedidoItemService struct {
	store   repository.Store
	catalog CatalogReader
	locker  PairLocker
	events  EventPublisher
	metrics *metrics.ComandaMetrics
	retry   RetryPolicy
}

func NewPedidoItemService(p PedidoItemServiceParams) (*PedidoItemService, error) {
	if p.Store == nil {
		return nil, errors.New("pedido item service: store is required")
	}
	if p.Catalog == nil {
		return nil, errors.New("pedido item service: catalog is required")
	}
	if p.Locker == nil {
		p.Locker = NewKeyedMutex()
	}
	if p.Events == nil {
		p.Events = noopPublisher{}
	}
	if p.Retry.BaseDelay <= 0 {
		p.Retry.BaseDelay = defaultMergeBaseDelay
	}
	if p.Retry.MaxRetries == 0 {
		p.Retry.MaxRetries = defaultMergeRetries
	}
	return &PedidoItemService{
		store:   p.Store,
		catalog: p.Catalog,
		locker:  p.Locker,
		events:  p.Events,
		metrics: p.Metrics,
		retry:   p.Retry,
	}, nil
}

func validQuantidade(q decimal.Decimal) (decimal.Decimal, error) {
	q = q.Round(models.QuantidadeScale)
	if !q.IsPositive() {
		return q, utils.NewAppError(utils.CodeValidation, "quantidade deve ser maior que zero").
			WithDetails(map[string]any{"quantidade": q.String()})
	}
	return q, nil
}

// effectivePrice prefers a non-negative override, otherwise the catalog price.
func effectivePrice(catalog decimal.Decimal, override *decimal.Decimal) decimal.Decimal {
	if override != nil && !override.IsNegative() {
		return override.Round(models.PrecoScale)
	}
	return catalog
}

// Add records quantidade of a produto on the comanda. A produto already on
// the comanda is merged into its existing row.
func (s *PedidoItemService) Add(ctx context.Context, empresaID, comandaID uuid.UUID, in AddInput) (*models.PedidoItem, AddResult, error) {
	fields := utils.TenantFields(empresaID.String(), comandaID.String())

	if in.ProdutoID == uuid.Nil {
		return nil, "", utils.NewAppError(utils.CodeValidation, "produtoId é obrigatório")
	}
	quantidade, err := validQuantidade(in.Quantidade)
	if err != nil {
		return nil, "", err
	}
	produto, err := s.catalog.ResolveItem(ctx, empresaID, in.ProdutoID)
	if err != nil {
		return nil, "", err
	}
	preco := effectivePrice(produto.Preco, in.PrecoUnitario)

	unlock, err := s.locker.Lock(ctx, pairKey(empresaID, comandaID, produto.ID))
	if err != nil {
		return nil, "", classify(err, comandaNotFound, fields)
	}
	defer unlock()

	var (
		item   *models.PedidoItem
		result AddResult
	)
	backoff := retry.WithMaxRetries(s.retry.MaxRetries, retry.NewExponential(s.retry.BaseDelay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		it, res, err := s.addOnce(ctx, empresaID, comandaID, produto.ID, quantidade, preco, in.Observacoes)
		if errors.Is(err, repository.ErrDuplicate) {
			s.metrics.IncMergeConflict()
			utils.InfoLogger.WithFields(fields).WithField("produto_id", produto.ID).Warn("concurrent insert detected, retrying merge")
			return retry.RetryableError(err)
		}
		if err != nil {
			return err
		}
		item, result = it, res
		return nil
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, "", utils.WrapAppError(utils.CodeMergeConflict, err, "não foi possível consolidar o item")
	}
	if err != nil {
		return nil, "", classify(err, comandaNotFound, fields)
	}

	item.Produto = produto
	s.metrics.IncAdd(string(result))
	s.events.Publish(empresaID, EventPedidoItemUpdate, PedidoItemEvent{
		ComandaID: comandaID,
		Item:      item,
		Resultado: string(result),
	})
	utils.InfoLogger.WithFields(fields).WithField("pedido_item_id", item.ID).Infof("pedido item %s", result)
	return item, result, nil
}

func (s *PedidoItemService) addOnce(ctx context.Context, empresaID, comandaID, produtoID uuid.UUID, quantidade, preco decimal.Decimal, observacoes *string) (*models.PedidoItem, AddResult, error) {
	var (
		item   *models.PedidoItem
		result AddResult
	)
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		comanda, err := tx.FindTabByIDForTenant(ctx, empresaID, comandaID, true)
		if err != nil {
			return err
		}
		if !comanda.AcceptsItems() {
			return terminalError(comanda.ID, string(comanda.Status))
		}

		existing, err := tx.FindLineItem(ctx, comanda.ID, produtoID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			created := models.NewPedidoItem(comanda.ID, produtoID, quantidade, preco, observacoes)
			item, result = &created, AddCreated
		case err != nil:
			return err
		default:
			existing.Merge(quantidade, preco, observacoes)
			item, result = existing, AddMerged
		}

		_, err = tx.UpsertLineItem(ctx, item)
		return err
	})
	if err != nil {
		return nil, "", err
	}
	return item, result, nil
}

// Update applies a partial change to one pedido item. Subtotal is always
// derived from the stored quantidade and price.
func (s *PedidoItemService) Update(ctx context.Context, empresaID, itemID uuid.UUID, in UpdateInput) (*models.PedidoItem, error) {
	fields := utils.TenantFields(empresaID.String(), "")
	fields["pedido_item_id"] = itemID.String()

	var quantidade decimal.Decimal
	if in.Quantidade != nil {
		q, err := validQuantidade(*in.Quantidade)
		if err != nil {
			return nil, err
		}
		quantidade = q
	}
	if in.PrecoUnitario != nil && in.PrecoUnitario.IsNegative() {
		return nil, utils.NewAppError(utils.CodeValidation, "precoUnitario não pode ser negativo")
	}

	current, err := s.store.FindLineItemForTenant(ctx, empresaID, itemID)
	if err != nil {
		return nil, classify(err, pedidoItemNotFound, fields)
	}
	fields["comanda_id"] = current.ComandaID.String()

	produtoID := current.ProdutoID
	var novoProduto *models.Produto
	if in.ProdutoID != nil && *in.ProdutoID != current.ProdutoID {
		novoProduto, err = s.catalog.ResolveItem(ctx, empresaID, *in.ProdutoID)
		if err != nil {
			return nil, err
		}
		produtoID = novoProduto.ID
	}

	unlock, err := lockAll(ctx, s.locker,
		pairKey(empresaID, current.ComandaID, current.ProdutoID),
		pairKey(empresaID, current.ComandaID, produtoID),
	)
	if err != nil {
		return nil, classify(err, pedidoItemNotFound, fields)
	}
	defer unlock()

	var item *models.PedidoItem
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		comanda, err := tx.FindTabByIDForTenant(ctx, empresaID, current.ComandaID, true)
		if err != nil {
			return err
		}
		if !comanda.AcceptsItems() {
			return terminalError(comanda.ID, string(comanda.Status))
		}
		item, err = tx.FindLineItemForTenant(ctx, empresaID, itemID)
		if err != nil {
			return err
		}

		if novoProduto != nil && item.ProdutoID != novoProduto.ID {
			_, err := tx.FindLineItem(ctx, comanda.ID, novoProduto.ID)
			if err == nil {
				return utils.NewAppError(utils.CodeConflict, "a comanda já possui um item para este produto").
					WithDetails(map[string]any{"produtoId": novoProduto.ID})
			}
			if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			item.ProdutoID = novoProduto.ID
			item.PrecoUnitario = novoProduto.Preco
		}
		if in.Quantidade != nil {
			item.Quantidade = quantidade
		}
		if in.PrecoUnitario != nil {
			item.PrecoUnitario = in.PrecoUnitario.Round(models.PrecoScale)
		}
		if in.Observacoes != nil {
			item.Observacoes = in.Observacoes
		}
		item.Recalculate()

		_, err = tx.UpsertLineItem(ctx, item)
		return err
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, utils.WrapAppError(utils.CodeConflict, err, "a comanda já possui um item para este produto")
	}
	if err != nil {
		return nil, classify(err, pedidoItemNotFound, fields)
	}

	if novoProduto != nil {
		item.Produto = novoProduto
	} else if produto, err := s.catalog.ResolveItem(ctx, empresaID, item.ProdutoID); err == nil {
		item.Produto = produto
	}
	s.events.Publish(empresaID, EventPedidoItemUpdate, PedidoItemEvent{
		ComandaID: item.ComandaID,
		Item:      item,
		Resultado: "updated",
	})
	return item, nil
}

func (s *PedidoItemService) Get(ctx context.Context, empresaID, itemID uuid.UUID) (*models.PedidoItem, error) {
	item, err := s.store.LoadLineItem(ctx, empresaID, itemID)
	if err != nil {
		fields := utils.TenantFields(empresaID.String(), "")
		fields["pedido_item_id"] = itemID.String()
		return nil, classify(err, pedidoItemNotFound, fields)
	}
	return item, nil
}

// Remove deletes one pedido item. The comanda status is not affected.
func (s *PedidoItemService) Remove(ctx context.Context, empresaID, itemID uuid.UUID) error {
	fields := utils.TenantFields(empresaID.String(), "")
	fields["pedido_item_id"] = itemID.String()

	current, err := s.store.FindLineItemForTenant(ctx, empresaID, itemID)
	if err != nil {
		return classify(err, pedidoItemNotFound, fields)
	}

	unlock, err := s.locker.Lock(ctx, pairKey(empresaID, current.ComandaID, current.ProdutoID))
	if err != nil {
		return classify(err, pedidoItemNotFound, fields)
	}
	defer unlock()

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		comanda, err := tx.FindTabByIDForTenant(ctx, empresaID, current.ComandaID, true)
		if err != nil {
			return err
		}
		if !comanda.AcceptsItems() {
			return terminalError(comanda.ID, string(comanda.Status))
		}
		return tx.DeleteLineItem(ctx, itemID)
	})
	if err != nil {
		return classify(err, pedidoItemNotFound, fields)
	}

	s.events.Publish(empresaID, EventPedidoItemDelete, PedidoItemDeletedEvent{
		ComandaID: current.ComandaID,
		ID:        itemID,
	})
	return nil
}
