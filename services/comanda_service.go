package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/comanda-app/metrics"
	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/repository"
	"github.com/yeremiapane/comanda-app/utils"
	"go.uber.org/multierr"
)

type PedidoInput struct {
	ProdutoID     uuid.UUID
	Quantidade    decimal.Decimal
	PrecoUnitario *decimal.Decimal
	Observacoes   *string
}

type CreateComandaInput struct {
	Numero    string
	Status    string
	UsuarioID *uuid.UUID
	Data      *time.Time
	Pedidos   []PedidoInput
}

// DetailsInput changes the descriptive fields of a comanda. Status has its
// own operation.
type DetailsInput struct {
	Numero    *string
	UsuarioID *uuid.UUID
	Data      *time.Time
}

type ListFilter struct {
	Status string
}

type ComandaServiceParams struct {
	Store   repository.Store
	Catalog CatalogReader
	Events  EventPublisher
	Metrics *metrics.ComandaMetrics
}

type ComandaService struct {
	store   repository.Store
	catalog CatalogReader
	events  EventPublisher
	metrics *metrics.ComandaMetrics
}

func NewComandaService(p ComandaServiceParams) (*ComandaService, error) {
	if p.Store == nil {
		return nil, errors.New("comanda service: store is required")
	}
	if p.Catalog == nil {
		return nil, errors.New("comanda service: catalog is required")
	}
	if p.Events == nil {
		p.Events = noopPublisher{}
	}
	return &ComandaService{
		store:   p.Store,
		catalog: p.Catalog,
		events:  p.Events,
		metrics: p.Metrics,
	}, nil
}

func validationError(err error) *utils.AppError {
	msgs := make([]string, 0)
	for _, e := range multierr.Errors(err) {
		msgs = append(msgs, e.Error())
	}
	return utils.WrapAppError(utils.CodeValidation, err, "dados inválidos").
		WithDetails(map[string]any{"erros": msgs})
}

func numeroConflict(numero string) *utils.AppError {
	return utils.NewAppError(utils.CodeConflict, "já existe uma comanda com este número").
		WithDetails(map[string]any{"numero": numero})
}

func usuarioNotFound(usuarioID uuid.UUID) *utils.AppError {
	return utils.NewAppError(utils.CodeValidation, "usuário não encontrado").
		WithDetails(map[string]any{"usuarioId": usuarioID})
}

// checkUsuario accepts an empty reference or a usuario of the same empresa.
func checkUsuario(ctx context.Context, tx repository.Store, empresaID uuid.UUID, usuarioID *uuid.UUID) error {
	if usuarioID == nil {
		return nil
	}
	ok, err := tx.UsuarioBelongsTo(ctx, empresaID, *usuarioID)
	if err != nil {
		return err
	}
	if !ok {
		return usuarioNotFound(*usuarioID)
	}
	return nil
}

// Create opens a comanda, optionally with its first pedidos. The comanda and
// all pedidos are written in one transaction.
func (s *ComandaService) Create(ctx context.Context, empresaID uuid.UUID, in CreateComandaInput) (*models.Comanda, error) {
	fields := utils.TenantFields(empresaID.String(), "")

	var errs error
	numero := strings.TrimSpace(in.Numero)
	if numero == "" {
		errs = multierr.Append(errs, errors.New("numero é obrigatório"))
	}
	status := models.StatusAberta
	if in.Status != "" {
		parsed, ok := models.ParseComandaStatus(in.Status)
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("status %q inválido", in.Status))
		}
		status = parsed
	}
	ids := make([]uuid.UUID, 0, len(in.Pedidos))
	for i, p := range in.Pedidos {
		if p.ProdutoID == uuid.Nil {
			errs = multierr.Append(errs, fmt.Errorf("pedidos[%d].produtoId é obrigatório", i))
		}
		if _, err := validQuantidade(p.Quantidade); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("pedidos[%d].quantidade deve ser maior que zero", i))
		}
		ids = append(ids, p.ProdutoID)
	}
	if errs != nil {
		return nil, validationError(errs)
	}

	produtos, missing, err := s.catalog.ResolveMany(ctx, empresaID, ids)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, utils.NewAppError(utils.CodeValidation, "produtos não encontrados").
			WithDetails(map[string]any{"produtosNaoEncontrados": missing})
	}

	comanda := &models.Comanda{
		Numero:    numero,
		Status:    status,
		EmpresaID: empresaID,
		UsuarioID: in.UsuarioID,
	}
	if in.Data != nil {
		comanda.Data = *in.Data
	}
	comanda.Pedidos = consolidatePedidos(in.Pedidos, produtos)

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := checkUsuario(ctx, tx, empresaID, in.UsuarioID); err != nil {
			return err
		}
		taken, err := tx.NumeroTaken(ctx, empresaID, numero, uuid.Nil)
		if err != nil {
			return err
		}
		if taken {
			return numeroConflict(numero)
		}
		return tx.CreateTab(ctx, comanda)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, numeroConflict(numero)
	}
	if err != nil {
		return nil, classify(err, comandaNotFound, fields)
	}

	created, err := s.store.LoadTab(ctx, empresaID, comanda.ID)
	if err != nil {
		return nil, classify(err, comandaNotFound, fields)
	}
	created.RefreshTotal()
	s.events.Publish(empresaID, EventComandaUpdate, created)
	utils.InfoLogger.WithFields(utils.TenantFields(empresaID.String(), created.ID.String())).
		WithField("pedidos", len(created.Pedidos)).Info("comanda criada")
	return created, nil
}

// consolidatePedidos folds repeated produtos into one row each, keeping the
// order of first appearance. Later entries win for price and observacoes.
func consolidatePedidos(in []PedidoInput, produtos map[uuid.UUID]models.Produto) []models.PedidoItem {
	rows := make([]models.PedidoItem, 0, len(in))
	index := make(map[uuid.UUID]int, len(in))
	for _, p := range in {
		produto := produtos[p.ProdutoID]
		preco := effectivePrice(produto.Preco, p.PrecoUnitario)
		if i, ok := index[p.ProdutoID]; ok {
			rows[i].Merge(p.Quantidade, preco, p.Observacoes)
			continue
		}
		index[p.ProdutoID] = len(rows)
		rows = append(rows, models.NewPedidoItem(uuid.Nil, p.ProdutoID, p.Quantidade, preco, p.Observacoes))
	}
	// Distinct created_at values keep the insertion order stable on read.
	now := time.Now()
	for i := range rows {
		rows[i].CreatedAt = now.Add(time.Duration(i) * time.Microsecond)
	}
	return rows
}

// Transition moves the comanda along the status graph. Asking for the
// current status of an open comanda succeeds without writing.
func (s *ComandaService) Transition(ctx context.Context, empresaID, comandaID uuid.UUID, status string) (*models.Comanda, error) {
	fields := utils.TenantFields(empresaID.String(), comandaID.String())

	next, ok := models.ParseComandaStatus(status)
	if !ok {
		return nil, utils.NewAppError(utils.CodeValidation, "status inválido").
			WithDetails(map[string]any{"status": status, "permitidos": models.ComandaStatuses()})
	}

	var (
		from    models.ComandaStatus
		changed bool
	)
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		comanda, err := tx.FindTabByIDForTenant(ctx, empresaID, comandaID, true)
		if err != nil {
			return err
		}
		from = comanda.Status
		if from == next && !from.IsTerminal() {
			return nil
		}
		if !from.CanTransitionTo(next) {
			return utils.NewAppError(utils.CodeInvalidTransition, "transição de status não permitida").
				WithDetails(map[string]any{"de": from, "para": next})
		}
		comanda.Status = next
		changed = true
		return tx.SaveTab(ctx, comanda)
	})
	if err != nil {
		return nil, classify(err, comandaNotFound, fields)
	}

	comanda, err := s.store.LoadTab(ctx, empresaID, comandaID)
	if err != nil {
		return nil, classify(err, comandaNotFound, fields)
	}
	comanda.RefreshTotal()
	if changed {
		s.metrics.IncTransition(string(from), string(next))
		s.events.Publish(empresaID, EventComandaUpdate, comanda)
		utils.InfoLogger.WithFields(fields).Infof("comanda %s -> %s", from, next)
	}
	return comanda, nil
}

func (s *ComandaService) Get(ctx context.Context, empresaID, comandaID uuid.UUID) (*models.Comanda, error) {
	comanda, err := s.store.LoadTab(ctx, empresaID, comandaID)
	if err != nil {
		return nil, classify(err, comandaNotFound, utils.TenantFields(empresaID.String(), comandaID.String()))
	}
	comanda.RefreshTotal()
	return comanda, nil
}

func (s *ComandaService) List(ctx context.Context, empresaID uuid.UUID, filter ListFilter) ([]models.Comanda, error) {
	var repoFilter repository.ListFilter
	if filter.Status != "" {
		status, ok := models.ParseComandaStatus(filter.Status)
		if !ok {
			return nil, utils.NewAppError(utils.CodeValidation, "status inválido").
				WithDetails(map[string]any{"status": filter.Status, "permitidos": models.ComandaStatuses()})
		}
		repoFilter.Status = &status
	}

	comandas, err := s.store.ListTabs(ctx, empresaID, repoFilter)
	if err != nil {
		return nil, classify(err, comandaNotFound, utils.TenantFields(empresaID.String(), ""))
	}
	for i := range comandas {
		comandas[i].RefreshTotal()
	}
	return comandas, nil
}

// Delete removes the comanda and every pedido on it.
func (s *ComandaService) Delete(ctx context.Context, empresaID, comandaID uuid.UUID) error {
	fields := utils.TenantFields(empresaID.String(), comandaID.String())
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		return tx.DeleteTab(ctx, empresaID, comandaID)
	})
	if err != nil {
		return classify(err, comandaNotFound, fields)
	}
	s.events.Publish(empresaID, EventComandaDelete, ComandaDeletedEvent{ID: comandaID})
	utils.InfoLogger.WithFields(fields).Info("comanda removida")
	return nil
}

// UpdateDetails patches numero, usuario and data of an open comanda.
func (s *ComandaService) UpdateDetails(ctx context.Context, empresaID, comandaID uuid.UUID, in DetailsInput) (*models.Comanda, error) {
	fields := utils.TenantFields(empresaID.String(), comandaID.String())

	var numero string
	if in.Numero != nil {
		numero = strings.TrimSpace(*in.Numero)
		if numero == "" {
			return nil, utils.NewAppError(utils.CodeValidation, "numero é obrigatório")
		}
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		comanda, err := tx.FindTabByIDForTenant(ctx, empresaID, comandaID, true)
		if err != nil {
			return err
		}
		if !comanda.AcceptsItems() {
			return terminalError(comanda.ID, string(comanda.Status))
		}
		if in.Numero != nil && numero != comanda.Numero {
			taken, err := tx.NumeroTaken(ctx, empresaID, numero, comanda.ID)
			if err != nil {
				return err
			}
			if taken {
				return numeroConflict(numero)
			}
			comanda.Numero = numero
		}
		if in.UsuarioID != nil {
			if err := checkUsuario(ctx, tx, empresaID, in.UsuarioID); err != nil {
				return err
			}
			comanda.UsuarioID = in.UsuarioID
		}
		if in.Data != nil {
			comanda.Data = *in.Data
		}
		return tx.SaveTab(ctx, comanda)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, numeroConflict(numero)
	}
	if err != nil {
		return nil, classify(err, comandaNotFound, fields)
	}

	comanda, err := s.store.LoadTab(ctx, empresaID, comandaID)
	if err != nil {
		return nil, classify(err, comandaNotFound, fields)
	}
	comanda.RefreshTotal()
	s.events.Publish(empresaID, EventComandaUpdate, comanda)
	return comanda, nil
}
