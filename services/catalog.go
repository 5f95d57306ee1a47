package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/utils"
	"gorm.io/gorm"
)

// CatalogReader resolves produto references inside one empresa. Inactive and
// foreign produtos are reported exactly like missing ones.
type CatalogReader interface {
	ResolveItem(ctx context.Context, empresaID, produtoID uuid.UUID) (*models.Produto, error)
	ResolveMany(ctx context.Context, empresaID uuid.UUID, produtoIDs []uuid.UUID) (map[uuid.UUID]models.Produto, []uuid.UUID, error)
}

type Catalog struct {
	db *gorm.DB
}

func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

func (c *Catalog) ResolveItem(ctx context.Context, empresaID, produtoID uuid.UUID) (*models.Produto, error) {
	var produto models.Produto
	err := c.db.WithContext(ctx).
		Where("id = ? AND empresa_id = ? AND ativo = ?", produtoID, empresaID, true).
		First(&produto).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NewAppError(utils.CodeNotFound, "produto não encontrado").
			WithDetails(map[string]any{"produtoId": produtoID})
	}
	if err != nil {
		return nil, utils.WrapAppError(utils.CodeInternal, err, "falha ao consultar produto")
	}
	return &produto, nil
}

// ResolveMany looks up every id in one query. The second return lists the ids
// that could not be resolved, in request order and without repetition.
func (c *Catalog) ResolveMany(ctx context.Context, empresaID uuid.UUID, produtoIDs []uuid.UUID) (map[uuid.UUID]models.Produto, []uuid.UUID, error) {
	found := make(map[uuid.UUID]models.Produto, len(produtoIDs))
	if len(produtoIDs) == 0 {
		return found, nil, nil
	}

	var produtos []models.Produto
	err := c.db.WithContext(ctx).
		Where("id IN ? AND empresa_id = ? AND ativo = ?", produtoIDs, empresaID, true).
		Find(&produtos).Error
	if err != nil {
		return nil, nil, utils.WrapAppError(utils.CodeInternal, err, "falha ao consultar produtos")
	}
	for _, p := range produtos {
		found[p.ID] = p
	}

	var missing []uuid.UUID
	seen := make(map[uuid.UUID]struct{})
	for _, id := range produtoIDs {
		if _, ok := found[id]; ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		missing = append(missing, id)
	}
	return found, missing, nil
}
