package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/services"
	"github.com/yeremiapane/comanda-app/utils"
)

func TestCreateDefaults(t *testing.T) {
	e := newEnv(t)
	before := time.Now().Add(-time.Second)

	c, err := e.comandas.Create(context.Background(), e.fx.Empresa.ID, services.CreateComandaInput{Numero: " 12 "})
	require.NoError(t, err)
	assert.Equal(t, "12", c.Numero)
	assert.Equal(t, models.StatusAberta, c.Status)
	assert.Equal(t, e.fx.Empresa.ID, c.EmpresaID)
	assert.True(t, c.Data.After(before))
	assert.True(t, c.Total.IsZero())
	assert.Equal(t, []string{services.EventComandaUpdate}, e.events.types())
}

func TestCreateWithPedidosMergesDuplicates(t *testing.T) {
	e := newEnv(t)
	usuario := e.fx.Usuario.ID

	c, err := e.comandas.Create(context.Background(), e.fx.Empresa.ID, services.CreateComandaInput{
		Numero:    "mesa-4",
		Status:    "pendente",
		UsuarioID: &usuario,
		Pedidos: []services.PedidoInput{
			{ProdutoID: e.fx.Pizza.ID, Quantidade: dec("1")},
			{ProdutoID: e.fx.Cerveja.ID, Quantidade: dec("2")},
			{ProdutoID: e.fx.Pizza.ID, Quantidade: dec("1"), Observacoes: strPtr("metade calabresa")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendente, c.Status)
	require.Len(t, c.Pedidos, 2)

	assert.Equal(t, e.fx.Pizza.ID, c.Pedidos[0].ProdutoID)
	assert.True(t, c.Pedidos[0].Quantidade.Equal(dec("2")))
	assert.Equal(t, "metade calabresa", *c.Pedidos[0].Observacoes)
	require.NotNil(t, c.Pedidos[0].Produto)
	assert.Equal(t, "Pizza", c.Pedidos[0].Produto.Nome)

	assert.Equal(t, e.fx.Cerveja.ID, c.Pedidos[1].ProdutoID)
	assert.True(t, c.Total.Equal(dec("101")))
}

func TestCreateListsEveryMissingProduto(t *testing.T) {
	e := newEnv(t)
	missing := uuid.New()

	_, err := e.comandas.Create(context.Background(), e.fx.Empresa.ID, services.CreateComandaInput{
		Numero: "1",
		Pedidos: []services.PedidoInput{
			{ProdutoID: e.fx.Cerveja.ID, Quantidade: dec("1")},
			{ProdutoID: missing, Quantidade: dec("1")},
			{ProdutoID: e.fx.Estranho.ID, Quantidade: dec("1")},
			{ProdutoID: e.fx.Inativo.ID, Quantidade: dec("1")},
		},
	})
	require.ErrorIs(t, err, utils.ErrValidation)

	appErr := utils.AsAppError(err)
	details, ok := appErr.Details.(map[string]any)
	require.True(t, ok)
	assert.ElementsMatch(t, []uuid.UUID{missing, e.fx.Estranho.ID, e.fx.Inativo.ID}, details["produtosNaoEncontrados"])

	var count int64
	require.NoError(t, e.db.Model(&models.Comanda{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateAccumulatesValidationErrors(t *testing.T) {
	e := newEnv(t)

	_, err := e.comandas.Create(context.Background(), e.fx.Empresa.ID, services.CreateComandaInput{
		Numero: "",
		Status: "PAGA",
		Pedidos: []services.PedidoInput{
			{ProdutoID: uuid.Nil, Quantidade: dec("0")},
		},
	})
	require.ErrorIs(t, err, utils.ErrValidation)
	details := utils.AsAppError(err).Details.(map[string]any)
	assert.Len(t, details["erros"], 4)
}

func TestCreateRejectsDuplicateNumeroPerTenant(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.comandas.Create(ctx, e.fx.Empresa.ID, services.CreateComandaInput{Numero: "5"})
	require.NoError(t, err)

	_, err = e.comandas.Create(ctx, e.fx.Empresa.ID, services.CreateComandaInput{Numero: "5"})
	assert.ErrorIs(t, err, utils.ErrConflict)

	_, err = e.comandas.Create(ctx, e.fx.Outra.ID, services.CreateComandaInput{Numero: "5"})
	assert.NoError(t, err)
}

func TestTransitionGuard(t *testing.T) {
	statuses := models.ComandaStatuses()
	allowed := map[string]bool{
		"ABERTA->PENDENTE":    true,
		"ABERTA->FECHADA":     true,
		"ABERTA->CANCELADA":   true,
		"PENDENTE->ABERTA":    true,
		"PENDENTE->FECHADA":   true,
		"PENDENTE->CANCELADA": true,
		"ABERTA->ABERTA":      true,
		"PENDENTE->PENDENTE":  true,
	}

	e := newEnv(t)
	ctx := context.Background()
	n := 0
	for _, from := range statuses {
		for _, to := range statuses {
			edge := fmt.Sprintf("%s->%s", from, to)
			t.Run(edge, func(t *testing.T) {
				n++
				c, err := e.comandas.Create(ctx, e.fx.Empresa.ID, services.CreateComandaInput{
					Numero: fmt.Sprintf("t%d", n),
					Status: string(from),
				})
				require.NoError(t, err)

				got, err := e.comandas.Transition(ctx, e.fx.Empresa.ID, c.ID, string(to))
				if allowed[edge] {
					require.NoError(t, err)
					assert.Equal(t, to, got.Status)
					return
				}
				assert.ErrorIs(t, err, utils.ErrInvalidTransition)
				stored, err := e.comandas.Get(ctx, e.fx.Empresa.ID, c.ID)
				require.NoError(t, err)
				assert.Equal(t, from, stored.Status)
			})
		}
	}
}

func TestTransitionValidationAndTenancy(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := openComanda(t, e, "1")

	_, err := e.comandas.Transition(ctx, e.fx.Empresa.ID, c.ID, "PAGA")
	assert.ErrorIs(t, err, utils.ErrValidation)

	_, err = e.comandas.Transition(ctx, e.fx.Outra.ID, c.ID, "FECHADA")
	assert.ErrorIs(t, err, utils.ErrNotFound)

	got, err := e.comandas.Transition(ctx, e.fx.Empresa.ID, c.ID, "fechada")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFechada, got.Status)
}

func TestGetAndListAreTenantScoped(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := openComanda(t, e, "1")
	_, err := e.comandas.Create(ctx, e.fx.Outra.ID, services.CreateComandaInput{Numero: "1"})
	require.NoError(t, err)

	_, err = e.comandas.Get(ctx, e.fx.Outra.ID, c.ID)
	assert.ErrorIs(t, err, utils.ErrNotFound)

	mine, err := e.comandas.List(ctx, e.fx.Empresa.ID, services.ListFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, c.ID, mine[0].ID)

	fechadas, err := e.comandas.List(ctx, e.fx.Empresa.ID, services.ListFilter{Status: "FECHADA"})
	require.NoError(t, err)
	assert.Empty(t, fechadas)

	_, err = e.comandas.List(ctx, e.fx.Empresa.ID, services.ListFilter{Status: "nope"})
	assert.ErrorIs(t, err, utils.ErrValidation)
}

func TestDeleteCascades(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := openComanda(t, e, "1")
	_, _, err := e.itens.Add(ctx, e.fx.Empresa.ID, c.ID, services.AddInput{ProdutoID: e.fx.Pizza.ID, Quantidade: dec("1")})
	require.NoError(t, err)

	assert.ErrorIs(t, e.comandas.Delete(ctx, e.fx.Outra.ID, c.ID), utils.ErrNotFound)
	require.NoError(t, e.comandas.Delete(ctx, e.fx.Empresa.ID, c.ID))

	_, err = e.comandas.Get(ctx, e.fx.Empresa.ID, c.ID)
	assert.ErrorIs(t, err, utils.ErrNotFound)

	var count int64
	require.NoError(t, e.db.Model(&models.PedidoItem{}).Where("comanda_id = ?", c.ID).Count(&count).Error)
	assert.Zero(t, count)
	assert.Contains(t, e.events.types(), services.EventComandaDelete)
}

func TestUpdateDetails(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := openComanda(t, e, "1")
	openComanda(t, e, "2")

	numero := "2"
	_, err := e.comandas.UpdateDetails(ctx, e.fx.Empresa.ID, c.ID, services.DetailsInput{Numero: &numero})
	assert.ErrorIs(t, err, utils.ErrConflict)

	blank := "  "
	_, err = e.comandas.UpdateDetails(ctx, e.fx.Empresa.ID, c.ID, services.DetailsInput{Numero: &blank})
	assert.ErrorIs(t, err, utils.ErrValidation)

	numero = "1A"
	data := time.Date(2024, 1, 2, 20, 0, 0, 0, time.UTC)
	usuario := e.fx.Usuario.ID
	got, err := e.comandas.UpdateDetails(ctx, e.fx.Empresa.ID, c.ID, services.DetailsInput{Numero: &numero, Data: &data, UsuarioID: &usuario})
	require.NoError(t, err)
	assert.Equal(t, "1A", got.Numero)
	assert.True(t, got.Data.Equal(data))
	require.NotNil(t, got.UsuarioID)
	assert.Equal(t, usuario, *got.UsuarioID)

	_, err = e.comandas.UpdateDetails(ctx, e.fx.Outra.ID, c.ID, services.DetailsInput{Numero: &numero})
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestUsuarioMustBelongToEmpresa(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	estranho := models.Usuario{Nome: "Ana", Email: "ana@outra.com", Senha: "x", Papel: models.PapelGarcom, EmpresaID: e.fx.Outra.ID}
	require.NoError(t, e.db.Create(&estranho).Error)
	inexistente := uuid.New()

	for name, usuarioID := range map[string]uuid.UUID{"outra empresa": estranho.ID, "inexistente": inexistente} {
		t.Run(name, func(t *testing.T) {
			id := usuarioID
			_, err := e.comandas.Create(ctx, e.fx.Empresa.ID, services.CreateComandaInput{Numero: "7", UsuarioID: &id})
			assert.ErrorIs(t, err, utils.ErrValidation)
		})
	}

	var count int64
	require.NoError(t, e.db.Model(&models.Comanda{}).Count(&count).Error)
	assert.Zero(t, count)

	c := openComanda(t, e, "8")
	id := estranho.ID
	_, err := e.comandas.UpdateDetails(ctx, e.fx.Empresa.ID, c.ID, services.DetailsInput{UsuarioID: &id})
	assert.ErrorIs(t, err, utils.ErrValidation)
	id = inexistente
	_, err = e.comandas.UpdateDetails(ctx, e.fx.Empresa.ID, c.ID, services.DetailsInput{UsuarioID: &id})
	assert.ErrorIs(t, err, utils.ErrValidation)

	got, err := e.comandas.Get(ctx, e.fx.Empresa.ID, c.ID)
	require.NoError(t, err)
	assert.Nil(t, got.UsuarioID)

	proprio := e.fx.Usuario.ID
	got, err = e.comandas.UpdateDetails(ctx, e.fx.Empresa.ID, c.ID, services.DetailsInput{UsuarioID: &proprio})
	require.NoError(t, err)
	require.NotNil(t, got.UsuarioID)
	assert.Equal(t, proprio, *got.UsuarioID)
}
