package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/comanda-app/services"
	"github.com/yeremiapane/comanda-app/utils"
)

type PedidoItemController struct {
	Service *services.PedidoItemService
}

func NewPedidoItemController(svc *services.PedidoItemService) *PedidoItemController {
	return &PedidoItemController{Service: svc}
}

type updatePedidoItemRequest struct {
	ProdutoID     *uuid.UUID       `json:"produtoId"`
	Quantidade    *decimal.Decimal `json:"quantidade"`
	PrecoUnitario *decimal.Decimal `json:"precoUnitario"`
	Observacoes   *string          `json:"observacoes"`
}

// POST /api/comandas/:id/itens answers 201 for a new row and 200 when the
// quantity was merged into an existing one.
func (pc *PedidoItemController) AddPedidoItem(c *gin.Context) {
	empresaID, ok := tenant(c)
	if !ok {
		return
	}
	comandaID, err := paramID(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var body pedidoRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondAppError(c, bindError(err))
		return
	}

	item, result, err := pc.Service.Add(c.Request.Context(), empresaID, comandaID, services.AddInput{
		ProdutoID:     body.ProdutoID,
		Quantidade:    *body.Quantidade,
		PrecoUnitario: body.PrecoUnitario,
		Observacoes:   body.Observacoes,
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if result == services.AddMerged {
		utils.RespondJSON(c, http.StatusOK, "Item consolidado na comanda", item)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Item adicionado à comanda", item)
}

func (pc *PedidoItemController) GetPedidoItemByID(c *gin.Context) {
	empresaID, ok := tenant(c)
	if !ok {
		return
	}
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	item, err := pc.Service.Get(c.Request.Context(), empresaID, id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item encontrado", item)
}

// PATCH /api/pedido-itens/:id. A subtotal in the body is ignored.
func (pc *PedidoItemController) UpdatePedidoItem(c *gin.Context) {
	empresaID, ok := tenant(c)
	if !ok {
		return
	}
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var body updatePedidoItemRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondAppError(c, bindError(err))
		return
	}

	item, err := pc.Service.Update(c.Request.Context(), empresaID, id, services.UpdateInput{
		ProdutoID:     body.ProdutoID,
		Quantidade:    body.Quantidade,
		PrecoUnitario: body.PrecoUnitario,
		Observacoes:   body.Observacoes,
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item atualizado", item)
}

func (pc *PedidoItemController) DeletePedidoItem(c *gin.Context) {
	empresaID, ok := tenant(c)
	if !ok {
		return
	}
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if err := pc.Service.Remove(c.Request.Context(), empresaID, id); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item removido", gin.H{"id": id})
}
