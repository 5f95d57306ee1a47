package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/comanda-app/middlewares"
	"github.com/yeremiapane/comanda-app/services"
	"github.com/yeremiapane/comanda-app/utils"
)

type ComandaController struct {
	Service *services.ComandaService
}

func NewComandaController(svc *services.ComandaService) *ComandaController {
	return &ComandaController{Service: svc}
}

type pedidoRequest struct {
	ProdutoID     uuid.UUID        `json:"produtoId" binding:"required"`
	Quantidade    *decimal.Decimal `json:"quantidade" binding:"required"`
	PrecoUnitario *decimal.Decimal `json:"precoUnitario"`
	Observacoes   *string          `json:"observacoes"`
}

type createComandaRequest struct {
	Numero    string          `json:"numero" binding:"required"`
	Status    string          `json:"status" binding:"omitempty,comanda_status"`
	UsuarioID *uuid.UUID      `json:"usuarioId"`
	Data      *time.Time      `json:"data"`
	Pedidos   []pedidoRequest `json:"pedidos" binding:"omitempty,dive"`
}

type updateComandaRequest struct {
	Numero    *string    `json:"numero"`
	UsuarioID *uuid.UUID `json:"usuarioId"`
	Data      *time.Time `json:"data"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required,comanda_status"`
}

// tenant aborts with 401 when the request carries no empresa.
func tenant(c *gin.Context) (uuid.UUID, bool) {
	empresaID, ok := middlewares.EmpresaID(c)
	if !ok {
		utils.RespondAppError(c, utils.NewAppError(utils.CodeUnauthorized, "empresa não identificada"))
		return uuid.Nil, false
	}
	return empresaID, true
}

// GET /api/comandas?status=
func (cc *ComandaController) GetAllComandas(c *gin.Context) {
	empresaID, ok := tenant(c)
	if !ok {
		return
	}
	comandas, err := cc.Service.List(c.Request.Context(), empresaID, services.ListFilter{Status: c.Query("status")})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Lista de comandas", comandas)
}

func (cc *ComandaController) CreateComanda(c *gin.Context) {
	empresaID, ok := tenant(c)
	if !ok {
		return
	}
	var body createComandaRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondAppError(c, bindError(err))
		return
	}

	in := services.CreateComandaInput{
		Numero:    body.Numero,
		Status:    body.Status,
		UsuarioID: body.UsuarioID,
		Data:      body.Data,
		Pedidos:   make([]services.PedidoInput, 0, len(body.Pedidos)),
	}
	for _, p := range body.Pedidos {
		in.Pedidos = append(in.Pedidos, services.PedidoInput{
			ProdutoID:     p.ProdutoID,
			Quantidade:    *p.Quantidade,
			PrecoUnitario: p.PrecoUnitario,
			Observacoes:   p.Observacoes,
		})
	}

	comanda, err := cc.Service.Create(c.Request.Context(), empresaID, in)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Comanda criada", comanda)
}

func (cc *ComandaController) GetComandaByID(c *gin.Context) {
	empresaID, ok := tenant(c)
	if !ok {
		return
	}
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	comanda, err := cc.Service.Get(c.Request.Context(), empresaID, id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Detalhe da comanda", comanda)
}

// PATCH /api/comandas/:id changes numero, usuario or data.
func (cc *ComandaController) UpdateComanda(c *gin.Context) {
	empresaID, ok := tenant(c)
	if !ok {
		return
	}
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var body updateComandaRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondAppError(c, bindError(err))
		return
	}

	comanda, err := cc.Service.UpdateDetails(c.Request.Context(), empresaID, id, services.DetailsInput{
		Numero:    body.Numero,
		UsuarioID: body.UsuarioID,
		Data:      body.Data,
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Comanda atualizada", comanda)
}

func (cc *ComandaController) UpdateComandaStatus(c *gin.Context) {
	empresaID, ok := tenant(c)
	if !ok {
		return
	}
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var body statusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondAppError(c, bindError(err))
		return
	}

	comanda, err := cc.Service.Transition(c.Request.Context(), empresaID, id, body.Status)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Status da comanda atualizado", comanda)
}

func (cc *ComandaController) DeleteComanda(c *gin.Context) {
	empresaID, ok := tenant(c)
	if !ok {
		return
	}
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if err := cc.Service.Delete(c.Request.Context(), empresaID, id); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Comanda removida", gin.H{"id": id})
}
