package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/comanda-app/repository"
	"github.com/yeremiapane/comanda-app/utils"
)

func comandaNotFound() *utils.AppError {
	return utils.NewAppError(utils.CodeNotFound, "comanda não encontrada")
}

func pedidoItemNotFound() *utils.AppError {
	return utils.NewAppError(utils.CodeNotFound, "item não encontrado")
}

// classify turns repository and context errors into AppErrors. Anything not
// already classified is logged and reported as internal.
func classify(err error, notFound func() *utils.AppError, fields logrus.Fields) error {
	if err == nil {
		return nil
	}
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return notFound()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return utils.WrapAppError(utils.CodeInternal, err, "operação cancelada")
	}
	utils.ErrorLogger.WithFields(fields).WithError(err).Error("persistence failure")
	return utils.WrapAppError(utils.CodeInternal, err, "falha ao acessar o banco de dados")
}

func terminalError(comandaID uuid.UUID, status string) *utils.AppError {
	return utils.NewAppError(utils.CodeInvalidTransition, "comanda encerrada não aceita alterações").
		WithDetails(map[string]any{"comandaId": comandaID, "status": status})
}
