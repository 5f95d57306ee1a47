package controllers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/utils"
)

var registerOnce sync.Once

// RegisterValidators adds the comanda specific tags to gin's validator.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("unexpected validator engine")
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		err = v.RegisterValidation("comanda_status", func(fl validator.FieldLevel) bool {
			_, ok := models.ParseComandaStatus(fl.Field().String())
			return ok
		})
	})
	return err
}

func bindError(err error) *utils.AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fieldMessage(fe))
		}
		return utils.NewAppError(utils.CodeValidation, "dados inválidos").
			WithDetails(map[string]any{"erros": msgs})
	}
	return utils.WrapAppError(utils.CodeValidation, err, "corpo da requisição inválido").
		WithDetails(map[string]any{"erros": []string{err.Error()}})
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	// Namespace starts with the request type; drop it to keep the json path.
	if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
		field = rest
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s é obrigatório", field)
	case "comanda_status":
		return fmt.Sprintf("%s deve ser um de %v", field, models.ComandaStatuses())
	}
	return fmt.Sprintf("%s falhou na regra %s", field, fe.Tag())
}

func paramID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, utils.NewAppError(utils.CodeValidation, "id inválido").
			WithDetails(map[string]any{name: c.Param(name)})
	}
	return id, nil
}
