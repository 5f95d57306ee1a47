package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yeremiapane/comanda-app/utils"
)

const (
	ContextEmpresaID = "empresa_id"
	ContextUsuarioID = "usuario_id"
	ContextPapel     = "papel"
)

func unauthorized(c *gin.Context, message string) {
	utils.RespondAppError(c, utils.NewAppError(utils.CodeUnauthorized, message))
	c.Abort()
}

// AuthMiddleware resolves the tenant from a Bearer token. Browsers cannot set
// headers on websocket upgrades, so a token query parameter is accepted too.
func AuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		if header := c.GetHeader("Authorization"); header != "" {
			if !strings.HasPrefix(header, "Bearer ") {
				unauthorized(c, "formato do token inválido")
				return
			}
			tokenString = strings.TrimPrefix(header, "Bearer ")
		} else {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			unauthorized(c, "token não informado")
			return
		}

		claims, err := utils.ParseToken(secret, tokenString)
		if err != nil {
			unauthorized(c, "token inválido ou expirado")
			return
		}
		empresaID, err := uuid.Parse(claims.EmpresaID)
		if err != nil {
			unauthorized(c, "empresa inválida no token")
			return
		}

		c.Set(ContextEmpresaID, empresaID)
		c.Set(ContextUsuarioID, claims.UsuarioID)
		c.Set(ContextPapel, claims.Papel)
		c.Next()
	}
}

// EmpresaID returns the tenant stored by AuthMiddleware.
func EmpresaID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextEmpresaID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func UsuarioID(c *gin.Context) string {
	return c.GetString(ContextUsuarioID)
}
