package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Middleware valida o bearer token e injeta o vendedor no contexto da
// requisição. Requisições sem header seguem adiante sem sessão; os use
// cases rejeitam com ErrUnauthenticated quando necessário.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.Request.Header.Get("Authorization")
		if header == "" {
			c.Next()
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		validated, err := JwtValidate(token)
		if err != nil || !validated.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		claim, ok := validated.Claims.(*JwtCustomClaim)
		if !ok || claim.SellerID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithSeller(c.Request.Context(), claim.SellerID))
		c.Next()
	}
}
