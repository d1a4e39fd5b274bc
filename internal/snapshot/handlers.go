package snapshot

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/revendazap/backend/internal/auth"
)

// Handler expõe o snapshot do vendedor para a camada de interface.
type Handler struct {
	store *Store
}

// NewHandler cria uma nova instância de Handler.
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// Get devolve o snapshot completo do vendedor da sessão.
func (h *Handler) Get(c *gin.Context) {
	state, err := h.store.Get(c.Request.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, auth.ErrUnauthenticated) {
			status = http.StatusUnauthorized
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, state)
}
