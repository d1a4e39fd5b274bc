package auth

import (
	"context"
	"errors"
)

// ErrUnauthenticated indica que não há sessão de vendedor ativa.
// Todas as operações de negócio exigem um vendedor autenticado.
var ErrUnauthenticated = errors.New("usuário não autenticado")

type contextKey string

const sellerKey contextKey = "seller_id"

// WithSeller retorna um contexto carregando o ID do vendedor autenticado.
func WithSeller(ctx context.Context, sellerID string) context.Context {
	return context.WithValue(ctx, sellerKey, sellerID)
}

// SellerID extrai o ID do vendedor do contexto. Retorna ErrUnauthenticated
// quando o middleware não populou a sessão.
func SellerID(ctx context.Context) (string, error) {
	if val, ok := ctx.Value(sellerKey).(string); ok && val != "" {
		return val, nil
	}
	return "", ErrUnauthenticated
}
