package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// App representa um aplicativo vendável com estoque de códigos de uso único.
// CodesAvailable é um contador denormalizado que espelha a quantidade de
// códigos não usados no estoque.
type App struct {
	ID             string          `json:"id" db:"id"`
	SellerID       string          `json:"userId" db:"seller_id"`
	Name           string          `json:"name" db:"name"`
	Price          decimal.Decimal `json:"price" db:"price"`
	CodesAvailable int             `json:"codesAvailable" db:"codes_available"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// NewApp cria uma nova instância de App sem códigos em estoque.
func NewApp(sellerID, name string, price decimal.Decimal) *App {
	return &App{
		ID:        uuid.New().String(),
		SellerID:  sellerID,
		Name:      name,
		Price:     price,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// Code representa um código de ativação de uso único. Uma vez usado,
// fica permanentemente vinculado a um item de venda e nunca é reutilizado.
type Code struct {
	ID    string `json:"id" db:"id"`
	AppID string `json:"appId" db:"app_id"`
	Code  string `json:"code" db:"code"`
	Used  bool   `json:"used" db:"used"`
}

// NewCode cria um novo código não usado para o aplicativo informado.
func NewCode(appID, code string) *Code {
	return &Code{
		ID:    uuid.New().String(),
		AppID: appID,
		Code:  code,
	}
}

// BatchResult particiona um lote de códigos recebido: cada entrada do lote
// cai em exatamente um dos três grupos.
type BatchResult struct {
	ValidCodes       []string `json:"validCodes"`
	Duplicates       []string `json:"duplicates"`
	SystemDuplicates []string `json:"systemDuplicates"`
}

// PartitionCodes separa o lote em códigos repetidos dentro do próprio lote,
// códigos que já existem em qualquer lugar do estoque e o restante, que pode
// ser persistido. Entradas vazias são descartadas após trim. Reenviar um lote
// já ingerido resulta em ValidCodes vazio.
func PartitionCodes(batch []string, inStore map[string]bool) BatchResult {
	result := BatchResult{
		ValidCodes:       []string{},
		Duplicates:       []string{},
		SystemDuplicates: []string{},
	}

	seen := make(map[string]bool, len(batch))
	for _, raw := range batch {
		code := strings.TrimSpace(raw)
		if code == "" {
			continue
		}

		switch {
		case seen[code]:
			result.Duplicates = append(result.Duplicates, code)
		case inStore[code]:
			seen[code] = true
			result.SystemDuplicates = append(result.SystemDuplicates, code)
		default:
			seen[code] = true
			result.ValidCodes = append(result.ValidCodes, code)
		}
	}

	return result
}
