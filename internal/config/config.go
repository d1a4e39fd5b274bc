package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Load carrega variáveis de ambiente a partir de um arquivo .env, quando existir.
// Em produção as variáveis vêm do ambiente do container e o .env é opcional.
func Load() {
	_ = godotenv.Load()
}

// GetEnv retorna o valor da variável de ambiente ou um valor padrão.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
