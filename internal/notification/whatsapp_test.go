package notification

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubCredentials struct {
	secret  string
	account string
	err     error
}

func (s *stubCredentials) WhatsAppCredentials(ctx context.Context, sellerID string) (string, string, error) {
	return s.secret, s.account, s.err
}

func TestSendText(t *testing.T) {
	var received map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		received = map[string]string{
			"secret":    r.FormValue("secret"),
			"account":   r.FormValue("account"),
			"recipient": r.FormValue("recipient"),
			"type":      r.FormValue("type"),
			"message":   r.FormValue("message"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true}`))
	}))
	defer server.Close()

	client := NewWhatsAppClient(server.URL, &stubCredentials{secret: "s3cret", account: "acc-1"}, zap.NewNop())

	delivered := client.SendText(context.Background(), "seller-1", "(11) 99988-7766", "Olá!")

	assert.True(t, delivered)
	assert.Equal(t, "s3cret", received["secret"])
	assert.Equal(t, "acc-1", received["account"])
	assert.Equal(t, "5511999887766", received["recipient"])
	assert.Equal(t, "text", received["type"])
	assert.Equal(t, "Olá!", received["message"])
}

func TestSendTextWithoutCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("não deveria chamar a API sem credenciais")
	}))
	defer server.Close()

	client := NewWhatsAppClient(server.URL, &stubCredentials{}, zap.NewNop())

	delivered := client.SendText(context.Background(), "seller-1", "11999887766", "Olá!")

	assert.False(t, delivered)
}

func TestSendTextCredentialsLookupError(t *testing.T) {
	client := NewWhatsAppClient("http://localhost:0", &stubCredentials{err: errors.New("db down")}, zap.NewNop())

	delivered := client.SendText(context.Background(), "seller-1", "11999887766", "Olá!")

	assert.False(t, delivered)
}

func TestSendTextUnparseableBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway timeout</html>"))
	}))
	defer server.Close()

	client := NewWhatsAppClient(server.URL, &stubCredentials{secret: "s3cret", account: "acc-1"}, zap.NewNop())

	// Resposta 2xx com corpo que não parseia não conta como entregue.
	delivered := client.SendText(context.Background(), "seller-1", "11999887766", "Olá!")

	assert.False(t, delivered)
}

func TestSendTextProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"success": false}`))
	}))
	defer server.Close()

	client := NewWhatsAppClient(server.URL, &stubCredentials{secret: "s3cret", account: "acc-1"}, zap.NewNop())

	delivered := client.SendText(context.Background(), "seller-1", "11999887766", "Olá!")

	assert.False(t, delivered)
}
