package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/condomais/appcore/internal/session"
)

func respostaLogin(usuario session.Usuario, token string) []byte {
	data, _ := json.Marshal(map[string]any{
		"data":  map[string]any{"usuario": usuario, "token": token},
		"error": nil,
	})
	return data
}

func respostaErro(code, message string) []byte {
	data, _ := json.Marshal(map[string]any{
		"data":  nil,
		"error": map[string]any{"code": code, "message": message},
	})
	return data
}

func TestLoginSucesso(t *testing.T) {
	usuario := session.Usuario{
		ID:   uuid.New(),
		Nome: "Sandra Oliveira",
		Vinculos: []session.Vinculo{
			{CondominioID: uuid.New(), Condominio: "Residencial Vila Verde", Papel: "sindico"},
		},
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/auth/login" {
			t.Errorf("rota inesperada: %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			Login    string `json:"login"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("corpo ilegível: %v", err)
		}
		if body.Login != "sindico@vilaverde.dev" || body.Password != "sindico123" {
			t.Errorf("credenciais inesperadas: %+v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(respostaLogin(usuario, "token-abc"))
	}))
	defer ts.Close()

	c, err := New(Config{BaseURL: ts.URL})
	if err != nil {
		t.Fatal(err)
	}

	obtido, token, err := c.Login(context.Background(), "sindico@vilaverde.dev", "sindico123")
	if err != nil {
		t.Fatalf("login deveria suceder: %v", err)
	}
	if token != "token-abc" {
		t.Fatalf("token divergente: %q", token)
	}
	if obtido.ID != usuario.ID || len(obtido.Vinculos) != 1 {
		t.Fatalf("usuário divergente: %+v", obtido)
	}
}

func TestLoginRejeitadoNaoEmiteInvalidacao(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write(respostaErro("AUTH", "Usuário ou senha incorretos"))
	}))
	defer ts.Close()

	c, err := New(Config{BaseURL: ts.URL})
	if err != nil {
		t.Fatal(err)
	}

	emitido := false
	c.OnUnauthorized(func() { emitido = true })

	_, _, err = c.Login(context.Background(), "x@y.dev", "errada")
	var cred *session.ErroCredenciais
	if !errors.As(err, &cred) {
		t.Fatalf("esperava ErroCredenciais, obteve %v", err)
	}
	if cred.Mensagem != "Usuário ou senha incorretos" {
		t.Fatalf("mensagem do serviço deveria vir literal: %q", cred.Mensagem)
	}
	if emitido {
		t.Fatal("401 do próprio login não pode emitir o sinal de invalidação")
	}
}

func TestLoginErroDeServidorNaoViraCredencial(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write(respostaErro("INTERNAL", "erro interno"))
	}))
	defer ts.Close()

	c, err := New(Config{BaseURL: ts.URL})
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = c.Login(context.Background(), "x@y.dev", "senha")
	if err == nil {
		t.Fatal("login deveria falhar")
	}
	var cred *session.ErroCredenciais
	if errors.As(err, &cred) {
		t.Fatal("500 é falha de serviço, não rejeição de credencial")
	}
}

func TestMeAnexaBearerEretornaPerfil(t *testing.T) {
	usuario := session.Usuario{ID: uuid.New(), Nome: "Marcos Pereira"}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/me" {
			t.Errorf("rota inesperada: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-abc" {
			t.Errorf("authorization divergente: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		data, _ := json.Marshal(map[string]any{
			"data":  map[string]any{"usuario": usuario},
			"error": nil,
		})
		_, _ = w.Write(data)
	}))
	defer ts.Close()

	c, err := New(Config{BaseURL: ts.URL})
	if err != nil {
		t.Fatal(err)
	}
	c.SetToken("token-abc")

	obtido, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("me deveria suceder: %v", err)
	}
	if obtido.ID != usuario.ID {
		t.Fatalf("usuário divergente: %+v", obtido)
	}
}

func TestMeNaoAutorizadoEmiteInvalidacao(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write(respostaErro("AUTH", "token inválido"))
	}))
	defer ts.Close()

	c, err := New(Config{BaseURL: ts.URL})
	if err != nil {
		t.Fatal(err)
	}

	emissoes := 0
	cancelar := c.OnUnauthorized(func() { emissoes++ })

	if _, err := c.Me(context.Background()); !errors.Is(err, ErrNaoAutorizado) {
		t.Fatalf("esperava ErrNaoAutorizado, obteve %v", err)
	}
	if emissoes != 1 {
		t.Fatalf("sinal deveria ser emitido uma vez, obteve %d", emissoes)
	}

	cancelar()
	if _, err := c.Me(context.Background()); !errors.Is(err, ErrNaoAutorizado) {
		t.Fatalf("esperava ErrNaoAutorizado, obteve %v", err)
	}
	if emissoes != 1 {
		t.Fatal("assinatura cancelada não pode receber o sinal")
	}
}

func TestTimeoutNaoEmiteInvalidacao(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer ts.Close()

	c, err := New(Config{BaseURL: ts.URL, Timeout: 20 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	c.SetToken("token-abc")

	emitido := false
	c.OnUnauthorized(func() { emitido = true })

	if _, err := c.Me(context.Background()); err == nil {
		t.Fatal("timeout deveria falhar")
	} else if errors.Is(err, ErrNaoAutorizado) {
		t.Fatal("timeout é falha de transporte, não de autorização")
	}
	if emitido {
		t.Fatal("falha de rede não pode derrubar a sessão")
	}
}
