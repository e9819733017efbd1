// Package gateway fala com o serviço remoto de identidade do CondoMais.
// Toda chamada autenticada carrega o bearer token corrente; respostas 401
// fora do login emitem o sinal tipado de não-autorizado que a sessão assina.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/condomais/appcore/internal/session"
)

var (
	// ErrNaoAutorizado indica 401 em chamada autenticada. A emissão do sinal
	// de invalidação acompanha este erro; quem chama não precisa reagir.
	ErrNaoAutorizado = errors.New("não autorizado")
)

// Config descreve o essencial para construir o cliente.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client encapsula as chamadas HTTP ao serviço de identidade.
type Client struct {
	httpClient *http.Client
	baseURL    string

	mu       sync.RWMutex
	token    string
	ouvintes map[int]func()
	proximo  int
}

// New cria o cliente. Timeout zero assume 15s, o mesmo default do app.
func New(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, errors.New("gateway: base url obrigatória")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(base, "/"),
		ouvintes:   make(map[int]func()),
	}, nil
}

// SetToken define o bearer token anexado às chamadas autenticadas.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearToken descarta o bearer token corrente.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// OnUnauthorized registra um observador do sinal de não-autorizado e
// retorna a função de cancelamento.
func (c *Client) OnUnauthorized(fn func()) (cancelar func()) {
	c.mu.Lock()
	id := c.proximo
	c.proximo++
	c.ouvintes[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.ouvintes, id)
		c.mu.Unlock()
	}
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *erroAPI        `json:"error"`
}

type erroAPI struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginData struct {
	Usuario session.Usuario `json:"usuario"`
	Token   string          `json:"token"`
}

type meData struct {
	Usuario session.Usuario `json:"usuario"`
}

// Login envia as credenciais e retorna o usuário autenticado e seu token.
// Rejeição do servidor vira *session.ErroCredenciais com a mensagem do
// serviço; 401 aqui nunca emite o sinal de invalidação, para não mascarar
// erro de credencial como sessão expirada.
func (c *Client) Login(ctx context.Context, login, senha string) (session.Usuario, string, error) {
	body := loginRequest{Login: login, Password: senha}
	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+"/v1/auth/login", body, false)
	if err != nil {
		return session.Usuario{}, "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return session.Usuario{}, "", fmt.Errorf("gateway: login: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return session.Usuario{}, "", fmt.Errorf("gateway: login: resposta ilegível: %w", err)
	}

	if resp.StatusCode >= 400 {
		if resp.StatusCode >= 500 || env.Error == nil {
			return session.Usuario{}, "", fmt.Errorf("gateway: login: status %d", resp.StatusCode)
		}
		return session.Usuario{}, "", &session.ErroCredenciais{Mensagem: mensagemOuPadrao(env.Error)}
	}

	var data loginData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return session.Usuario{}, "", fmt.Errorf("gateway: login: payload inesperado: %w", err)
	}
	if data.Token == "" {
		return session.Usuario{}, "", errors.New("gateway: login: resposta sem token")
	}
	return data.Usuario, data.Token, nil
}

// Me busca o perfil corrente com a lista fresca de vínculos.
func (c *Client) Me(ctx context.Context) (session.Usuario, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.baseURL+"/v1/me", nil, true)
	if err != nil {
		return session.Usuario{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return session.Usuario{}, fmt.Errorf("gateway: me: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.emitirNaoAutorizado()
		return session.Usuario{}, ErrNaoAutorizado
	}
	if resp.StatusCode >= 400 {
		return session.Usuario{}, fmt.Errorf("gateway: me: status %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return session.Usuario{}, fmt.Errorf("gateway: me: resposta ilegível: %w", err)
	}
	var data meData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return session.Usuario{}, fmt.Errorf("gateway: me: payload inesperado: %w", err)
	}
	return data.Usuario, nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body any, autenticada bool) (*http.Request, error) {
	var req *http.Request
	var err error
	if body != nil {
		payload, errJSON := json.Marshal(body)
		if errJSON != nil {
			return nil, fmt.Errorf("gateway: serializar corpo: %w", errJSON)
		}
		req, err = http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, err = http.NewRequestWithContext(ctx, method, endpoint, nil)
		if err != nil {
			return nil, err
		}
	}

	req.Header.Set("Accept", "application/json")
	if autenticada {
		c.mu.RLock()
		token := c.token
		c.mu.RUnlock()
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

func (c *Client) emitirNaoAutorizado() {
	c.mu.RLock()
	fns := make([]func(), 0, len(c.ouvintes))
	for _, fn := range c.ouvintes {
		fns = append(fns, fn)
	}
	c.mu.RUnlock()

	log.Warn().Msg("gateway: resposta não autorizada, sinalizando invalidação")
	for _, fn := range fns {
		fn()
	}
}

func mensagemOuPadrao(e *erroAPI) string {
	if e == nil || strings.TrimSpace(e.Message) == "" {
		return "credenciais inválidas"
	}
	return e.Message
}
