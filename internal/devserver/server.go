// Package devserver é um stub local da API de identidade do CondoMais,
// usado no desenvolvimento do app e nos testes de ponta a ponta do núcleo
// de sessão. Implementa apenas o contrato que o núcleo consome: login com
// senha e perfil autenticado.
package devserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/condomais/appcore/internal/session"
)

var hashParams = &argon2id.Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

type conta struct {
	login     string
	senhaHash string
	usuario   session.Usuario
}

// Server reúne as contas semeadas, o emissor de tokens e o router.
type Server struct {
	jwt     *JWTManager
	porID   map[uuid.UUID]*conta
	contas  map[string]*conta
	limiter *RateLimiter
	router  chi.Router
}

// NewServer monta o stub com as contas semente. O hash das senhas acontece
// aqui para que o fluxo de verificação seja o mesmo da API real.
func NewServer(jwtSecret string, accessTTL time.Duration) (*Server, error) {
	s := &Server{
		jwt:     NewJWTManager(jwtSecret, accessTTL),
		porID:   make(map[uuid.UUID]*conta),
		contas:  make(map[string]*conta),
		limiter: NewRateLimiter(10, 20),
	}

	for _, semente := range ContasSemente() {
		hash, err := argon2id.CreateHash(semente.Senha, hashParams)
		if err != nil {
			return nil, fmt.Errorf("devserver: hash da senha de %s: %w", semente.Login, err)
		}
		c := &conta{login: semente.Login, senhaHash: hash, usuario: semente.Usuario}
		s.contas[strings.ToLower(semente.Login)] = c
		s.porID[semente.Usuario.ID] = c
	}

	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		r.With(s.limiter.PorIP).Post("/auth/login", s.handleLogin)
		r.Get("/me", s.handleMe)
	})
	s.router = r

	return s, nil
}

// Handler expõe o router HTTP do stub.
func (s *Server) Handler() http.Handler {
	return s.router
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "corpo inválido")
		return
	}

	c, ok := s.contas[strings.ToLower(strings.TrimSpace(req.Login))]
	if !ok {
		log.Warn().Msg("devserver: login não encontrado")
		writeError(w, http.StatusUnauthorized, "AUTH", "credenciais inválidas")
		return
	}

	match, err := argon2id.ComparePasswordAndHash(req.Password, c.senhaHash)
	if err != nil || !match {
		log.Warn().Msg("devserver: senha inválida")
		writeError(w, http.StatusUnauthorized, "AUTH", "credenciais inválidas")
		return
	}

	vinculos := make([]string, 0, len(c.usuario.Vinculos))
	for _, v := range c.usuario.Vinculos {
		vinculos = append(vinculos, v.CondominioID.String())
	}

	token, err := s.jwt.GenerateAccessToken(c.usuario.ID.String(), vinculos)
	if err != nil {
		log.Error().Err(err).Msg("devserver: falha ao emitir token")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"usuario": c.usuario,
		"token":   token,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	c, ok := s.autenticar(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"usuario": c.usuario})
}

func (s *Server) autenticar(w http.ResponseWriter, r *http.Request) (*conta, bool) {
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		writeError(w, http.StatusUnauthorized, "AUTH", "token ausente")
		return nil, false
	}

	claims, err := s.jwt.ParseAndValidate(parts[1])
	if err != nil {
		writeError(w, http.StatusUnauthorized, "AUTH", "token inválido")
		return nil, false
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "AUTH", "subject inválido")
		return nil, false
	}

	c, ok := s.porID[id]
	if !ok {
		writeError(w, http.StatusUnauthorized, "AUTH", "conta desconhecida")
		return nil, false
	}
	return c, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data, "error": nil})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
