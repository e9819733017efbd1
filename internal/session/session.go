package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/condomais/appcore/internal/store"
)

var (
	// ErrSemVinculo indica login aceito pelo servidor mas sem nenhum
	// condomínio vinculado e sem privilégio de administradora.
	ErrSemVinculo = errors.New("usuário sem vínculo com condomínio")
	// ErrNaoAutenticado indica operação que exige sessão ativa.
	ErrNaoAutenticado = errors.New("sessão não autenticada")
)

// MsgIndisponivel é exibida quando o login falha por erro de transporte.
const MsgIndisponivel = "serviço indisponível, tente novamente"

// MsgSessaoExpirada é registrada quando a sessão é derrubada por 401.
const MsgSessaoExpirada = "sessão expirada, entre novamente"

// ErroCredenciais carrega a mensagem de rejeição do serviço de identidade,
// exibida literalmente na tela de login.
type ErroCredenciais struct {
	Mensagem string
}

func (e *ErroCredenciais) Error() string {
	return e.Mensagem
}

// Gateway é o contrato que a sessão precisa do serviço remoto de identidade.
type Gateway interface {
	Login(ctx context.Context, login, senha string) (Usuario, string, error)
	Me(ctx context.Context) (Usuario, error)
	SetToken(token string)
	ClearToken()
	OnUnauthorized(fn func()) (cancelar func())
}

// Session é o estado canônico de identidade e escopo do app. Uma única
// instância é criada na partida do processo e injetada em todos os
// consumidores; toda mutação grava no Store antes de ser observável.
type Session struct {
	store store.Store
	gw    Gateway

	mu           sync.RWMutex
	usuario      *Usuario
	ativo        *Vinculo
	carregando   bool
	restaurada   bool
	loginErro    string
	motivoLogout string
	geracao      uint64

	ouvintes        map[int]func()
	proximoOuvinte  int
	cancelarInvalid func()
}

// New cria a sessão e assina o sinal de não-autorizado do gateway. A sessão
// nasce em estado "carregando" até Restore completar.
func New(st store.Store, gw Gateway) *Session {
	s := &Session{
		store:      st,
		gw:         gw,
		carregando: true,
		ouvintes:   make(map[int]func()),
	}
	s.cancelarInvalid = gw.OnUnauthorized(s.invalidar)
	return s
}

// Close cancela a assinatura de invalidação.
func (s *Session) Close() {
	if s.cancelarInvalid != nil {
		s.cancelarInvalid()
	}
}

// Restore lê usuário, condomínio ativo e token do Store e recompõe o estado
// em memória. Executa no máximo uma vez por processo; chamadas seguintes são
// ignoradas. Um usuário persistido sem token é tratado como não autenticado.
func (s *Session) Restore(ctx context.Context) {
	s.mu.Lock()
	if s.restaurada {
		s.mu.Unlock()
		return
	}
	s.restaurada = true
	s.mu.Unlock()

	usuario, ativo := s.lerArmazenamento(ctx)

	s.mu.Lock()
	s.usuario = usuario
	s.ativo = ativo
	s.carregando = false
	s.mu.Unlock()

	s.notificar()
}

func (s *Session) lerArmazenamento(ctx context.Context) (*Usuario, *Vinculo) {
	token, errToken := s.store.Get(ctx, store.ChaveToken)
	usuarioJSON, errUsuario := s.store.Get(ctx, store.ChaveUsuario)

	if errToken != nil || errUsuario != nil || token == "" {
		if errUsuario == nil || errToken == nil {
			// Restos de um login interrompido no meio; limpa tudo.
			s.removerChaves(ctx)
		}
		return nil, nil
	}

	var usuario Usuario
	if err := json.Unmarshal([]byte(usuarioJSON), &usuario); err != nil {
		log.Warn().Err(err).Msg("sessão: usuário persistido ilegível, descartando")
		s.removerChaves(ctx)
		return nil, nil
	}

	s.gw.SetToken(token)

	ativoJSON, err := s.store.Get(ctx, store.ChaveCondominioAtivo)
	if err != nil {
		return &usuario, nil
	}

	var persistido Vinculo
	if err := json.Unmarshal([]byte(ativoJSON), &persistido); err != nil {
		log.Warn().Err(err).Msg("sessão: condomínio ativo persistido ilegível, descartando")
		_ = s.store.Remove(ctx, store.ChaveCondominioAtivo)
		return &usuario, nil
	}

	// Reconciliação: o vínculo persistido precisa existir na lista restaurada.
	// Se a administradora revogou o vínculo entre sessões, o escopo é limpo e
	// a navegação cai na seleção de condomínio.
	atual, ok := usuario.VinculoPorCondominio(persistido.CondominioID)
	if !ok {
		log.Warn().
			Str("condominio_id", persistido.CondominioID.String()).
			Msg("sessão: condomínio ativo não consta mais nos vínculos, limpando escopo")
		_ = s.store.Remove(ctx, store.ChaveCondominioAtivo)
		return &usuario, nil
	}
	return &usuario, &atual
}

// Login autentica no gateway e, em caso de sucesso, popula e persiste a
// sessão. Aplica a regra de escopo automático: vínculo único vira o
// condomínio ativo imediatamente. Retorna false sem tocar o estado existente
// quando as credenciais são rejeitadas ou o serviço está fora.
func (s *Session) Login(ctx context.Context, login, senha string) bool {
	s.mu.Lock()
	s.geracao++
	geracao := s.geracao
	s.mu.Unlock()

	usuario, token, err := s.gw.Login(ctx, login, senha)

	s.mu.Lock()
	if geracao != s.geracao {
		// Outro login foi disparado enquanto este aguardava a rede; o
		// resultado atrasado é descartado sem tocar o estado.
		s.mu.Unlock()
		log.Debug().Msg("sessão: resposta de login obsoleta descartada")
		return false
	}

	if err != nil {
		s.loginErro = mensagemLogin(err)
		s.mu.Unlock()
		s.notificar()
		return false
	}

	if len(usuario.Vinculos) == 0 && !usuario.SuperAdmin {
		s.loginErro = ErrSemVinculo.Error()
		s.mu.Unlock()
		log.Warn().Str("usuario_id", usuario.ID.String()).Msg("sessão: login sem vínculo elegível")
		s.notificar()
		return false
	}

	var ativo *Vinculo
	if !usuario.SuperAdmin && len(usuario.Vinculos) == 1 {
		v := usuario.Vinculos[0]
		ativo = &v
	}

	s.usuario = &usuario
	s.ativo = ativo
	s.loginErro = ""
	s.motivoLogout = ""
	s.mu.Unlock()

	s.gw.SetToken(token)
	s.persistirLogin(ctx, token, usuario, ativo)
	s.notificar()
	return true
}

// persistirLogin grava token antes do usuário: um usuário persistido sem
// token é ignorado por Restore, então uma queda entre as duas escritas nunca
// produz uma sessão restaurável sem credencial.
func (s *Session) persistirLogin(ctx context.Context, token string, usuario Usuario, ativo *Vinculo) {
	if err := s.store.Set(ctx, store.ChaveToken, token); err != nil {
		log.Warn().Err(err).Msg("sessão: falha ao persistir token")
		return
	}

	usuarioJSON, err := json.Marshal(usuario)
	if err != nil {
		log.Warn().Err(err).Msg("sessão: falha ao serializar usuário")
		return
	}
	if err := s.store.Set(ctx, store.ChaveUsuario, string(usuarioJSON)); err != nil {
		log.Warn().Err(err).Msg("sessão: falha ao persistir usuário")
		return
	}

	if ativo != nil {
		s.persistirAtivo(ctx, *ativo)
		return
	}
	if err := s.store.Remove(ctx, store.ChaveCondominioAtivo); err != nil {
		log.Warn().Err(err).Msg("sessão: falha ao limpar condomínio ativo")
	}
}

func (s *Session) persistirAtivo(ctx context.Context, v Vinculo) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Warn().Err(err).Msg("sessão: falha ao serializar condomínio ativo")
		return
	}
	if err := s.store.Set(ctx, store.ChaveCondominioAtivo, string(data)); err != nil {
		log.Warn().Err(err).Msg("sessão: falha ao persistir condomínio ativo")
	}
}

// SelectCondominio torna o vínculo informado o escopo ativo. O vínculo
// precisa pertencer ao usuário corrente; seleção de vínculo estranho é
// registrada e ignorada, nunca derruba o app.
func (s *Session) SelectCondominio(ctx context.Context, v Vinculo) {
	s.mu.Lock()
	if s.usuario == nil {
		s.mu.Unlock()
		log.Warn().Msg("sessão: seleção de condomínio sem usuário autenticado")
		return
	}
	atual, ok := s.usuario.VinculoPorCondominio(v.CondominioID)
	if !ok {
		s.mu.Unlock()
		log.Warn().
			Str("condominio_id", v.CondominioID.String()).
			Msg("sessão: seleção de condomínio fora dos vínculos do usuário")
		return
	}
	s.ativo = &atual
	s.mu.Unlock()

	s.persistirAtivo(ctx, atual)
	s.notificar()
}

// ClearCondominioAtivo devolve a sessão ao escopo global. Só faz sentido
// para contas de administradora; para as demais a navegação cairá na
// seleção de condomínio.
func (s *Session) ClearCondominioAtivo(ctx context.Context) {
	s.mu.Lock()
	s.ativo = nil
	s.mu.Unlock()

	if err := s.store.Remove(ctx, store.ChaveCondominioAtivo); err != nil {
		log.Warn().Err(err).Msg("sessão: falha ao limpar condomínio ativo")
	}
	s.notificar()
}

// Logout encerra a sessão incondicionalmente: memória, Store e token do
// gateway.
func (s *Session) Logout(ctx context.Context) {
	s.encerrar(ctx, "")
}

// RefreshPerfil busca o perfil atualizado no serviço e reconcilia o escopo
// ativo contra a lista fresca de vínculos.
func (s *Session) RefreshPerfil(ctx context.Context) error {
	s.mu.RLock()
	autenticada := s.usuario != nil
	s.mu.RUnlock()
	if !autenticada {
		return ErrNaoAutenticado
	}

	usuario, err := s.gw.Me(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.usuario == nil {
		// Sessão caiu enquanto a resposta viajava (401 em outra chamada).
		s.mu.Unlock()
		return ErrNaoAutenticado
	}
	s.usuario = &usuario
	var ativo *Vinculo
	if s.ativo != nil {
		if atual, ok := usuario.VinculoPorCondominio(s.ativo.CondominioID); ok {
			ativo = &atual
		} else {
			log.Warn().
				Str("condominio_id", s.ativo.CondominioID.String()).
				Msg("sessão: vínculo ativo revogado no servidor, limpando escopo")
		}
	}
	s.ativo = ativo
	s.mu.Unlock()

	usuarioJSON, errJSON := json.Marshal(usuario)
	if errJSON == nil {
		if err := s.store.Set(ctx, store.ChaveUsuario, string(usuarioJSON)); err != nil {
			log.Warn().Err(err).Msg("sessão: falha ao persistir perfil atualizado")
		}
	}
	if ativo != nil {
		s.persistirAtivo(ctx, *ativo)
	} else {
		_ = s.store.Remove(ctx, store.ChaveCondominioAtivo)
	}

	s.notificar()
	return nil
}

// invalidar reage ao sinal de não-autorizado do gateway. O gateway nunca
// emite o sinal para a própria chamada de login, então chegar aqui significa
// sessão terminada no servidor.
func (s *Session) invalidar() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Warn().Msg("sessão: credencial rejeitada pelo serviço, encerrando sessão")
	s.encerrar(ctx, MsgSessaoExpirada)
}

func (s *Session) encerrar(ctx context.Context, motivo string) {
	if err := s.store.Remove(ctx, store.ChaveUsuario, store.ChaveToken, store.ChaveCondominioAtivo); err != nil {
		log.Warn().Err(err).Msg("sessão: falha ao limpar armazenamento no logout")
	}

	s.mu.Lock()
	s.usuario = nil
	s.ativo = nil
	s.motivoLogout = motivo
	s.mu.Unlock()

	s.gw.ClearToken()
	s.notificar()
}

// Usuario retorna uma cópia do usuário corrente, ou nil sem sessão.
func (s *Session) Usuario() *Usuario {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.usuario == nil {
		return nil
	}
	u := *s.usuario
	return &u
}

// CondominioAtivo retorna uma cópia do vínculo ativo, ou nil.
func (s *Session) CondominioAtivo() *Vinculo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ativo == nil {
		return nil
	}
	v := *s.ativo
	return &v
}

// Loading informa se a restauração ainda está em andamento.
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.carregando
}

// LoginError retorna a mensagem do último login rejeitado, para exibição
// inline na tela de login.
func (s *Session) LoginError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loginErro
}

// LogoutReason retorna o motivo do último encerramento forçado ("" para
// logout voluntário).
func (s *Session) LogoutReason() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.motivoLogout
}

// Visao calcula a leitura derivada da sessão. Sempre recalculada; nunca
// armazenada.
func (s *Session) Visao() Visao {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := Visao{}
	if s.usuario != nil {
		v.SuperAdmin = s.usuario.SuperAdmin
	}
	if s.ativo != nil {
		v.Papel = strings.ToLower(strings.TrimSpace(s.ativo.Papel))
		v.Morador = PapelMorador(v.Papel)
	}
	return v
}

// OnChange registra um observador chamado após cada mutação da sessão.
// Retorna a função de cancelamento.
func (s *Session) OnChange(fn func()) (cancelar func()) {
	s.mu.Lock()
	id := s.proximoOuvinte
	s.proximoOuvinte++
	s.ouvintes[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.ouvintes, id)
		s.mu.Unlock()
	}
}

func (s *Session) notificar() {
	s.mu.RLock()
	fns := make([]func(), 0, len(s.ouvintes))
	for _, fn := range s.ouvintes {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}

func (s *Session) removerChaves(ctx context.Context) {
	if err := s.store.Remove(ctx, store.ChaveUsuario, store.ChaveToken, store.ChaveCondominioAtivo); err != nil {
		log.Warn().Err(err).Msg("sessão: falha ao remover chaves órfãs")
	}
}

func mensagemLogin(err error) string {
	var cred *ErroCredenciais
	if errors.As(err, &cred) {
		return cred.Mensagem
	}
	return MsgIndisponivel
}
