package nav

import (
	"github.com/rs/zerolog/log"

	"github.com/condomais/appcore/internal/session"
)

// Navigator é a superfície de navegação que o guard controla. Replace troca
// a tela corrente sem empilhar histórico.
type Navigator interface {
	Atual() Screen
	Replace(Screen)
}

// Guard aplica continuamente o veredito do resolvedor como efeito de
// navegação. Reavalia a cada mutação da sessão; mudanças de tela disparadas
// fora da sessão devem chamar Evaluate.
type Guard struct {
	sessao    *session.Session
	navegador Navigator
	cancelar  func()
}

// NewGuard cria o guard e assina as mutações da sessão.
func NewGuard(s *session.Session, n Navigator) *Guard {
	g := &Guard{sessao: s, navegador: n}
	g.cancelar = s.OnChange(g.Evaluate)
	return g
}

// Close cancela a assinatura na sessão.
func (g *Guard) Close() {
	if g.cancelar != nil {
		g.cancelar()
	}
}

// Evaluate computa o veredito para o estado corrente e, se não for Stay,
// emite o replace. O resolvedor devolve Stay quando a tela corrente já é o
// alvo, então aplicar o mesmo veredito duas vezes não gera navegação dupla.
func (g *Guard) Evaluate() {
	atual := g.navegador.Atual()
	decisao := Resolve(g.sessao.Usuario(), g.sessao.CondominioAtivo(), g.sessao.Loading(), atual)
	if decisao == Stay {
		return
	}

	alvo := ScreenDe(decisao, atual)
	log.Debug().
		Str("de", string(atual)).
		Str("para", string(alvo)).
		Str("decisao", decisao.String()).
		Msg("nav: redirecionando")
	g.navegador.Replace(alvo)
}
