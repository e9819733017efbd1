package nav

import (
	"strings"

	"github.com/condomais/appcore/internal/session"
)

// Screen identifica as telas simbólicas que o núcleo conhece. O mapeamento
// para telas concretas pertence à camada de rotas do app.
type Screen string

const (
	ScreenLogin        Screen = "login"
	ScreenSelecao      Screen = "selecao-condominio"
	ScreenPainelGestao Screen = "painel-gestao"
	ScreenHome         Screen = "home"
)

// Decision é o veredito do resolvedor de escopo.
type Decision int

const (
	Stay Decision = iota
	GotoLogin
	GotoSelecao
	GotoPainelGestao
	GotoHome
)

func (d Decision) String() string {
	switch d {
	case Stay:
		return "stay"
	case GotoLogin:
		return "goto-login"
	case GotoSelecao:
		return "goto-selecao"
	case GotoPainelGestao:
		return "goto-painel-gestao"
	case GotoHome:
		return "goto-home"
	default:
		return "desconhecido"
	}
}

// papeisGestao leva ao painel administrativo; qualquer papel fora do
// conjunto cai na home operacional, nunca no painel.
var papeisGestao = map[string]struct{}{
	"sindico":       {},
	"administrador": {},
	"zelador":       {},
}

// Resolve decide o destino de navegação para o estado de sessão informado.
// Função pura, avaliada em ordem com primeiro-que-casa:
//
//  1. restauração em andamento: nunca redireciona (evita o flash de login
//     para usuários já autenticados);
//  2. sem usuário: tela de login;
//  3. usuário sem escopo ativo: administradora vai ao painel global,
//     múltiplos vínculos vão à seleção de condomínio;
//  4. escopo ativo e ainda em login/seleção: home do papel;
//  5. caso contrário, permanece.
func Resolve(usuario *session.Usuario, ativo *session.Vinculo, carregando bool, atual Screen) Decision {
	if carregando {
		return Stay
	}

	if usuario == nil {
		if atual == ScreenLogin {
			return Stay
		}
		return GotoLogin
	}

	if ativo == nil {
		if usuario.SuperAdmin {
			// Administradora nunca é forçada à seleção de condomínio; sem
			// escopo ela opera no painel global.
			if atual == ScreenLogin || atual == ScreenSelecao {
				return GotoPainelGestao
			}
			return Stay
		}
		if len(usuario.Vinculos) > 1 {
			if atual == ScreenSelecao {
				return Stay
			}
			return GotoSelecao
		}
		return Stay
	}

	if atual == ScreenLogin || atual == ScreenSelecao {
		return DestinoDoPapel(ativo.Papel)
	}

	return Stay
}

// DestinoDoPapel mapeia papel em destino operacional. Total sobre o conjunto
// conhecido; papel desconhecido cai na home de morador, o menor privilégio.
func DestinoDoPapel(papel string) Decision {
	papel = strings.ToLower(strings.TrimSpace(papel))
	if _, ok := papeisGestao[papel]; ok {
		return GotoPainelGestao
	}
	return GotoHome
}

// ScreenDe traduz um veredito de redirecionamento na tela alvo. Stay não
// possui tela alvo e retorna a tela corrente.
func ScreenDe(d Decision, atual Screen) Screen {
	switch d {
	case GotoLogin:
		return ScreenLogin
	case GotoSelecao:
		return ScreenSelecao
	case GotoPainelGestao:
		return ScreenPainelGestao
	case GotoHome:
		return ScreenHome
	default:
		return atual
	}
}
