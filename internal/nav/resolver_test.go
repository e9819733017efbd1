package nav

import (
	"testing"

	"github.com/google/uuid"

	"github.com/condomais/appcore/internal/session"
)

func usuarioCom(vinculos ...session.Vinculo) *session.Usuario {
	return &session.Usuario{
		ID:       uuid.New(),
		Nome:     "Usuário Teste",
		Vinculos: vinculos,
	}
}

func vinculo(papel string) session.Vinculo {
	return session.Vinculo{
		CondominioID: uuid.New(),
		Condominio:   "Condomínio Teste",
		Papel:        papel,
	}
}

func TestResolve(t *testing.T) {
	sindico := vinculo("sindico")
	morador := vinculo("morador")

	multi := usuarioCom(vinculo("morador"), vinculo("morador"))
	unico := usuarioCom(sindico)

	admin := usuarioCom(vinculo("administracao"), vinculo("administracao"))
	admin.SuperAdmin = true

	cases := []struct {
		nome       string
		usuario    *session.Usuario
		ativo      *session.Vinculo
		carregando bool
		atual      Screen
		esperado   Decision
	}{
		{"restauracao em andamento nunca redireciona", nil, nil, true, ScreenHome, Stay},
		{"restauracao em andamento mesmo autenticado", unico, &sindico, true, ScreenLogin, Stay},
		{"sem usuario fora do login", nil, nil, false, ScreenHome, GotoLogin},
		{"sem usuario ja no login", nil, nil, false, ScreenLogin, Stay},
		{"multiplos vinculos sem escopo", multi, nil, false, ScreenLogin, GotoSelecao},
		{"multiplos vinculos ja na selecao", multi, nil, false, ScreenSelecao, Stay},
		{"administradora sem escopo vai ao painel", admin, nil, false, ScreenLogin, GotoPainelGestao},
		{"administradora sem escopo fora das telas de entrada", admin, nil, false, ScreenPainelGestao, Stay},
		{"administradora na selecao volta ao painel", admin, nil, false, ScreenSelecao, GotoPainelGestao},
		{"escopo de gestao a partir do login", unico, &sindico, false, ScreenLogin, GotoPainelGestao},
		{"escopo de morador a partir da selecao", multi, &morador, false, ScreenSelecao, GotoHome},
		{"escopo ativo fora das telas de entrada", unico, &sindico, false, ScreenPainelGestao, Stay},
		{"vinculo unico sem escopo permanece", unico, nil, false, ScreenLogin, Stay},
	}

	for _, tc := range cases {
		t.Run(tc.nome, func(t *testing.T) {
			got := Resolve(tc.usuario, tc.ativo, tc.carregando, tc.atual)
			if got != tc.esperado {
				t.Fatalf("esperava %v, obteve %v", tc.esperado, got)
			}
		})
	}
}

// Reavaliar com a tela corrente já no alvo do redirecionamento anterior
// precisa devolver Stay para qualquer combinação de entradas.
func TestResolveIdempotente(t *testing.T) {
	sindico := vinculo("sindico")
	morador := vinculo("morador")

	multi := usuarioCom(vinculo("morador"), vinculo("morador"))
	admin := usuarioCom(vinculo("administracao"))
	admin.SuperAdmin = true

	cases := []struct {
		nome    string
		usuario *session.Usuario
		ativo   *session.Vinculo
		atual   Screen
	}{
		{"sem usuario", nil, nil, ScreenHome},
		{"multiplos vinculos", multi, nil, ScreenLogin},
		{"administradora", admin, nil, ScreenLogin},
		{"escopo gestao", usuarioCom(sindico), &sindico, ScreenLogin},
		{"escopo morador", multi, &morador, ScreenSelecao},
	}

	for _, tc := range cases {
		t.Run(tc.nome, func(t *testing.T) {
			primeira := Resolve(tc.usuario, tc.ativo, false, tc.atual)
			if primeira == Stay {
				t.Fatalf("cenário deveria redirecionar a partir de %s", tc.atual)
			}
			alvo := ScreenDe(primeira, tc.atual)
			segunda := Resolve(tc.usuario, tc.ativo, false, alvo)
			if segunda != Stay {
				t.Fatalf("segunda avaliação em %s deveria ser Stay, obteve %v", alvo, segunda)
			}
		})
	}
}

func TestDestinoDoPapel(t *testing.T) {
	cases := []struct {
		papel    string
		esperado Decision
	}{
		{"sindico", GotoPainelGestao},
		{"administrador", GotoPainelGestao},
		{"zelador", GotoPainelGestao},
		{"  SINDICO  ", GotoPainelGestao},
		{"morador", GotoHome},
		{"portaria", GotoHome},
		{"proprietario", GotoHome},
		// papel desconhecido cai na tela de menor privilégio
		{"sauna", GotoHome},
		{"", GotoHome},
	}

	for _, tc := range cases {
		if got := DestinoDoPapel(tc.papel); got != tc.esperado {
			t.Fatalf("papel %q: esperava %v, obteve %v", tc.papel, tc.esperado, got)
		}
	}
}
