package devserver

import (
	"github.com/google/uuid"

	"github.com/condomais/appcore/internal/session"
)

// Conta é uma credencial semeada no stub, com a senha em claro para uso em
// desenvolvimento e testes.
type Conta struct {
	Login   string
	Senha   string
	Usuario session.Usuario
}

// IDs fixos para que restarts do stub preservem sessões persistidas no app.
var (
	condVilaVerde = uuid.MustParse("0b6f3c1e-7a41-4a14-9c61-2f8af1d2a101")
	condSolar     = uuid.MustParse("35b1de6a-91cd-4a6b-8b43-6a5d9f3be202")
	condAurora    = uuid.MustParse("8b0c2f4d-1e53-4f78-a9b2-c41d7e8fa303")
)

// ContasSemente cobre todos os ramos do resolvedor: vínculo único de gestão,
// múltiplos vínculos de morador, administradora e conta sem vínculo.
func ContasSemente() []Conta {
	return []Conta{
		{
			Login: "sindico@vilaverde.dev",
			Senha: "sindico123",
			Usuario: session.Usuario{
				ID:        uuid.MustParse("c1a7e2b4-0d3f-4e86-b5a9-7f2c4d6e8f10"),
				Nome:      "Sandra Oliveira",
				Documento: "31415926535",
				Vinculos: []session.Vinculo{
					{CondominioID: condVilaVerde, Condominio: "Residencial Vila Verde", Papel: "sindico"},
				},
			},
		},
		{
			Login: "morador@dois.dev",
			Senha: "morador123",
			Usuario: session.Usuario{
				ID:        uuid.MustParse("d2b8f3c5-1e40-4f97-c6ba-803d5e7f9a21"),
				Nome:      "Marcos Pereira",
				Documento: "27182818284",
				Vinculos: []session.Vinculo{
					{CondominioID: condVilaVerde, Condominio: "Residencial Vila Verde", Papel: "morador"},
					{CondominioID: condSolar, Condominio: "Solar das Palmeiras", Papel: "morador"},
				},
			},
		},
		{
			Login: "porteiro@solar.dev",
			Senha: "porteiro123",
			Usuario: session.Usuario{
				ID:        uuid.MustParse("e3c9a4d6-2f51-4aa8-d7cb-914e6f8a0b32"),
				Nome:      "José Carlos",
				Documento: "16180339887",
				Vinculos: []session.Vinculo{
					{CondominioID: condSolar, Condominio: "Solar das Palmeiras", Papel: "portaria"},
				},
			},
		},
		{
			Login: "admin@condomais.dev",
			Senha: "admin12345",
			Usuario: session.Usuario{
				ID:         uuid.MustParse("f4d0b5e7-3a62-4bb9-e8dc-a25f709b1c43"),
				Nome:       "Administradora Central",
				Documento:  "14142135623",
				SuperAdmin: true,
				Vinculos: []session.Vinculo{
					{CondominioID: condVilaVerde, Condominio: "Residencial Vila Verde", Papel: "administracao"},
					{CondominioID: condAurora, Condominio: "Edifício Aurora", Papel: "administracao"},
				},
			},
		},
		{
			Login: "semvinculo@condomais.dev",
			Senha: "semvinculo1",
			Usuario: session.Usuario{
				ID:        uuid.MustParse("a5e1c6f8-4b73-4cca-f9ed-b36081ac2d54"),
				Nome:      "Conta Desligada",
				Documento: "17320508075",
			},
		},
	}
}
