package session

import (
	"strings"

	"github.com/google/uuid"
)

// Usuario representa o principal autenticado e seus vínculos.
type Usuario struct {
	ID               uuid.UUID  `json:"id"`
	Nome             string     `json:"nome"`
	Documento        string     `json:"documento"`
	SuperAdmin       bool       `json:"super_admin"`
	AdministradoraID *uuid.UUID `json:"administradora_id,omitempty"`
	Vinculos         []Vinculo  `json:"vinculos"`
}

// Vinculo liga o usuário a um condomínio com um papel.
type Vinculo struct {
	CondominioID uuid.UUID `json:"condominio_id"`
	Condominio   string    `json:"condominio"`
	Papel        string    `json:"papel"`
}

// VinculoPorCondominio localiza o vínculo do usuário com o condomínio dado.
func (u *Usuario) VinculoPorCondominio(id uuid.UUID) (Vinculo, bool) {
	for _, v := range u.Vinculos {
		if v.CondominioID == id {
			return v, true
		}
	}
	return Vinculo{}, false
}

// Visao é a leitura derivada da sessão corrente. Nunca é persistida;
// recalculada a cada acesso a partir de Usuario + vínculo ativo.
type Visao struct {
	Papel      string `json:"papel"`
	Morador    bool   `json:"morador"`
	SuperAdmin bool   `json:"super_admin"`
}

var papeisMorador = map[string]struct{}{
	"morador":      {},
	"proprietario": {},
	"inquilino":    {},
	"dependente":   {},
}

// PapelMorador informa se o papel pertence ao conjunto de moradores.
func PapelMorador(papel string) bool {
	_, ok := papeisMorador[strings.ToLower(strings.TrimSpace(papel))]
	return ok
}
