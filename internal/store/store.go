package store

import (
	"context"
	"errors"
)

var (
	// ErrNaoEncontrado é retornado quando a chave não possui valor persistido.
	ErrNaoEncontrado = errors.New("chave não encontrada")
)

// Chaves fixas usadas pelo núcleo de sessão.
const (
	ChaveUsuario         = "sessao:usuario"
	ChaveToken           = "sessao:token"
	ChaveCondominioAtivo = "sessao:condominio_ativo"
)

// Store define persistência chave-valor para material de sessão.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}
