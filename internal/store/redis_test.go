package store

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func novoRedisTeste(t *testing.T, prefixo string) *Redis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, prefixo)
}

func TestRedisRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := novoRedisTeste(t, "portaria:entrada-a")

	if _, err := st.Get(ctx, ChaveToken); !errors.Is(err, ErrNaoEncontrado) {
		t.Fatalf("chave inexistente deveria retornar ErrNaoEncontrado, obteve %v", err)
	}

	if err := st.Set(ctx, ChaveToken, "token-abc"); err != nil {
		t.Fatal(err)
	}
	val, err := st.Get(ctx, ChaveToken)
	if err != nil || val != "token-abc" {
		t.Fatalf("esperava token-abc, obteve %q (%v)", val, err)
	}

	if err := st.Remove(ctx, ChaveToken, ChaveUsuario); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Get(ctx, ChaveToken); !errors.Is(err, ErrNaoEncontrado) {
		t.Fatal("chave removida deveria sumir")
	}
}

func TestRedisPrefixoIsolaPostos(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	postoA := NewRedis(client, "portaria:entrada-a")
	postoB := NewRedis(client, "portaria:entrada-b")

	if err := postoA.Set(ctx, ChaveToken, "token-a"); err != nil {
		t.Fatal(err)
	}
	if _, err := postoB.Get(ctx, ChaveToken); !errors.Is(err, ErrNaoEncontrado) {
		t.Fatal("sessão de um posto não pode vazar para outro")
	}
	if !mr.Exists("portaria:entrada-a:" + ChaveToken) {
		t.Fatal("chave deveria carregar o prefixo do posto")
	}
}
