// condoctl exercita o núcleo de sessão contra uma API real ou contra o
// devserver: autentica, escolhe o escopo, inspeciona a sessão persistida e
// encerra. Cada invocação é um "restart do app": a sessão é restaurada do
// armazenamento antes de qualquer ação.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/condomais/appcore/internal/config"
	"github.com/condomais/appcore/internal/gateway"
	"github.com/condomais/appcore/internal/nav"
	"github.com/condomais/appcore/internal/session"
	"github.com/condomais/appcore/internal/store"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx := context.Background()

	sessao, fechar, err := montarSessao(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("falha ao montar sessão")
	}
	defer fechar()

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "login":
		err = runLogin(ctx, sessao, args)
	case "selecionar":
		err = runSelecionar(ctx, sessao, args)
	case "sessao":
		err = runSessao(sessao)
	case "atualizar":
		err = sessao.RefreshPerfil(ctx)
		if err == nil {
			err = runSessao(sessao)
		}
	case "logout":
		sessao.Logout(ctx)
		fmt.Println("sessão encerrada")
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatal().Err(err).Msg("comando falhou")
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "condoctl — sessão do app CondoMais")
	fmt.Fprintln(os.Stderr, "uso:")
	fmt.Fprintln(os.Stderr, "  condoctl login --login sindico@vilaverde.dev --senha sindico123")
	fmt.Fprintln(os.Stderr, "  condoctl selecionar --condominio <uuid>")
	fmt.Fprintln(os.Stderr, "  condoctl sessao")
	fmt.Fprintln(os.Stderr, "  condoctl atualizar")
	fmt.Fprintln(os.Stderr, "  condoctl logout")
}

func montarSessao(ctx context.Context) (*session.Session, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	var st store.Store
	fechar := func() {}
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("redis parse: %w", err)
		}
		client := redis.NewClient(opts)
		st = store.NewRedis(client, "condoctl")
		fechar = func() { _ = client.Close() }
	} else {
		st = store.NewFile(cfg.StoragePath)
	}

	gw, err := gateway.New(gateway.Config{BaseURL: cfg.APIURL, Timeout: cfg.APITimeout})
	if err != nil {
		fechar()
		return nil, nil, err
	}

	sessao := session.New(st, gw)
	sessao.Restore(ctx)

	fecharTudo := func() {
		sessao.Close()
		fechar()
	}
	return sessao, fecharTudo, nil
}

func runLogin(ctx context.Context, sessao *session.Session, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		login = fs.String("login", "", "login (e-mail)")
		senha = fs.String("senha", "", "senha")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *login == "" || *senha == "" {
		return errors.New("login e senha são obrigatórios")
	}

	if !sessao.Login(ctx, *login, *senha) {
		return errors.New(sessao.LoginError())
	}
	return runSessao(sessao)
}

func runSelecionar(ctx context.Context, sessao *session.Session, args []string) error {
	fs := flag.NewFlagSet("selecionar", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	condominio := fs.String("condominio", "", "id do condomínio")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := uuid.Parse(*condominio)
	if err != nil {
		return fmt.Errorf("condominio inválido: %w", err)
	}

	usuario := sessao.Usuario()
	if usuario == nil {
		return session.ErrNaoAutenticado
	}
	vinculo, ok := usuario.VinculoPorCondominio(id)
	if !ok {
		return fmt.Errorf("usuário não possui vínculo com %s", id)
	}

	sessao.SelectCondominio(ctx, vinculo)
	return runSessao(sessao)
}

func runSessao(sessao *session.Session) error {
	usuario := sessao.Usuario()
	if usuario == nil {
		fmt.Println("sem sessão; use condoctl login")
		if motivo := sessao.LogoutReason(); motivo != "" {
			fmt.Println("motivo:", motivo)
		}
		return nil
	}

	destino := nav.Resolve(usuario, sessao.CondominioAtivo(), sessao.Loading(), nav.ScreenLogin)

	saida := map[string]any{
		"usuario":          usuario,
		"condominio_ativo": sessao.CondominioAtivo(),
		"visao":            sessao.Visao(),
		"destino":          destino.String(),
	}
	encoded, _ := json.MarshalIndent(saida, "", "  ")
	fmt.Println(string(encoded))
	return nil
}
