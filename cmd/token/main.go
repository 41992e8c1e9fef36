// Command token emite um token de acesso para uma conta, para uso local com
// a API (Authorization: Bearer <token>).
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"FundChain/config"
	"FundChain/internal/middleware"

	"github.com/joho/godotenv"
)

func main() {
	account := flag.String("account", "", "identificador da conta (claim sub)")
	ttl := flag.Duration("ttl", 0, "validade do token; padrão JWT_TTL")
	flag.Parse()

	if *account == "" {
		fmt.Fprintln(os.Stderr, "uso: token -account <id> [-ttl 1h]")
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuração inválida: %v\n", err)
		os.Exit(1)
	}
	if *ttl > 0 {
		cfg.JWT.TTL = *ttl
	}

	svc, err := middleware.NewJwtService(cfg.JWT)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jwt: %v\n", err)
		os.Exit(1)
	}

	token, expiresAt, err := svc.GenerateToken(*account)
	if err != nil {
		fmt.Fprintf(os.Stderr, "falha ao gerar token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expira em %s\n", expiresAt.Format(time.RFC3339))
}
