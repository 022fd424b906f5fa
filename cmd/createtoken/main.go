package main

import (
	"flag"
	"fmt"
	"os"

	"renewtrack.com/renewtrack/infrastructure/devops"
	"renewtrack.com/renewtrack/security"
)

// Mints a bearer token for scripting against the API without going through
// the login endpoint.
func main() {
	username := flag.String("username", "admin", "username to embed in the token")
	ttl := flag.Duration("ttl", security.TokenTTL, "token lifetime")
	flag.Parse()

	cfg, err := devops.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	secret, err := security.DecodeSecret(cfg.SigningSecret)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	token, err := security.CreateIdentityToken(*username, secret, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(token)
}
