package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"Morsel/internal/auth"
)

// gentoken issues an HS256 bearer token for the posts API
// The secret is read from JWT_SECRET, the same variable the server verifies with
//
// Usage:
//
//	go run ./cmd/gentoken -user alice -username "Alice" -ttl 72h
func main() {
	_ = godotenv.Load()

	userID := flag.String("user", "", "user id placed in the sub claim (required)")
	username := flag.String("username", "", "display name carried in the token")
	issuerName := flag.String("issuer", envString("JWT_ISSUER", "morsel"), "iss claim; must match the server's JWT_ISSUER")
	ttl := flag.Duration("ttl", auth.DefaultTokenTTL, "token lifetime")
	flag.Parse()

	if *userID == "" {
		flag.Usage()
		os.Exit(2)
	}

	issuer, err := auth.NewIssuer(os.Getenv("JWT_SECRET"), *issuerName, *ttl)
	if err != nil {
		log.Fatalf("Failed to create issuer: %v", err)
	}

	token, err := issuer.Issue(*userID, *username)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}

	fmt.Fprintf(os.Stderr, "Token for %s expires at %s\n", *userID, time.Now().Add(*ttl).Format(time.RFC3339))
	fmt.Println(token)
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
