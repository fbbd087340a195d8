// Package main provides a CLI tool for generating bearer tokens for the AgriQCert API.
// Tokens are signed with the dev signing key unless -key is given.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	jwttoken "agriqcert/internal/jwt_token"
	"agriqcert/pkg/domain"

	"github.com/google/uuid"
)

const (
	// Dev signing key - matches config.go when JWT_SIGNING_KEY is not set
	devSigningKey = "dev-secret-key-change-in-production"

	defaultIssuer   = "agriqcert"
	defaultTokenTTL = 12 * time.Hour
)

type tokenOutput struct {
	Token     string            `json:"token"`
	ExpiresIn string            `json:"expires_in"`
	Claims    map[string]string `json:"claims"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	fs := flag.NewFlagSet("tokengen", flag.ExitOnError)
	userID := fs.String("user-id", "", "User ID (UUID). Generated if empty.")
	role := fs.String("role", "EXPORTER", "Role: EXPORTER, QA, CUSTOMS, IMPORTER or ADMIN")
	org := fs.String("org", "", "Organization name (used as credential issuer for QA)")
	email := fs.String("email", "", "Email address (wallet sharing recipient)")
	agency := fs.String("agency", "", "QA agency ID")
	ttl := fs.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	key := fs.String("key", devSigningKey, "HS256 signing key")
	issuer := fs.String("issuer", defaultIssuer, "Token issuer")
	jsonOut := fs.Bool("json", false, "Output as JSON")
	fs.Usage = printUsage

	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	parsedRole, ok := domain.ParseRole(*role)
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown role: %s\n\n", *role)
		printUsage()
		os.Exit(1)
	}

	actor := domain.Actor{
		ID:           domain.UserID(parseOrGenerateUUID(*userID)),
		Role:         parsedRole,
		Organization: *org,
		Email:        *email,
		AgencyID:     *agency,
	}

	svc := jwttoken.NewJWTService(*key, *issuer, *ttl)
	token, err := svc.GenerateToken(context.Background(), actor, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	if *jsonOut {
		printJSON(tokenOutput{
			Token:     token,
			ExpiresIn: ttl.String(),
			Claims: map[string]string{
				"user_id":   actor.ID.String(),
				"role":      actor.Role.String(),
				"org":       actor.Organization,
				"email":     actor.Email,
				"agency_id": actor.AgencyID,
			},
			Usage: map[string]string{
				"header": "Authorization: Bearer <token>",
			},
		})
		return
	}

	fmt.Println("Bearer Token (JWT)")
	fmt.Println("==================")
	fmt.Printf("Expires In:  %s\n", ttl)
	fmt.Printf("User ID:     %s\n", actor.ID)
	fmt.Printf("Role:        %s\n", actor.Role)
	if actor.Organization != "" {
		fmt.Printf("Org:         %s\n", actor.Organization)
	}
	if actor.AgencyID != "" {
		fmt.Printf("Agency:      %s\n", actor.AgencyID)
	}
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer <token>\" http://localhost:4000/api/batches")
}

func printUsage() {
	fmt.Println(`tokengen - Generate bearer tokens for the AgriQCert API

WARNING: By default tokens use the dev signing key and will NOT work in production.

Usage:
  tokengen [flags]

Examples:
  # Exporter token with a generated user id
  tokengen -role EXPORTER

  # QA inspector token for an agency
  tokengen -role QA -org "Lanka Tea Labs" -agency agency-7 -ttl 1h

  # Output as JSON
  tokengen -role ADMIN -json

Flags:
  -user-id, -role, -org, -email, -agency, -ttl, -key, -issuer, -json`)
}

func parseOrGenerateUUID(input string) uuid.UUID {
	if input == "" {
		return uuid.New()
	}
	parsed, err := uuid.Parse(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid user-id UUID: %s\n", input)
		os.Exit(1)
	}
	return parsed
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
