// Package main is an operator tool for Attendance Hub credentials.
//
//	authtool hash-secret <secret>                  print AUTH_INTERNAL_SECRET_HASH
//	authtool issue-token -uid u -role teacher -area Swang [-ttl 24h]
//
// issue-token signs with AUTH_JWT_SECRET and AUTH_JWT_ISSUER from the
// environment (or .env).
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/satyalok/attendance-hub/internal/domain/identity"
	"github.com/satyalok/attendance-hub/internal/domain/shared"
	httpserver "github.com/satyalok/attendance-hub/internal/interface/http"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "authtool: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("expected a command: hash-secret, issue-token")
	}
	_ = godotenv.Load()

	switch args[0] {
	case "hash-secret":
		if len(args) != 2 || args[1] == "" {
			return errors.New("usage: authtool hash-secret <secret>")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(args[1]), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(hash))
		return nil

	case "issue-token":
		return issueToken(args[1:], out)
	}
	return fmt.Errorf("unknown command %q", args[0])
}

func issueToken(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("issue-token", flag.ContinueOnError)
	uid := fs.String("uid", "", "subject uid")
	role := fs.String("role", string(identity.RoleTeacher), "teacher, admin or superadmin")
	area := fs.String("area", "", "bound area for teachers")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	secret := os.Getenv("AUTH_JWT_SECRET")
	if secret == "" {
		return errors.New("AUTH_JWT_SECRET is not set")
	}
	if *uid == "" {
		return errors.New("-uid is required")
	}

	id := identity.Identity{UID: *uid, Role: identity.ParseRole(*role)}
	if !id.Role.IsKnown() {
		return fmt.Errorf("unknown role %q", *role)
	}
	if *area != "" {
		id.Area = shared.NormalizeArea(*area)
	}

	auth := httpserver.NewAuthenticator(httpserver.AuthConfig{
		JWTSecret: secret,
		Issuer:    os.Getenv("AUTH_JWT_ISSUER"),
	})
	token, err := auth.IssueToken(id, *ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, token)
	return nil
}
