package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/aaplamahesh/outreach/internal/auth"
	"github.com/aaplamahesh/outreach/internal/service"
	"github.com/spf13/cobra"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Hash an admin password read from stdin for security.admin.password_hash",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprint(os.Stderr, "Password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password := strings.TrimRight(line, "\r\n")

		if err := auth.ValidatePassword(password); err != nil {
			return err
		}
		hash, err := auth.HashPassword(password, nil)
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an admin access token using the configured secret",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		admin := cfg.Security.Admin
		if admin.TokenSecret == "" {
			return fmt.Errorf("security.admin.token_secret is not set")
		}

		tokens, err := auth.NewTokenService(admin.TokenSecret, admin.TokenTTL, admin.Issuer)
		if err != nil {
			return err
		}
		token, expires, err := tokens.Issue(service.AdminSubject)
		if err != nil {
			return err
		}
		fmt.Println(token)
		fmt.Fprintf(os.Stderr, "expires %s\n", expires.Format("2006-01-02 15:04 MST"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hashPasswordCmd, tokenCmd)
}
