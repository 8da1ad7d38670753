package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/pricebook/config"
	"github.com/shashiranjanraj/pricebook/pkg/auth"
)

var (
	tokenSubject string
	tokenRole    string
	tokenTTL     time.Duration
)

// pricebook token:issue --subject alice
var tokenIssueCmd = &cobra.Command{
	Use:   "token:issue",
	Short: "Mint a bearer token for the special-price write endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		if tokenSubject == "" {
			return errors.New("--subject is required")
		}
		tok, err := auth.GenerateToken(tokenSubject, tokenRole, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Println(tok)
		return nil
	},
}

func init() {
	tokenIssueCmd.Flags().StringVar(&tokenSubject, "subject", "", "operator name carried in the token")
	tokenIssueCmd.Flags().StringVar(&tokenRole, "role", auth.RoleOperator, "role claim")
	tokenIssueCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
}
