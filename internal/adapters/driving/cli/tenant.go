package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/stocksync/internal/core/domain"
)

var tenantAddToken string

var tenantCmd = &cobra.Command{
	Use:   "tenant",
	Short: "Manage the shops reconciled by each run",
	Long: `Register, list and remove shops. Every run reconciles the feed
against all registered shops in turn.

Examples:
  # Register a shop, prompting for the access token
  stocksync tenant add example.myshopify.com

  # List registered shops
  stocksync tenant list`,
}

var tenantAddCmd = &cobra.Command{
	Use:   "add <shop>",
	Short: "Register a shop or replace its access token",
	Args:  cobra.ExactArgs(1),
	RunE:  runTenantAdd,
}

var tenantListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered shops",
	Args:  cobra.NoArgs,
	RunE:  runTenantList,
}

var tenantRemoveCmd = &cobra.Command{
	Use:   "remove <shop>",
	Short: "Unregister a shop",
	Args:  cobra.ExactArgs(1),
	RunE:  runTenantRemove,
}

func init() {
	tenantAddCmd.Flags().StringVar(
		&tenantAddToken, "token", "", "Admin API access token (prompted when not given)")

	tenantCmd.AddCommand(tenantAddCmd)
	tenantCmd.AddCommand(tenantListCmd)
	tenantCmd.AddCommand(tenantRemoveCmd)
	rootCmd.AddCommand(tenantCmd)
}

func runTenantAdd(cmd *cobra.Command, args []string) error {
	if tenantService == nil {
		return errors.New("tenant service not configured")
	}

	token := tenantAddToken
	if token == "" {
		cmd.Print("Access token: ")
		token = readSecret(cmd.InOrStdin())
		cmd.Println()
	}

	tenant, err := tenantService.Add(cmd.Context(), args[0], token)
	if err != nil {
		return fmt.Errorf("failed to add shop: %w", err)
	}

	cmd.Printf("Shop %s registered (token %s).\n", tenant.Shop, tenant.MaskedToken())
	return nil
}

func runTenantList(cmd *cobra.Command, _ []string) error {
	if tenantService == nil {
		return errors.New("tenant service not configured")
	}

	tenants, err := tenantService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list shops: %w", err)
	}

	if len(tenants) == 0 {
		cmd.Println("No registered shops.")
		cmd.Println("Add one with: stocksync tenant add <shop>")
		return nil
	}

	cmd.Println("Registered shops:")
	cmd.Println()
	for _, t := range tenants {
		cmd.Printf("  %s\n", t.Shop)
		cmd.Printf("    Token: %s\n", t.MaskedToken())
		cmd.Printf("    Updated: %s\n", t.UpdatedAt.Format(time.RFC3339))
	}

	return nil
}

func runTenantRemove(cmd *cobra.Command, args []string) error {
	if tenantService == nil {
		return errors.New("tenant service not configured")
	}

	shop := args[0]
	if err := tenantService.Remove(cmd.Context(), shop); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("shop %s is not registered", shop)
		}
		return fmt.Errorf("failed to remove shop: %w", err)
	}

	cmd.Printf("Shop %s removed.\n", shop)
	return nil
}

// readSecret reads a line without echo when in is a terminal.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readSecret(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	return readLine(bufio.NewReader(in))
}

func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
