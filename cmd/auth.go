package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/postline/cli/internal/auth"
	"github.com/postline/cli/internal/media"
)

var (
	authMethod      string
	authWorkspaceID string
	authSecret      string
	authStore       string
	verifyBaseURL   string
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Postline authentication",
	Long: `Manage authentication credentials for the Postline API.

Examples:
  # Interactive login
  postline auth

  # Non-interactive login with a workspace API key
  postline auth login --method apikey --workspace-id UUID --secret KEY --store home

  # Check auth status
  postline auth status

  # Remove stored credentials
  postline auth logout`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAuthLogin(cmd)
	},
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with Postline",
	Long: `Log in to the Postline API. Interactive by default when run in a terminal.

Non-interactive flags:
  --method apikey|token    Authentication method
  --workspace-id UUID      Workspace ID
  --secret KEY             API key or personal access token
  --store home|project     Where to save credentials`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAuthLogin(cmd)
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current authentication state",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, creds := auth.CredentialStatus()
		fmt.Println(status)
		if creds != nil {
			fmt.Printf("  Workspace: %s\n", creds.WorkspaceID)
			fmt.Printf("  Method: %s\n", creds.Method)
			var masked string
			if creds.Method == auth.DirectAPIKey {
				masked = creds.APIKey
			} else {
				masked = creds.Token
			}
			if len(masked) > 8 {
				masked = masked[:4] + "..." + masked[len(masked)-4:]
			}
			fmt.Printf("  Secret: %s\n", masked)
		}
		return nil
	},
}

var authVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify stored credentials are valid",
	Long: `Verify that the stored credentials can authenticate with the Postline API.

This command does not save or modify any credentials. It's useful for CI/CD
pipelines to validate authentication before uploading.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAuthVerify()
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := auth.RemoveCredentials(); err != nil {
			return fmt.Errorf("failed to remove credentials: %w", err)
		}
		fmt.Println("Credentials removed successfully")
		return nil
	},
}

func runAuthLogin(cmd *cobra.Command) error {
	interactive := isInteractive() && authMethod == "" && authWorkspaceID == "" && authSecret == ""

	var method auth.AuthMethod
	var workspaceID, secret string
	var store auth.CredentialStore

	if interactive {
		var err error
		method, workspaceID, secret, store, err = interactiveLogin()
		if err != nil {
			return err
		}
	} else {
		// Non-interactive: use flags
		if authMethod == "" {
			authMethod = "apikey"
		}
		m, err := auth.ValidateMethod(authMethod)
		if err != nil {
			return err
		}
		method = m

		if authWorkspaceID == "" && method == auth.DirectAPIKey {
			return fmt.Errorf("--workspace-id is required in non-interactive mode")
		}
		if authWorkspaceID != "" {
			if _, err := uuid.Parse(authWorkspaceID); err != nil {
				return fmt.Errorf("--workspace-id must be a valid UUID, got: %s", authWorkspaceID)
			}
		}
		workspaceID = authWorkspaceID

		if authSecret == "" {
			return fmt.Errorf("--secret is required in non-interactive mode")
		}
		secret = authSecret

		if authStore == "" {
			authStore = "home"
		}
		s, err := auth.ValidateStore(authStore)
		if err != nil {
			return err
		}
		store = s
	}

	creds := &auth.Credentials{
		WorkspaceID: workspaceID,
		Method:      method,
	}
	switch method {
	case auth.DirectAPIKey:
		creds.APIKey = secret
	case auth.BearerToken:
		creds.Token = secret
	}

	// Test authentication
	fmt.Println("Testing authentication...")
	client := media.NewClient(verifyBaseURL, creds)
	if _, err := client.VerifyAuth(context.Background()); err != nil {
		return fmt.Errorf("authentication test failed: %w", err)
	}
	fmt.Println("Authentication successful")

	// Save credentials
	if err := auth.SaveCredentials(creds, store); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	fmt.Printf("Credentials saved to %s store\n", store)

	return nil
}

func interactiveLogin() (auth.AuthMethod, string, string, auth.CredentialStore, error) {
	reader := bufio.NewReader(os.Stdin)

	// 1. Select auth method
	fmt.Println("Select authentication method:")
	fmt.Println("  [1] Workspace API Key (recommended)")
	fmt.Println("  [2] Personal access token")
	fmt.Print("Choice [1]: ")
	choice, _ := reader.ReadString('\n')
	choice = strings.TrimSpace(choice)

	var method auth.AuthMethod
	switch choice {
	case "", "1":
		method = auth.DirectAPIKey
	case "2":
		method = auth.BearerToken
	default:
		return "", "", "", "", fmt.Errorf("invalid choice: %s", choice)
	}

	// 2. Workspace ID
	var workspaceID string
	if method == auth.DirectAPIKey {
		fmt.Print("Workspace ID (UUID): ")
		workspaceID, _ = reader.ReadString('\n')
		workspaceID = strings.TrimSpace(workspaceID)
		if _, err := uuid.Parse(workspaceID); err != nil {
			return "", "", "", "", fmt.Errorf("invalid UUID: %s", workspaceID)
		}
	}

	// 3. Secret
	var prompt string
	if method == auth.DirectAPIKey {
		prompt = "API Key: "
	} else {
		prompt = "Access token: "
	}
	fmt.Print(prompt)
	secret, _ := reader.ReadString('\n')
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return "", "", "", "", fmt.Errorf("secret cannot be empty")
	}

	// 4. Storage location
	fmt.Println("Where to store credentials?")
	fmt.Println("  [1] Home directory ~/.postline/ (default)")
	fmt.Println("  [2] Project .postline/")
	fmt.Print("Choice [1]: ")
	storeChoice, _ := reader.ReadString('\n')
	storeChoice = strings.TrimSpace(storeChoice)

	var store auth.CredentialStore
	switch storeChoice {
	case "", "1":
		store = auth.StoreHome
	case "2":
		store = auth.StoreProject
	default:
		return "", "", "", "", fmt.Errorf("invalid choice: %s", storeChoice)
	}

	return method, workspaceID, secret, store, nil
}

func runAuthVerify() error {
	creds, err := auth.LoadCredentials()
	if err != nil {
		return fmt.Errorf("no credentials found: %w\nRun 'postline auth login' to authenticate", err)
	}

	fmt.Printf("Verifying credentials for workspace %s...\n", creds.WorkspaceID)

	client := media.NewClient(verifyBaseURL, creds)
	result, err := client.VerifyAuth(context.Background())
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	fmt.Printf("Authentication verified successfully\n")
	fmt.Printf("  Workspace: %s\n", result.WorkspaceID)
	return nil
}

func isInteractive() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

func init() {
	authLoginCmd.Flags().StringVar(&authMethod, "method", "", "Authentication method: apikey, token")
	authLoginCmd.Flags().StringVar(&authWorkspaceID, "workspace-id", "", "Workspace ID (UUID)")
	authLoginCmd.Flags().StringVar(&authSecret, "secret", "", "API key or personal access token")
	authLoginCmd.Flags().StringVar(&authStore, "store", "home", "Credential storage: home, project")

	// Also add flags to the parent auth command for `postline auth --method ...`
	authCmd.Flags().StringVar(&authMethod, "method", "", "Authentication method: apikey, token")
	authCmd.Flags().StringVar(&authWorkspaceID, "workspace-id", "", "Workspace ID (UUID)")
	authCmd.Flags().StringVar(&authSecret, "secret", "", "API key or personal access token")
	authCmd.Flags().StringVar(&authStore, "store", "home", "Credential storage: home, project")

	authVerifyCmd.Flags().StringVar(&verifyBaseURL, "base-url", media.DefaultBaseURL, "Base URL for the Postline API")

	authCmd.AddCommand(authLoginCmd, authStatusCmd, authLogoutCmd, authVerifyCmd)
	rootCmd.AddCommand(authCmd)
}
