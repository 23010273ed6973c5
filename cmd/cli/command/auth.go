package command

import (
	"fmt"
	"time"

	"threadhub/cmd/cli/authentication"
	"threadhub/cmd/cli/command/client"
	"threadhub/cmd/cli/command/state"

	"github.com/spf13/cobra"
)

// auth.go handles authentication commands for the threadhub CLI application.
// auth login, register, logout and token refresh commands live here.

// authCmd represents the auth command for authentication related subcommands
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  `Authenticate with the threadhub API server. Supports login, registration, logout.`,
}

// registerCmd represents the register command
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new threadhub account",
	RunE: func(cmd *cobra.Command, args []string) error {
		// get data from flags
		var c client.RegisterRequest
		c.Username, _ = cmd.Flags().GetString("username")
		c.Password, _ = cmd.Flags().GetString("password")
		c.Email, _ = cmd.Flags().GetString("email")

		// call API to register user
		httpClient := client.NewHTTPClient(apiURL)
		response, err := httpClient.Register(&c)
		if err != nil {
			return fmt.Errorf("registration process failed: %w", err)
		}

		// return confirmation message
		fmt.Println("✓ Registration successful! Please login to continue.")
		fmt.Printf("UserID: %s\n", response.UserID)
		return nil
	},
}

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to your threadhub account",
	RunE: func(cmd *cobra.Command, args []string) error {
		// get data from flags
		var c client.LoginRequest
		c.Username, _ = cmd.Flags().GetString("username")
		c.Password, _ = cmd.Flags().GetString("password")

		// call API to login user
		httpClient := client.NewHTTPClient(apiURL)
		response, err := httpClient.Login(&c)
		if err != nil {
			return fmt.Errorf("login process failed: %w", err)
		}

		// save tokens to the system keyring
		err = authentication.StoreTokens(&authentication.StoredCredentials{
			AccessToken:  response.AccessToken,
			RefreshToken: response.RefreshToken,
			Username:     response.Username,
			ExpiresAt:    time.Now().Unix() + response.ExpiresIn,
		})
		if err != nil {
			return fmt.Errorf("failed to store credentials: %w", err)
		}

		// return confirmation message
		fmt.Printf("✓ Successfully logged in as %s!\n", response.Username)
		return nil
	},
}

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout from your threadhub account",
	Run: func(cmd *cobra.Command, args []string) {
		// clear tokens from the system keyring and local thread state
		state.ClearThreadState()
		if err := authentication.DeleteTokens(); err != nil {
			fmt.Println("No stored session to clear.")
			return
		}
		fmt.Println("✓ Successfully logged out.")
	},
}

// refreshCmd represents the token refresh command
var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh your access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := authentication.GetTokens()
		if err != nil {
			return fmt.Errorf("not logged in: %w", err)
		}

		httpClient := client.NewHTTPClient(apiURL)
		response, err := httpClient.RefreshToken(&client.RefreshTokenRequest{RefreshToken: creds.RefreshToken})
		if err != nil {
			return fmt.Errorf("token refresh failed: %w", err)
		}

		creds.AccessToken = response.AccessToken
		creds.RefreshToken = response.RefreshToken
		creds.ExpiresAt = time.Now().Unix() + response.ExpiresIn
		if err := authentication.StoreTokens(creds); err != nil {
			return fmt.Errorf("failed to store credentials: %w", err)
		}

		fmt.Println("✓ Access token refreshed.")
		return nil
	},
}

// init function to add auth commands to root command
func init() {
	// add subcommands to authCmd
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(refreshCmd)

	// add flags for register command
	registerCmd.Flags().StringP("username", "u", "", "Username for the new account")
	registerCmd.Flags().StringP("password", "p", "", "Password for the new account")
	registerCmd.Flags().StringP("email", "e", "", "Email address for the new account")
	registerCmd.MarkFlagRequired("username")
	registerCmd.MarkFlagRequired("password")
	registerCmd.MarkFlagRequired("email")

	// add flags for login command
	loginCmd.Flags().StringP("username", "u", "", "Username for the account")
	loginCmd.Flags().StringP("password", "p", "", "Password for the account")
	loginCmd.MarkFlagRequired("username")
	loginCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(authCmd)
}
