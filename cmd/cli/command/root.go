package command

// root.go defines the root command for the threadhub CLI application.
// set up the global flags and shared engine wiring here.

import (
	"context"
	"fmt"
	"os"

	"threadhub/cmd/cli/authentication"
	"threadhub/internal/engine"

	"github.com/spf13/cobra"
)

var (
	apiURL   string // Global flag for API server URL
	category string // board category of the post being discussed
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "threadhub",
	Short: "threadhub - community discussion command line interface",
	Long: `threadhub is a tool to take part in community post discussions from the
terminal. It talks to the threadhub API and keeps the thread view consistent
after every change. You can:
- View the comment thread of a post
- Post comments and replies, as yourself or as a guest
- Edit and delete your comments
- Like and unlike comments

Use "threadhub command -h" to see all available commands.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err) // Print error to standard error
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags = available to all subcommands
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().StringVar(&category, "category", "general", "board category of the post")
}

// --- engine wiring shared by the comment commands ---

// session bundles one fully wired engine view of a post's thread.
type session struct {
	client     *engine.Client
	store      *engine.Store
	reconciler *engine.Reconciler
	gateway    *engine.Gateway
	viewer     engine.Viewer
}

// newSession wires client, store, reconciler and gateway together, attaching
// the stored token when the user is logged in.
func newSession() *session {
	client := engine.NewClient(apiURL)

	viewer := engine.Viewer{}
	if creds, err := authentication.GetTokens(); err == nil && creds.AccessToken != "" {
		client.SetToken(creds.AccessToken)
		viewer = engine.Viewer{LoggedIn: true, Nickname: creds.Username}
	}

	store := engine.NewStore()
	reconciler := engine.NewReconciler(client, store)
	auth := staticAuthContext{viewer: viewer}
	rules := boardRules{client: client}
	gateway := engine.NewGateway(client, store, reconciler, auth, rules, consoleSink{})

	return &session{
		client:     client,
		store:      store,
		reconciler: reconciler,
		gateway:    gateway,
		viewer:     viewer,
	}
}

// staticAuthContext resolves the viewer once at startup; the CLI process
// lives for a single action, so nothing changes mid-run.
type staticAuthContext struct {
	viewer engine.Viewer
}

func (a staticAuthContext) Viewer() engine.Viewer { return a.viewer }

// boardRules answers the allow-anonymous question from the board endpoint,
// using the --category flag for the post's board.
type boardRules struct {
	client *engine.Client
}

func (b boardRules) AllowAnonymous(ctx context.Context, postID int64) (bool, error) {
	return b.client.BoardRule(ctx, category)
}

// consoleSink prints engine messages to the terminal
type consoleSink struct{}

func (consoleSink) Success(message string) { fmt.Println("✓ " + message) }
func (consoleSink) Error(message string)   { fmt.Println("✗ " + message) }
