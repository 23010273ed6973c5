package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"threadhub/cmd/cli/command/state"
	"threadhub/internal/engine"

	"github.com/spf13/cobra"
)

// comment.go drives the discussion engine from the terminal. Every command
// loads the thread first so the mutation is validated against the current
// tree, and prints the refreshed thread afterwards.

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Comment thread commands",
	Long:  `Take part in a post's discussion: view the thread, post comments and replies, edit, delete, like.`,
}

var viewCmd = &cobra.Command{
	Use:   "view [post-id]",
	Short: "View the comment thread of a post (defaults to the last viewed one)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		postID, err := resolvePostID(args)
		if err != nil {
			return err
		}

		s := newSession()
		defer s.store.Close()

		if err := s.reconciler.InitialLoad(context.Background(), postID); err != nil {
			return fmt.Errorf("failed to load thread: %w", err)
		}

		// Remember the thread so the next view can omit the post ID
		state.SaveThreadState(&state.ThreadState{
			PostID:   postID,
			Category: category,
			ViewedAt: time.Now(),
		})

		all, _ := cmd.Flags().GetBool("all")
		printThread(s, all)
		return nil
	},
}

// resolvePostID takes the post ID from the arguments, falling back to the
// last viewed thread when none is given.
func resolvePostID(args []string) (int64, error) {
	if len(args) > 0 {
		postID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid post ID: %w", err)
		}
		return postID, nil
	}

	saved, err := state.LoadThreadState()
	if err != nil || saved == nil {
		return 0, fmt.Errorf("no post ID given and no previously viewed thread")
	}
	return saved.PostID, nil
}

var postCommentCmd = &cobra.Command{
	Use:   "post [post-id] [content]",
	Short: "Post a top-level comment",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		postID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid post ID: %w", err)
		}
		content := strings.Join(args[1:], " ")

		s := newSession()
		defer s.store.Close()

		if err := s.reconciler.InitialLoad(context.Background(), postID); err != nil {
			return fmt.Errorf("failed to load thread: %w", err)
		}

		identity, err := identityFromFlags(cmd)
		if err != nil {
			return err
		}

		if err := s.gateway.CreateTopLevel(context.Background(), postID, content, identity); err != nil {
			return err
		}

		printThread(s, true)
		return nil
	},
}

var replyCmd = &cobra.Command{
	Use:   "reply [post-id] [comment-id] [content]",
	Short: "Reply to a top-level comment",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		postID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid post ID: %w", err)
		}
		parentID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid comment ID: %w", err)
		}
		content := strings.Join(args[2:], " ")

		s := newSession()
		defer s.store.Close()

		if err := s.reconciler.InitialLoad(context.Background(), postID); err != nil {
			return fmt.Errorf("failed to load thread: %w", err)
		}

		identity, err := identityFromFlags(cmd)
		if err != nil {
			return err
		}

		if err := s.gateway.CreateReply(context.Background(), postID, parentID, content, identity); err != nil {
			return err
		}

		printThread(s, true)
		return nil
	},
}

var editCommentCmd = &cobra.Command{
	Use:   "edit [post-id] [comment-id] [content]",
	Short: "Edit your comment",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		postID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid post ID: %w", err)
		}
		commentID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid comment ID: %w", err)
		}
		content := strings.Join(args[2:], " ")

		s := newSession()
		defer s.store.Close()

		if err := s.reconciler.InitialLoad(context.Background(), postID); err != nil {
			return fmt.Errorf("failed to load thread: %w", err)
		}

		if err := s.gateway.UpdateContent(context.Background(), postID, commentID, content); err != nil {
			return err
		}

		printThread(s, true)
		return nil
	},
}

var deleteCommentCmd = &cobra.Command{
	Use:   "delete [post-id] [comment-id]",
	Short: "Delete your comment (guest comments need --guest-password)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		postID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid post ID: %w", err)
		}
		commentID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid comment ID: %w", err)
		}

		s := newSession()
		defer s.store.Close()

		if err := s.reconciler.InitialLoad(context.Background(), postID); err != nil {
			return fmt.Errorf("failed to load thread: %w", err)
		}

		password, _ := cmd.Flags().GetString("guest-password")
		if err := s.gateway.SoftDelete(context.Background(), postID, commentID, password); err != nil {
			return err
		}

		printThread(s, true)
		return nil
	},
}

var likeCommentCmd = &cobra.Command{
	Use:   "like [post-id] [comment-id]",
	Short: "Like or unlike a comment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		postID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid post ID: %w", err)
		}
		commentID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid comment ID: %w", err)
		}

		s := newSession()
		defer s.store.Close()

		if err := s.reconciler.InitialLoad(context.Background(), postID); err != nil {
			return fmt.Errorf("failed to load thread: %w", err)
		}

		unlike, _ := cmd.Flags().GetBool("undo")
		if err := s.gateway.ToggleLike(context.Background(), postID, commentID, unlike); err != nil {
			return err
		}

		state, _ := s.store.Like(commentID)
		fmt.Printf("✓ Comment %d now has %d like(s).\n", commentID, state.Count)
		return nil
	},
}

// identityFromFlags builds the authorship for a create from the --anonymous
// flags; without them the viewer's login is used.
func identityFromFlags(cmd *cobra.Command) (engine.Identity, error) {
	anonymous, _ := cmd.Flags().GetBool("anonymous")
	if !anonymous {
		return engine.Authenticated(), nil
	}
	nickname, _ := cmd.Flags().GetString("nickname")
	password, _ := cmd.Flags().GetString("guest-password")
	return engine.Guest(nickname, password), nil
}

// printThread renders the store's tree: replies indented under their
// parent, collapsed unless expanded (or --all), deleted nodes as
// placeholders, the newest comment marked.
func printThread(s *session, showAll bool) {
	tree := s.store.Tree()
	if len(tree) == 0 {
		fmt.Println("No comments yet.")
		return
	}

	highlighted := s.store.Highlighted()
	fmt.Printf("Thread (%d top-level comments):\n\n", len(tree))
	for _, c := range tree {
		printComment(s, c, "", highlighted)
		if len(c.Replies) > 0 {
			if showAll || s.store.Expanded(c.ID) {
				for _, r := range c.Replies {
					printComment(s, r, "    ", highlighted)
				}
			} else {
				fmt.Printf("    ... %d repl(y/ies) hidden\n", len(c.Replies))
			}
		}
		fmt.Println(strings.Repeat("-", 50))
	}
}

func printComment(s *session, c *engine.Comment, indent string, highlighted int64) {
	marker := ""
	if c.ID == highlighted {
		marker = " ← new"
	}

	if c.Deleted {
		fmt.Printf("%s[#%d] (deleted)%s\n", indent, c.ID, marker)
		return
	}

	author := c.Author.Nickname
	if c.Author.Kind == engine.AuthorAnonymous {
		author = c.Author.Label + " (guest)"
	}

	state, _ := s.store.Like(c.ID)
	fmt.Printf("%s[#%d] %s | %s\n", indent, c.ID, author, c.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("%s%s\n", indent, c.Content)
	fmt.Printf("%s♥ %d\n", indent, state.Count)
	if marker != "" {
		fmt.Printf("%s%s\n", indent, strings.TrimSpace(marker))
	}
}

func init() {
	// Add subcommands
	commentCmd.AddCommand(viewCmd)
	commentCmd.AddCommand(postCommentCmd)
	commentCmd.AddCommand(replyCmd)
	commentCmd.AddCommand(editCommentCmd)
	commentCmd.AddCommand(deleteCommentCmd)
	commentCmd.AddCommand(likeCommentCmd)

	// Flags for viewing
	viewCmd.Flags().Bool("all", false, "Expand every reply thread")

	// Identity flags for creating comments
	for _, c := range []*cobra.Command{postCommentCmd, replyCmd} {
		c.Flags().Bool("anonymous", false, "Post as a guest instead of your account")
		c.Flags().String("nickname", "", "Display name for the guest comment")
		c.Flags().String("guest-password", "", "Password protecting later deletion of the guest comment")
	}

	deleteCommentCmd.Flags().String("guest-password", "", "Password of the guest comment to delete")
	likeCommentCmd.Flags().Bool("undo", false, "Remove your like instead of adding one")

	rootCmd.AddCommand(commentCmd)
}
