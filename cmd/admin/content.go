package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPostCmd(a *app) *cobra.Command {
	postCmd := &cobra.Command{
		Use:   "post",
		Short: "Moderate posts",
	}

	var categorySlug string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List every post, hidden ones included",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var categoryID *uint
			if categorySlug != "" {
				category, err := a.categories.GetCategoryBySlug(cmd.Context(), categorySlug)
				if err != nil {
					return err
				}
				categoryID = &category.ID
			}

			posts, err := a.posts.ListAllPosts(cmd.Context(), categoryID)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(posts))
			for _, p := range posts {
				category := "-"
				if p.Category != nil {
					category = p.Category.Slug
				}
				rows = append(rows, []string{
					id(p.ID),
					truncateString(p.Title, 40),
					p.Author.Username,
					category,
					formatTime(p.PubDate),
					yesNo(p.IsPublished),
					fmt.Sprint(p.CommentCount),
				})
			}
			return a.printTable([]string{"ID", "TITLE", "AUTHOR", "CATEGORY", "PUB_DATE", "PUBLISHED", "COMMENTS"}, rows)
		},
	}
	listCmd.Flags().StringVar(&categorySlug, "category", "", "Only posts in the category with this slug")

	setPublished := func(published bool) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			postID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.posts.SetPublished(cmd.Context(), postID, published); err != nil {
				return err
			}
			a.printf("Post %d published: %s\n", postID, yesNo(published))
			return nil
		}
	}

	setAuthorCmd := &cobra.Command{
		Use:   "set-author <id> <username>",
		Short: "Reassign a post to another user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID, err := parseID(args[0])
			if err != nil {
				return err
			}
			user, err := a.users.GetUserByUsername(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			if err := a.posts.SetAuthor(cmd.Context(), postID, user.ID); err != nil {
				return err
			}
			a.printf("Post %d now belongs to %s\n", postID, user.Username)
			return nil
		},
	}

	postCmd.AddCommand(
		listCmd,
		&cobra.Command{Use: "publish <id>", Short: "Publish a post", Args: cobra.ExactArgs(1), RunE: setPublished(true)},
		&cobra.Command{Use: "unpublish <id>", Short: "Hide a post", Args: cobra.ExactArgs(1), RunE: setPublished(false)},
		setAuthorCmd,
	)
	return postCmd
}

func newCommentCmd(a *app) *cobra.Command {
	commentCmd := &cobra.Command{
		Use:   "comment",
		Short: "Inspect comments",
	}

	var postArg string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List comments, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var postID *uint
			if postArg != "" {
				n, err := parseID(postArg)
				if err != nil {
					return err
				}
				postID = &n
			}

			comments, err := a.comments.ListAllComments(cmd.Context(), postID)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(comments))
			for _, c := range comments {
				rows = append(rows, []string{
					id(c.ID),
					id(c.PostID),
					c.Author.Username,
					formatTime(c.CreatedAt),
					truncateString(c.Text, 50),
				})
			}
			return a.printTable([]string{"ID", "POST", "AUTHOR", "CREATED", "TEXT"}, rows)
		},
	}
	listCmd.Flags().StringVar(&postArg, "post", "", "Only comments on the post with this id")

	commentCmd.AddCommand(listCmd)
	return commentCmd
}

func newUserCmd(a *app) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	var revoke bool
	promoteCmd := &cobra.Command{
		Use:   "promote <username>",
		Short: "Grant staff status to a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.users.SetStaff(cmd.Context(), args[0], !revoke); err != nil {
				return err
			}
			if revoke {
				a.printf("Staff status revoked for %s\n", args[0])
			} else {
				a.printf("Staff status granted to %s\n", args[0])
			}
			return nil
		},
	}
	promoteCmd.Flags().BoolVar(&revoke, "revoke", false, "Revoke staff status instead of granting it")

	userCmd.AddCommand(promoteCmd)
	return userCmd
}
