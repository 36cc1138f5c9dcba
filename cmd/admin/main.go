package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/zfogg/blogicum/internal/config"
	"github.com/zfogg/blogicum/internal/database"
	"github.com/zfogg/blogicum/internal/repository"
	"github.com/zfogg/blogicum/internal/visibility"
	"gorm.io/gorm"
)

// app holds the repositories the commands work on. They are opened from
// the environment on first use unless already set.
type app struct {
	out    io.Writer
	output string // "text" or "json"

	categories repository.CategoryRepository
	locations  repository.LocationRepository
	posts      repository.PostRepository
	comments   repository.CommentRepository
	users      repository.UserRepository
}

func (a *app) use(db *gorm.DB, policy *visibility.Policy) {
	a.categories = repository.NewCategoryRepository(db)
	a.locations = repository.NewLocationRepository(db)
	a.posts = repository.NewPostRepository(db, policy)
	a.comments = repository.NewCommentRepository(db)
	a.users = repository.NewUserRepository(db)
}

func (a *app) connect() error {
	if a.posts != nil {
		return nil
	}

	cfg, _, err := config.Load()
	if err != nil {
		return err
	}
	if err := database.Initialize(cfg); err != nil {
		return err
	}
	if err := database.Migrate(); err != nil {
		return err
	}

	a.use(database.DB, visibility.NewPolicy(cfg.ShowUncategorized))
	return nil
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "blogicum-admin",
		Short: "Blogicum admin - manage categories, locations, posts, comments and users",
		Long: `Blogicum admin works directly on the database configured by the
environment (DATABASE_DRIVER, DATABASE_URL, DB_*). It covers what the site
itself does not expose: moderation and taxonomy.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.output != "text" && a.output != "json" {
				return fmt.Errorf("unknown output format %q", a.output)
			}
			return a.connect()
		},
	}
	rootCmd.SetOut(a.out)
	rootCmd.PersistentFlags().StringVar(&a.output, "output", "text", "Output format: text or json")

	rootCmd.AddCommand(
		newCategoryCmd(a),
		newLocationCmd(a),
		newPostCmd(a),
		newCommentCmd(a),
		newUserCmd(a),
	)
	return rootCmd
}

func main() {
	a := &app{out: os.Stdout}
	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	_ = database.Close()
}
