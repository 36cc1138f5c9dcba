package main

import (
	"github.com/spf13/cobra"
	"github.com/zfogg/blogicum/internal/models"
)

func newCategoryCmd(a *app) *cobra.Command {
	categoryCmd := &cobra.Command{
		Use:   "category",
		Short: "Manage categories",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := a.categories.ListCategories(cmd.Context(), false)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(categories))
			for _, c := range categories {
				rows = append(rows, []string{id(c.ID), c.Slug, c.Title, yesNo(c.IsPublished)})
			}
			return a.printTable([]string{"ID", "SLUG", "TITLE", "PUBLISHED"}, rows)
		},
	}

	var description string
	var unpublished bool
	createCmd := &cobra.Command{
		Use:   "create <slug> <title>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category := models.Category{
				Slug:        args[0],
				Title:       args[1],
				Description: description,
				IsPublished: !unpublished,
			}
			if err := a.categories.CreateCategory(cmd.Context(), &category); err != nil {
				return err
			}
			a.printf("Created category %s (id %d)\n", category.Slug, category.ID)
			return nil
		},
	}
	createCmd.Flags().StringVar(&description, "description", "", "Category description")
	createCmd.Flags().BoolVar(&unpublished, "unpublished", false, "Create the category hidden")

	setPublished := func(published bool) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			if err := a.categories.SetPublished(cmd.Context(), args[0], published); err != nil {
				return err
			}
			a.printf("Category %s published: %s\n", args[0], yesNo(published))
			return nil
		}
	}

	categoryCmd.AddCommand(
		listCmd,
		createCmd,
		&cobra.Command{Use: "publish <slug>", Short: "Publish a category", Args: cobra.ExactArgs(1), RunE: setPublished(true)},
		&cobra.Command{Use: "unpublish <slug>", Short: "Hide a category and its posts", Args: cobra.ExactArgs(1), RunE: setPublished(false)},
	)
	return categoryCmd
}

func newLocationCmd(a *app) *cobra.Command {
	locationCmd := &cobra.Command{
		Use:   "location",
		Short: "Manage locations",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			locations, err := a.locations.ListLocations(cmd.Context(), false)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(locations))
			for _, l := range locations {
				rows = append(rows, []string{id(l.ID), l.Name, yesNo(l.IsPublished)})
			}
			return a.printTable([]string{"ID", "NAME", "PUBLISHED"}, rows)
		},
	}

	var unpublished bool
	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location := models.Location{Name: args[0], IsPublished: !unpublished}
			if err := a.locations.CreateLocation(cmd.Context(), &location); err != nil {
				return err
			}
			a.printf("Created location %q (id %d)\n", location.Name, location.ID)
			return nil
		},
	}
	createCmd.Flags().BoolVar(&unpublished, "unpublished", false, "Create the location hidden")

	setPublished := func(published bool) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			locationID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.locations.SetPublished(cmd.Context(), locationID, published); err != nil {
				return err
			}
			a.printf("Location %d published: %s\n", locationID, yesNo(published))
			return nil
		}
	}

	locationCmd.AddCommand(
		listCmd,
		createCmd,
		&cobra.Command{Use: "publish <id>", Short: "Publish a location", Args: cobra.ExactArgs(1), RunE: setPublished(true)},
		&cobra.Command{Use: "unpublish <id>", Short: "Hide a location name on posts", Args: cobra.ExactArgs(1), RunE: setPublished(false)},
	)
	return locationCmd
}
