package cli

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/marcus-crane/curator/jobs"
	"github.com/marcus-crane/curator/models"
)

var failed = color.New(color.FgRed)

func newFetchCmd(app *App) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch today's candidates and download them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := jobs.Run(cmd.Context(), app.Pipeline, dir)
			if err != nil {
				return fmt.Errorf("failed to fetch candidates: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Fetched %d candidates\n", len(summary.Fetched))
			for _, result := range summary.Results {
				if result.Err != nil {
					failed.Fprintf(cmd.ErrOrStderr(), "Failed %s: %v\n", result.ItemID, result.Err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Downloaded %s -> %s\n", result.ItemID, result.Path)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", app.Config.DownloadDir, "directory to download into")
	return cmd
}

func newListCmd(app *App) *cobra.Command {
	var n int
	var today bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recently fetched items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var items []models.Item
			var err error
			if today {
				items, err = app.Store.ListItemsAddedOn(app.now(), n)
			} else {
				items, err = app.Store.ListItems(n)
			}
			if err != nil {
				return err
			}
			for _, item := range items {
				printItem(cmd, item.ID, item.Title)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "number", "n", 10, "number of items")
	cmd.Flags().BoolVar(&today, "today", false, "only items fetched today (UTC)")
	return cmd
}

func newRateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rate [item-id] [score]",
		Short: fmt.Sprintf("Rate an item (%d-%d)", models.MinScore, models.MaxScore),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			score, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid score %q: %w", args[1], models.ErrInvalidRating)
			}
			if err := models.ValidateScore(score); err != nil {
				return err
			}
			if _, err := app.Store.GetItem(id); err != nil {
				return err
			}
			if err := app.Store.RecordRating(models.Rating{ItemID: id, Score: score}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rated %s %d\n", id, score)
			return nil
		},
	}
}

func newRatingsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ratings [item-id]",
		Short: "Show every rating recorded for an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ratings, err := app.Store.ListRatings(args[0])
			if err != nil {
				return err
			}
			for _, rating := range ratings {
				fmt.Fprintf(cmd.OutOrStdout(), "%d %s\n", rating.Score, rating.RatedAt.UTC().Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

func newRecommendCmd(app *App) *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Print recommended items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := app.Recommender.Recommend(n)
			if err != nil {
				return err
			}
			for _, item := range items {
				printItem(cmd, item.ID, item.Title)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "number", "n", 10, "number of recommendations")
	return cmd
}

func newWebCmd(app *App) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "web",
		Short: "Run the web UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Serve(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", app.Config.WebAddr, "address to listen on")
	return cmd
}

func newScheduleCmd(app *App) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the fetch and download batch every day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Config
			cfg.ScheduleAt = at
			s, err := jobs.SetupInBackground(cmd.Context(), app.Pipeline, cfg)
			if err != nil {
				return fmt.Errorf("failed to schedule daily batch: %w", err)
			}
			s.StartAsync()
			fmt.Fprintf(cmd.OutOrStdout(), "Daily batch scheduled for %s UTC\n", at)

			<-cmd.Context().Done()
			s.Stop()
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", app.Config.ScheduleAt, "time of day to run (HH:MM, UTC)")
	return cmd
}
