package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marcus-crane/curator/archive"
	"github.com/marcus-crane/curator/config"
	"github.com/marcus-crane/curator/db"
	"github.com/marcus-crane/curator/download"
	"github.com/marcus-crane/curator/embedding"
	"github.com/marcus-crane/curator/fetch"
	"github.com/marcus-crane/curator/jobs"
	"github.com/marcus-crane/curator/notify"
	"github.com/marcus-crane/curator/recommend"
	"github.com/marcus-crane/curator/utils"
	"github.com/marcus-crane/curator/web"
)

// App holds everything the commands need. Tests swap out the pieces that
// talk to the network.
type App struct {
	Config      config.Config
	Store       db.Store
	Pipeline    jobs.Pipeline
	Recommender *recommend.Recommender
	Now         func() time.Time
	// Serve runs the web front end until ctx is done
	Serve func(ctx context.Context, addr string) error
}

// NewApp wires the production dependencies around an open store
func NewApp(cfg config.Config, store db.Store) *App {
	httpClient := utils.NewHTTPClient(cfg.UserAgent, cfg.RequestTimeout())
	client := archive.NewClient(httpClient, cfg.RPSLimit)
	recommender := recommend.NewRecommender(store, embedding.NewHashingEmbedder())

	app := &App{
		Config: cfg,
		Store:  store,
		Pipeline: jobs.Pipeline{
			Fetcher:    fetch.NewFetcher(client, store, cfg),
			Downloader: download.NewDownloader(client, store, cfg.CapBytes()),
			Notifier:   notify.New(cfg.Pushover),
		},
		Recommender: recommender,
		Now:         time.Now,
	}
	app.Serve = func(ctx context.Context, addr string) error {
		return web.NewServer(store, recommender, cfg.CorsOrigins).ListenAndServe(ctx, addr)
	}
	return app
}

func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "curator",
		Short: "curator - short clips from the Internet Archive",
		Long: `curator searches the Internet Archive for short clips every day, downloads
them under a daily byte cap and learns what you like from your ratings.

Use "curator [command] --help" to see what each command does.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newFetchCmd(app),
		newListCmd(app),
		newRateCmd(app),
		newRatingsCmd(app),
		newRecommendCmd(app),
		newWebCmd(app),
		newScheduleCmd(app),
	)

	return rootCmd
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func printItem(cmd *cobra.Command, id, title string) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s - %s\n", id, title)
}
