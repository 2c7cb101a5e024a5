// cmd/fetcher/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"reddit-fetcher/internal/client"
	"reddit-fetcher/internal/config"
	"reddit-fetcher/internal/logging"
	"reddit-fetcher/internal/models"
	"reddit-fetcher/internal/output"
)

type options struct {
	subreddit string
	listing   models.Listing
	maxItems  int
	limit     int
	topWindow models.TimeWindow
	output    output.Format
}

var errUsage = errors.New("usage error")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	logger := logging.New(stderr, cfg.LogLevel)

	redditClient, err := client.NewRedditClient(cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to create Reddit client: %v\n", err)
		return 1
	}

	if err := fetch(ctx, redditClient, opts, stdout); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func fetch(ctx context.Context, c client.RedditClientInterface, opts options, stdout io.Writer) error {
	posts := c.ListSubredditPosts(ctx, client.ListingRequest{
		Subreddit:  opts.subreddit,
		Listing:    opts.listing,
		PageSize:   opts.limit,
		MaxItems:   opts.maxItems,
		TimeWindow: opts.topWindow,
	})
	return output.Write(stdout, opts.output, posts)
}

// parseArgs accepts flags before or after the subreddit argument.
func parseArgs(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("fetcher", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Fetch posts from a subreddit using Reddit official API")
		fmt.Fprintln(fs.Output(), "\nUsage: fetcher [flags] <subreddit>")
		fs.PrintDefaults()
	}

	listing := fs.String("listing", "new", "Listing type (hot, new, top)")
	maxItems := fs.Int("max-items", 100, "Max posts to fetch")
	limit := fs.Int("limit", 100, "Page size (<=100)")
	topWindow := fs.String("top-window", "", "Time window for 'top' listing (hour, day, week, month, year, all)")
	format := fs.String("output", "jsonl", "Output format (jsonl, json)")

	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return options{}, err
		}
		if fs.NArg() == 0 {
			break
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}

	if len(positional) != 1 {
		fs.Usage()
		return options{}, fmt.Errorf("%w: expected exactly one subreddit, got %d", errUsage, len(positional))
	}

	opts := options{
		subreddit: positional[0],
		maxItems:  *maxItems,
		limit:     *limit,
	}

	var err error
	if opts.listing, err = models.ParseListing(*listing); err != nil {
		return options{}, fmt.Errorf("%w: %v", errUsage, err)
	}
	if *topWindow != "" {
		if opts.topWindow, err = models.ParseTimeWindow(*topWindow); err != nil {
			return options{}, fmt.Errorf("%w: %v", errUsage, err)
		}
	}
	if opts.output, err = output.ParseFormat(*format); err != nil {
		return options{}, fmt.Errorf("%w: %v", errUsage, err)
	}

	return opts, nil
}
