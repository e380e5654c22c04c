package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/foss4g-video/talkmeta/config"
	"github.com/foss4g-video/talkmeta/index"
	"github.com/foss4g-video/talkmeta/markdown"
	"github.com/foss4g-video/talkmeta/metadata"
	"github.com/foss4g-video/talkmeta/schedule"
	"github.com/foss4g-video/talkmeta/videofiles"
)

type options struct {
	schedules     []string
	videoFiles    string
	days          []string
	rooms         []string
	cacheSchedule bool
	profile       string
	indexPath     string
	rebuildIndex  bool
}

func main() {
	var opts options
	var debug bool
	pflag.StringArrayVarP(&opts.schedules, "schedule", "s", nil, "Path or URL of a pretalx schedule export (repeatable)")
	pflag.StringVarP(&opts.videoFiles, "videofiles-list", "v", "", "File listing <pretalx link>;<video file> per line")
	pflag.StringSliceVarP(&opts.days, "these-days-only", "d", nil, "Only process these schedule dates (YYYY-MM-DD)")
	pflag.StringSliceVarP(&opts.rooms, "these-rooms-only", "r", nil, "Only process these room folders")
	pflag.BoolVarP(&opts.cacheSchedule, "cache-schedule", "c", false, "Store fetched schedules in the cache directory")
	pflag.StringVarP(&opts.profile, "profile", "p", "", "Conference profile (YAML). Defaults to FOSS4G Europe 2024")
	pflag.StringVar(&opts.indexPath, "index-path", "", "Also index all records into the catalog at this path")
	pflag.BoolVar(&opts.rebuildIndex, "rebuild-index", false, "Start with an empty catalog")
	pflag.BoolVar(&debug, "debug", false, "Enable debug logging")
	pflag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load settings")
	}
	level, err := zerolog.ParseLevel(settings.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msgf("Invalid log level %s", settings.LogLevel)
	}
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if err := checkArgs(pflag.Args()); err != nil {
		log.Fatal().Err(err).Msg("Invalid arguments")
	}
	if len(opts.schedules) == 0 {
		log.Fatal().Msg("Please specify at least one schedule using --schedule")
	}
	if opts.videoFiles == "" {
		log.Fatal().Msg("Please specify the list of video files using --videofiles-list")
	}
	if opts.profile == "" {
		opts.profile = settings.Profile
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, settings, opts); err != nil {
		log.Fatal().Err(err).Msg("Failed to generate metadata")
	}
}

// checkArgs rejects positional arguments. List flags take one value per
// occurrence, days and rooms also accept comma separated values.
func checkArgs(args []string) error {
	if len(args) == 0 {
		return nil
	}
	return errors.Errorf("Unexpected arguments %s. Repeat the flag for every value, e.g. -s a.json -s b.json", strings.Join(args, " "))
}

func run(ctx context.Context, settings *config.Settings, opts options) error {
	profile := config.DefaultProfile()
	if opts.profile != "" {
		p, err := config.LoadProfile(opts.profile)
		if err != nil {
			return err
		}
		profile = p
	}

	videos, err := videofiles.Load(opts.videoFiles)
	if err != nil {
		return err
	}
	log.Info().Int("files", videos.Len()).Msg("Loaded video files")

	sinks := metadata.MultiSink{metadata.NewEmitter(os.Stdout)}
	if opts.indexPath != "" {
		cat, err := index.Open(opts.indexPath, opts.rebuildIndex)
		if err != nil {
			return errors.Wrapf(err, "Failed to load catalog on %s", opts.indexPath)
		}
		defer cat.Close()
		sinks = append(sinks, cat)
	}

	loaderOpts := []schedule.LoaderOption{
		schedule.WithHTTPClient(&http.Client{Timeout: settings.FetchTimeout}),
		schedule.WithUserAgent(settings.UserAgent),
	}
	if opts.cacheSchedule {
		loaderOpts = append(loaderOpts, schedule.WithCache(settings.CacheDir))
	}
	loader := schedule.NewLoader(loaderOpts...)

	walker := metadata.NewWalker(profile, videos, markdown.NewPlainText(), sinks,
		metadata.OnlyDays(opts.days),
		metadata.OnlyRooms(opts.rooms),
	)

	for _, source := range opts.schedules {
		doc, err := loader.Load(ctx, source)
		if err != nil {
			return err
		}
		if _, err := walker.Walk(doc); err != nil {
			return errors.Wrapf(err, "Failed to process schedule %s", source)
		}
	}
	return nil
}
