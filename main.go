package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"yt-channel-report/domain/dto"
	"yt-channel-report/infrastructure/configuration"
	"yt-channel-report/infrastructure/logger"
	"yt-channel-report/infrastructure/utils"
	httpHandler "yt-channel-report/interfaces/http"
	"yt-channel-report/server"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

const usage = `Usage:
  yt-channel-report [run] --url <channel url> [--max-videos N] [--output FILE] [--format xlsx|csv|gsheet]
  yt-channel-report serve [--port N]
  yt-channel-report token [--subject NAME] [--ttl 24h]
`

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
		os.Exit(2)
	}
}

func main() {
	defer recoverPanic()

	// Load env from files (non-destructive; OS env still has precedence)
	if loaded := configuration.LoadEnvFromFile("config.env", ".env"); len(loaded) > 0 {
		logger.GetLogger().WithField("files", loaded).Debug("Loaded env files")
		configuration.LoadConfig()
	}

	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute dispatches to a subcommand and returns the process exit code
func execute(args []string, stdout, stderr io.Writer) int {
	cmd := "run"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "run":
		err = runCommand(args, stdout)
	case "serve":
		err = serveCommand(args)
	case "token":
		err = tokenCommand(args, stdout)
	case "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func runCommand(args []string, stdout io.Writer) error {
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	channelURL := fs.StringP("url", "u", "", "YouTube channel URL, e.g. https://www.youtube.com/@handle")
	maxVideos := fs.Int64P("max-videos", "n", configuration.C.Report.MaxVideos, "maximum number of videos to include")
	output := fs.StringP("output", "o", "", "output file (or spreadsheet id for gsheet)")
	format := fs.StringP("format", "f", "", "report format: xlsx, csv or gsheet")
	keepPartial := fs.Bool("keep-partial-comments", configuration.C.Report.KeepPartialComments, "keep comments fetched before a failing call")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *channelURL == "" && fs.NArg() > 0 {
		*channelURL = fs.Arg(0)
	}
	if *channelURL == "" {
		return errors.New("a channel URL is required (--url)")
	}
	configuration.C.Report.KeepPartialComments = *keepPartial

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.report.Generate(ctx, &dto.ReportRequest{
		ChannelURL: *channelURL,
		MaxVideos:  *maxVideos,
		FileName:   *output,
		Format:     *format,
	})
	if err != nil {
		return err
	}

	if result.Degraded.Videos {
		fmt.Fprintln(stdout, "Warning: video details could not be fetched; the video sheet is empty.")
	}
	if result.Degraded.Comments {
		fmt.Fprintln(stdout, "Warning: comments could not be fetched completely.")
	}
	fmt.Fprintf(stdout, "Data saved to '%s'.\n", result.Location)
	return nil
}

func serveCommand(args []string) error {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	port := fs.IntP("port", "p", configuration.C.App.Port, "HTTP port")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	var youtubeAuthHandler httpHandler.IYouTubeAuthHandler
	if ytConfig, _ := configuration.GetYouTubeConfig(); ytConfig != nil && ytConfig.ClientID != "" && ytConfig.ClientSecret != "" {
		h, err := httpHandler.NewYouTubeAuthHandler(ytConfig, configuration.TokenFile)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("YouTube OAuth flow disabled")
		} else {
			youtubeAuthHandler = h
		}
	}

	var reportHandler httpHandler.IReportHandler
	healthChecks := map[string]httpHandler.HealthCheck{}
	app, err := newApplication(ctx)
	switch {
	case err == nil:
		defer app.Close()
		reportHandler = httpHandler.NewReportHandler(app.report)
		healthChecks = app.healthChecks
	case errors.Is(err, configuration.ErrMissingCredentials) && youtubeAuthHandler != nil:
		logger.GetLogger().Warn("No YouTube credentials yet - serving only /auth/youtube until restart")
	default:
		return err
	}

	if os.Getenv("ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := server.InitiateRouter(
		reportHandler,
		httpHandler.NewHealthHandler(healthChecks),
		youtubeAuthHandler,
		configuration.C.App.SecretKey,
		configuration.C.App.CORSOrigins,
	)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", *port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	logger.GetLogger().WithField("port", *port).Info("Starting application")
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)

	if err := g.Wait(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		return err
	}
	return nil
}

func tokenCommand(args []string, stdout io.Writer) error {
	fs := pflag.NewFlagSet("token", pflag.ContinueOnError)
	subject := fs.String("subject", "cli", "token subject")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	token, err := issueToken(configuration.C.App.SecretKey, *subject, *ttl, utils.GetCurrentTime())
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, token)
	return nil
}

func issueToken(secretKey, subject string, ttl time.Duration, now time.Time) (string, error) {
	if secretKey == "" {
		return "", errors.New("app.secretKey (SECRET_KEY) is not configured")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("ttl must be positive, got %s", ttl)
	}
	return utils.GenerateToken(map[string]interface{}{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}, secretKey)
}
