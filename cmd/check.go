package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/jackc/envconf"
	"github.com/robpurser/sitecheck/smoke"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var checkEnvconf = envconf.New()

// checkCmd represents the check command.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the site serves the snake game page",

	Run: func(cmd *cobra.Command, args []string) {
		// Get config from the environment.
		siteURL := checkEnvconf.Value("SITE_URL")
		browserBin := checkEnvconf.Value("BROWSER_BIN")

		static, _ := cmd.Flags().GetBool("static")
		logFormat, _ := cmd.Flags().GetString("log-format")

		logger := setupLogger(logFormat)

		ctx, cancel := signal.NotifyContext(context.Background(), shutdownSignals...)
		defer cancel()

		exp := smoke.SnakeGame.WithURL(siteURL)

		var err error
		if static {
			err = checkStatic(ctx, exp)
		} else {
			err = checkBrowser(ctx, exp, browserBin, logger)
		}
		if err != nil {
			failureEvent(logger, err).Msg("Site check failed")
			cancel()
			os.Exit(1)
		}

		logger.Info().Str("url", exp.URL).Msg("Site check passed")
	},
}

// checkBrowser runs the check in a headless browser. The browser is closed before it returns.
func checkBrowser(ctx context.Context, exp smoke.Expectations, browserBin string, logger *zerolog.Logger) error {
	l := launcher.New().Context(ctx).Headless(true)
	if browserBin != "" {
		l = l.Bin(browserBin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	defer l.Cleanup()

	browser := rod.New().Context(ctx).ControlURL(controlURL)
	err = browser.Connect()
	if err != nil {
		l.Kill()
		return fmt.Errorf("connect to browser: %w", err)
	}
	defer func() {
		err := browser.Close()
		if err != nil {
			logger.Warn().Err(err).Msg("failed to close browser")
			l.Kill()
		}
	}()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return fmt.Errorf("open page: %w", err)
	}

	return smoke.Check(page, exp)
}

// checkStatic runs the check against the served HTML without a browser.
func checkStatic(ctx context.Context, exp smoke.Expectations) error {
	body, err := smoke.Fetch(ctx, http.DefaultClient, exp.URL)
	if err != nil {
		return err
	}
	defer body.Close()

	return smoke.CheckDocument(body, exp)
}

// failureEvent returns an error event describing which check failed.
func failureEvent(logger *zerolog.Logger, err error) *zerolog.Event {
	event := logger.Error().Err(err)

	var navigationErr *smoke.NavigationError
	var notFoundErr *smoke.ElementNotFoundError
	var assertionErr *smoke.AssertionError
	switch {
	case errors.As(err, &navigationErr):
		event = event.Str("failure", "navigation").Str("url", navigationErr.URL)
	case errors.As(err, &notFoundErr):
		event = event.Str("failure", "element_not_found").Str("element_id", notFoundErr.ID)
	case errors.As(err, &assertionErr):
		event = event.Str("failure", "assertion").Str("check", assertionErr.Check).Str("expected", assertionErr.Expected)
	}

	return event
}

func init() {
	checkEnvconf.Register(envconf.Item{Name: "SITE_URL", Default: smoke.DefaultURL, Description: "The URL of the page to check"})
	checkEnvconf.Register(envconf.Item{Name: "BROWSER_BIN", Default: "", Description: "Path to the browser executable. If empty one is found or downloaded."})

	long := &strings.Builder{}
	long.WriteString("Check that the site serves the snake game page.\n\nConfigure with the following environment variables:\n\n")
	for _, item := range checkEnvconf.Items() {
		long.WriteString(fmt.Sprintf("  %s\n    Default: %s\n    %s\n\n", item.Name, item.Default, item.Description))
	}
	checkCmd.Long = long.String()

	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().Bool("static", false, "Check the served HTML without a browser.")
}
