package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/robpurser/sitecheck/server"
	"github.com/spf13/cobra"
)

var shutdownSignals = []os.Signal{os.Interrupt}

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the bundled copy of the site",

	Run: func(cmd *cobra.Command, args []string) {
		listenAddress, _ := cmd.Flags().GetString("listen-address")
		logFormat, _ := cmd.Flags().GetString("log-format")

		logger := setupLogger(logFormat)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		interruptChan := make(chan os.Signal, 1)
		signal.Notify(interruptChan, shutdownSignals...)
		go func() {
			s := <-interruptChan
			signal.Reset() // Only listen for one interrupt. If another interrupt signal is received allow it to terminate the program.
			logger.Info().Str("signal", s.String()).Msg("shutdown signal received")
			cancel()
		}()

		site, err := server.NewServer(listenAddress, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("Could not create web server")
		}

		err = site.Run(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen-address", "l", "127.0.0.1:8080", "The address to listen on for HTTP requests.")
}
