package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-agent/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API used by the dashboard",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("listen", ":8080", "address the API listens on")

	viper.BindPFlag("api.listen", serveCmd.Flags().Lookup("listen"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, config := setup()
	logger.Info("starting the job-agent api", zap.String("version", version))

	store := mustOpenStore(ctx, config, logger)
	defer store.Close()

	client, closeCache := newJobsClient(ctx, config, logger)
	defer closeCache()

	server, err := api.New(config.API, &api.Deps{
		Profiles:     store,
		Applications: store,
		Sources:      buildSources(client, config.Sources, logger),
		Logger:       logger,
	})
	if err != nil {
		logger.Fatal("creating the api server", zap.Error(err))
	}

	if err := server.Run(ctx); err != nil {
		logger.Fatal("serving the api", zap.Error(err))
	}
	logger.Info("api stopped")
}
