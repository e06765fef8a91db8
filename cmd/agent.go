package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-agent/internal/digest"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Email every stored profile a digest of new matching jobs on a schedule",
	Run: func(cmd *cobra.Command, _ []string) {
		agent(cmd)
	},
}

func init() {
	rootCmd.AddCommand(agentCmd)

	agentCmd.Flags().Bool("once", false, "run a single pass and exit")
}

func agent(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, config := setup()
	logger.Info("starting the job-agent digest", zap.String("version", version))

	store := mustOpenStore(ctx, config, logger)
	defer store.Close()

	client, closeCache := newJobsClient(ctx, config, logger)
	defer closeCache()

	sender, err := newMailSender(config.Mail)
	if err != nil {
		logger.Fatal("configuring mail", zap.Error(err))
	}

	runner, err := digest.NewAgent(digest.Config{
		TopN:              config.Agent.TopN,
		MinScore:          config.Agent.MinScore,
		DatePosted:        config.Agent.DatePosted,
		DashboardURL:      config.Agent.DashboardURL,
		RedFlags:          config.Filters.RedFlags,
		ExcludedCompanies: config.Filters.ExcludedCompanies,
	}, &digest.Deps{
		Profiles:     store,
		Sources:      buildSources(client, config.Sources, logger),
		Sender:       sender,
		Applications: store,
		Logger:       logger,
	})
	if err != nil {
		logger.Fatal("creating the agent", zap.Error(err))
	}

	if once, _ := cmd.Flags().GetBool("once"); once {
		if _, err := runner.RunOnce(ctx); err != nil {
			logger.Fatal("agent run failed", zap.Error(err))
		}
		return
	}

	scheduler := digest.NewScheduler(runner, config.Agent.Schedule, logger)
	if err := scheduler.Start(ctx); err != nil {
		logger.Fatal("starting the scheduler", zap.Error(err))
	}

	<-ctx.Done()
	logger.Info("shutting down", zap.String("reason", "signal received"))
	scheduler.Stop()
}
