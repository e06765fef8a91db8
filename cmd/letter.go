package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-agent/internal/jobs"
	"github.com/spigell/job-agent/internal/letters"
)

var letterCmd = &cobra.Command{
	Use:   "letter <kind> <job id>",
	Short: fmt.Sprintf("Write a letter for a job from a jobs dump. Kinds: %v", letters.Kinds),
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		letter(cmd, letters.Kind(args[0]), args[1])
	},
}

func init() {
	rootCmd.AddCommand(letterCmd)

	letterCmd.Flags().String("from", "", "jobs dump written by the search command")
	letterCmd.Flags().StringP("resume", "r", "", "resume file to build the profile from instead of the stored profile")
	letterCmd.MarkFlagRequired("from")
}

func letter(cmd *cobra.Command, kind letters.Kind, jobID string) {
	ctx := context.Background()
	logger, config := setup()

	from, _ := cmd.Flags().GetString("from")
	dump, err := jobs.LoadDump(from)
	if err != nil {
		logger.Fatal("reading jobs dump", zap.Error(err))
	}

	job := dump.FindByID(jobID)
	if job == nil {
		logger.Fatal("there is no such job id in the dump", zap.String("job_id", jobID), zap.String("file", from))
	}

	store, err := openStore(ctx, config, logger)
	switch {
	case err == nil:
		defer store.Close()
	case !errors.Is(err, errNoDatabase):
		logger.Warn("storage is not available", zap.Error(err))
	}

	candidate, err := loadProfile(ctx, cmd, store, config.UserID)
	if err != nil {
		logger.Fatal("loading profile", zap.Error(err),
			zap.String("hint", "pass --resume or run 'job-agent parse --save' first"),
		)
	}

	text, err := letters.Render(kind, job, candidate)
	if err != nil {
		logger.Fatal("writing letter", zap.Error(err))
	}

	fmt.Println(text)
}
