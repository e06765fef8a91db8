package cmd

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-agent/internal/resume"
)

var parseCmd = &cobra.Command{
	Use:   "parse <resume file>",
	Short: "Parse a resume (pdf, docx, txt) into a profile and print it as JSON",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		parse(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().BoolP("save", "s", false, "store the parsed profile and resume text for the user")
}

func parse(cmd *cobra.Command, path string) {
	ctx := context.Background()
	logger, config := setup()

	text, err := resume.ExtractText(path)
	if err != nil {
		logger.Fatal("reading resume", zap.Error(err))
	}

	profile, err := resume.Parse(text)
	if err != nil {
		logger.Fatal("the resume cannot be analyzed", zap.String("file", path), zap.Error(err))
	}

	logger.Info("resume parsed",
		zap.String("name", profile.Name),
		zap.Int("skills", len(profile.Skills)),
		zap.Int("years_of_experience", profile.YearsOfExperience),
		zap.String("seniority", string(profile.Seniority)),
	)

	if save, _ := cmd.Flags().GetBool("save"); save {
		store := mustOpenStore(ctx, config, logger)
		defer store.Close()

		if err := store.SaveProfile(ctx, config.UserID, profile); err != nil {
			logger.Fatal("saving profile", zap.Error(err))
		}
		if err := store.SaveResumeText(ctx, config.UserID, text); err != nil {
			logger.Fatal("saving resume text", zap.Error(err))
		}
		logger.Info("profile saved", zap.String("user_id", config.UserID))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(profile); err != nil {
		logger.Fatal("printing profile", zap.Error(err))
	}
}
