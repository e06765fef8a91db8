package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-agent/internal/applications"
	"github.com/spigell/job-agent/internal/jobs"
)

var applicationsCmd = &cobra.Command{
	Use:     "applications",
	Aliases: []string{"apps"},
	Short:   "Manage the jobs saved as applications",
}

var applicationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print saved applications, newest first",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		listApplications()
	},
}

var applicationsAddCmd = &cobra.Command{
	Use:   "add <job id>",
	Short: "Save a job from a jobs dump as an application",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		addApplication(cmd, args[0])
	},
}

var applicationsUpdateCmd = &cobra.Command{
	Use:   "update <job id>",
	Short: "Change the status or notes of an application",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		updateApplication(cmd, args[0])
	},
}

var applicationsRemoveCmd = &cobra.Command{
	Use:   "remove <job id>",
	Short: "Delete an application",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		removeApplication(args[0])
	},
}

func init() {
	rootCmd.AddCommand(applicationsCmd)
	applicationsCmd.AddCommand(applicationsListCmd, applicationsAddCmd, applicationsUpdateCmd, applicationsRemoveCmd)

	applicationsAddCmd.Flags().String("from", "", "jobs dump written by the search command")
	applicationsAddCmd.MarkFlagRequired("from")

	applicationsUpdateCmd.Flags().String("status", "", fmt.Sprintf("new status, one of %v", applications.Statuses))
	applicationsUpdateCmd.Flags().String("notes", "", "replace the notes")
}

func listApplications() {
	ctx := context.Background()
	logger, config := setup()

	store := mustOpenStore(ctx, config, logger)
	defer store.Close()

	list, err := store.ListApplications(ctx, config.UserID)
	if err != nil {
		logger.Fatal("listing applications", zap.Error(err))
	}

	logger.Info("saved applications", zap.Int("count", len(list)))
	printJSON(logger, list)
}

func addApplication(cmd *cobra.Command, jobID string) {
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

	app, err := applications.FromJob(job, time.Now())
	if err != nil {
		logger.Fatal("creating application", zap.Error(err))
	}

	store := mustOpenStore(ctx, config, logger)
	defer store.Close()

	saved, err := store.AddApplication(ctx, config.UserID, app)
	if err != nil {
		logger.Fatal("saving application", zap.String("job_id", jobID), zap.Error(err))
	}

	logger.Info("application saved", zap.String("job_id", saved.ID), zap.String("id", saved.DBID))
}

func updateApplication(cmd *cobra.Command, jobID string) {
	ctx := context.Background()
	logger, config := setup()

	var upd applications.Update
	if cmd.Flags().Changed("status") {
		raw, _ := cmd.Flags().GetString("status")
		status := applications.Status(raw)
		upd.Status = &status
	}
	if cmd.Flags().Changed("notes") {
		notes, _ := cmd.Flags().GetString("notes")
		upd.Notes = &notes
	}
	if upd.Empty() {
		logger.Fatal("nothing to update", zap.String("hint", "pass --status or --notes"))
	}

	store := mustOpenStore(ctx, config, logger)
	defer store.Close()

	updated, err := store.UpdateApplication(ctx, config.UserID, jobID, upd)
	if err != nil {
		logger.Fatal("updating application", zap.String("job_id", jobID), zap.Error(err))
	}

	logger.Info("application updated", zap.String("job_id", updated.ID), zap.String("status", string(updated.Status)))
}

func removeApplication(jobID string) {
	ctx := context.Background()
	logger, config := setup()

	store := mustOpenStore(ctx, config, logger)
	defer store.Close()

	if err := store.RemoveApplication(ctx, config.UserID, jobID); err != nil {
		logger.Fatal("removing application", zap.String("job_id", jobID), zap.Error(err))
	}

	logger.Info("application removed", zap.String("job_id", jobID))
}

func printJSON(logger *zap.Logger, v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logger.Fatal("printing result", zap.Error(err))
	}
}
