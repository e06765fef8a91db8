package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-agent/internal/applications"
	"github.com/spigell/job-agent/internal/filtering"
	"github.com/spigell/job-agent/internal/jobs"
	"github.com/spigell/job-agent/internal/matching"
	"github.com/spigell/job-agent/internal/profile"
	"github.com/spigell/job-agent/internal/resume"
	"github.com/spigell/job-agent/internal/storage"
)

const (
	PromptYes                 = "Yes, save all as applications"
	PromptNo                  = "No"
	PromptBack                = "back"
	PromptReportByCompanies   = "Report by companies"
	PromptManualSave          = "Save jobs in manual mode"
	PromptAppendToExcludeFile = "Append all jobs to exclude file"
	PromptJobsToFile          = "Dump jobs to file"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Proceed?",
	Items: []string{PromptYes, PromptNo, PromptReportByCompanies, PromptManualSave, PromptJobsToFile},
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search job boards, rank the postings against your profile and save the ones you like",
	Run: func(cmd *cobra.Command, _ []string) {
		search(cmd)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringP("query", "q", "", "search text sent to the sources and matched locally")
	searchCmd.Flags().StringP("location", "l", "", "keep jobs whose location contains this value")
	searchCmd.Flags().String("employment-type", "", "keep jobs of this employment type, e.g. FULLTIME")
	searchCmd.Flags().String("category", "", "job category passed to sources that support it")
	searchCmd.Flags().Bool("remote-only", false, "keep remote jobs only")
	searchCmd.Flags().Int("limit", 0, "maximum jobs per source")
	searchCmd.Flags().Int("min-score", 0, "drop jobs whose match score is below this value")
	searchCmd.Flags().StringP("resume", "r", "", "resume file to build the profile from instead of the stored profile")
	searchCmd.Flags().StringP("exclude-file", "e", "", "special file with jobs to exclude. Default is unset.")
	searchCmd.Flags().BoolP("do-not-exclude-saved", "f", false, "do not exclude jobs already saved as applications")
	searchCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation if found suitable jobs")
	searchCmd.Flags().StringSlice("skip-filter", nil, "filters to disable for this run, e.g. red_flags,ai_fit")

	viper.BindPFlag("search.query", searchCmd.Flags().Lookup("query"))
	viper.BindPFlag("search.location", searchCmd.Flags().Lookup("location"))
	viper.BindPFlag("search.employment-type", searchCmd.Flags().Lookup("employment-type"))
	viper.BindPFlag("search.category", searchCmd.Flags().Lookup("category"))
	viper.BindPFlag("search.remote-only", searchCmd.Flags().Lookup("remote-only"))
	viper.BindPFlag("search.limit", searchCmd.Flags().Lookup("limit"))
	viper.BindPFlag("filters.min-score", searchCmd.Flags().Lookup("min-score"))
	viper.BindPFlag("exclude-file", searchCmd.Flags().Lookup("exclude-file"))
}

// search is the interactive job search.
func search(cmd *cobra.Command) {
	ctx := context.Background()
	logger, config := setup()

	logger.Info("starting the job-agent search", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	store, err := openStore(ctx, config, logger)
	switch {
	case errors.Is(err, errNoDatabase):
		logger.Info("running without storage", zap.String("reason", err.Error()))
	case err != nil:
		logger.Fatal("opening storage", zap.Error(err))
	default:
		defer store.Close()
	}

	candidate, err := loadProfile(ctx, cmd, store, config.UserID)
	if err != nil {
		logger.Fatal("loading profile", zap.Error(err),
			zap.String("hint", "pass --resume or run 'job-agent parse --save' first"),
		)
	}

	client, closeCache := newJobsClient(ctx, config, logger)
	defer closeCache()

	criteria := filtering.Criteria{
		Query:          config.Search.Query,
		Location:       config.Search.Location,
		EmploymentType: config.Search.EmploymentType,
		RemoteOnly:     config.Search.RemoteOnly,
		Category:       config.Search.Category,
	}

	logger.Info("starting the search", zap.String("search", criteria.Query))

	found := jobs.Collect(ctx, logger, buildSources(client, config.Sources, logger), jobs.Query{
		Text:     criteria.Query,
		Location: criteria.Location,
		Category: criteria.Category,
		Limit:    config.Search.Limit,
	})

	logger.Info("getting jobs", zap.Int("count", found.Len()))

	if found.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no jobs found"))
		return
	}

	list, err := filtering.Search(ctx, found, criteria)
	if err != nil {
		logger.Fatal("applying search criteria", zap.Error(err))
	}
	list.Items = matching.Rank(list.Items, candidate)

	filters := prepareFilters(ctx, cmd, config, store, candidate, logger)
	skipped, _ := cmd.Flags().GetStringSlice("skip-filter")
	for _, name := range skipped {
		filters.DisableByName(name, "skipped by flag")
	}
	for _, status := range filters.Describe() {
		logger.Debug("filter configured",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}

	list, err = filters.RunFilters(ctx, list)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	if list.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no jobs left after filters"))
		return
	}

	autoApprove, _ := cmd.Flags().GetBool("auto-approve")
	session := &searchSession{
		store:       store,
		userID:      config.UserID,
		excludeFile: config.ExcludeFile,
		logger:      logger,
	}

	action := PromptYes
	for {
		var err error
		if !autoApprove {
			_, action, err = prompt.Run()
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}

		logger.Info("current list of jobs", zap.Int("count", list.Len()))

		if err := session.handleAction(ctx, action, list); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

// loadProfile builds the profile from --resume when given and falls back to
// the profile stored for the user.
func loadProfile(ctx context.Context, cmd *cobra.Command, store *storage.Store, userID string) (*profile.Profile, error) {
	if path, _ := cmd.Flags().GetString("resume"); path != "" {
		text, err := resume.ExtractText(path)
		if err != nil {
			return nil, err
		}
		return resume.Parse(text)
	}

	if store == nil {
		return nil, errNoDatabase
	}
	return store.GetProfile(ctx, userID)
}

type searchSession struct {
	store       *storage.Store
	userID      string
	excludeFile string
	logger      *zap.Logger
}

func (s *searchSession) handleAction(ctx context.Context, action string, list *jobs.Jobs) error {
	switch action {
	case PromptYes:
		if err := s.save(ctx, list); err != nil {
			return err
		}
		return errExit
	case PromptNo:
		s.logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return errExit
	case PromptManualSave:
		return s.manualSave(ctx, list)
	case PromptReportByCompanies:
		pretty, _ := json.MarshalIndent(list.ReportByCompany(), "", "  ")
		s.logger.Info(string(pretty), zap.Int("jobs count", list.Len()))
		return nil
	case PromptJobsToFile:
		filename, err := list.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		s.logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func (s *searchSession) manualSave(ctx context.Context, list *jobs.Jobs) error {
	for {
		if list.Len() == 0 {
			s.logger.Info("no jobs left")
			return nil
		}

		items := []string{PromptAppendToExcludeFile}
		for _, job := range list.Items {
			items = append(items, fmt.Sprintf("%s | %d%% | %s | %s", job.ID, job.Score(), job.Title, job.Company))
		}

		jobPrompt := promptui.Select{
			Label: "Choose a job and press ENTER",
			Items: append(items, PromptBack),
			Size:  15,
		}

		idx, selected, err := jobPrompt.Run()
		if err != nil {
			return err
		}

		switch selected {
		case PromptBack:
			return nil
		case PromptAppendToExcludeFile:
			if s.excludeFile == "" {
				s.logger.Warn("exclude file is not configured", zap.String("hint", "pass --exclude-file"))
				continue
			}

			excluded, err := jobs.LoadExcluded(s.excludeFile)
			if err != nil {
				return err
			}

			excluded.Append(list.ToExcluded(time.Now()))

			if err = excluded.ToFile(s.excludeFile); err != nil {
				return err
			}

			s.logger.Info("appended to exclude file", zap.String("filename", s.excludeFile))

			list.Exclude(excluded.IDs())
		default:
			// the first item is the exclude-file action
			job := list.Items[idx-1]

			if err := s.save(ctx, &jobs.Jobs{Items: []*jobs.Job{job}}); err != nil {
				return err
			}

			list.Exclude([]string{job.ID})
		}
	}
}

// save stores every job as an application. Jobs that are already saved are
// reported and skipped.
func (s *searchSession) save(ctx context.Context, list *jobs.Jobs) error {
	if s.store == nil {
		return errNoDatabase
	}

	saved := 0
	for _, job := range list.Items {
		app, err := applications.FromJob(job, time.Now())
		if err != nil {
			return err
		}
		if job.AI != nil && job.AI.Message != "" {
			app.Notes = job.AI.Message
		}

		if _, err := s.store.AddApplication(ctx, s.userID, app); err != nil {
			if errors.Is(err, storage.ErrAlreadyExists) {
				s.logger.Info("job is already saved", zap.String("job_id", job.ID))
				continue
			}
			return err
		}

		saved++
		s.logger.Info("successfully saved job",
			zap.String("job_id", job.ID),
			zap.String("job_title", job.Title),
			zap.Int("match_score", job.Score()),
		)
	}

	s.logger.Info("successfully saved jobs", zap.Int("count", saved))
	return nil
}

func prepareFilters(ctx context.Context, cmd *cobra.Command, config *Config, store *storage.Store, candidate *profile.Profile, logger *zap.Logger) *filtering.Filtering {
	steps := []filtering.Filter{
		filtering.NewRedFlags(config.Filters.RedFlags, logger),
		filtering.NewExcludedCompanies(config.Filters.ExcludedCompanies, logger),
		filtering.NewExcludeFile(config.ExcludeFile, logger),
	}

	if store != nil {
		steps = append(steps, prepareSavedApplicationsFilter(cmd, store, config.UserID, logger))
	}

	steps = append(steps, filtering.NewMinScore(config.Filters.MinScore))

	aiFilter, err := prepareAIFilter(ctx, config.AI, candidate, logger, config.ExcludeFile)
	if err != nil {
		logger.Warn("skipping AI filter", zap.Error(err))
	} else if aiFilter.IsEnabled() {
		steps = append(steps, aiFilter)
	}

	return filtering.New(steps, logger)
}

func prepareSavedApplicationsFilter(cmd *cobra.Command, store filtering.ApplicationLister, userID string, logger *zap.Logger) filtering.Filter {
	ignore := false
	if cmd != nil {
		ignore, _ = cmd.Flags().GetBool("do-not-exclude-saved")
	}

	return filtering.NewSavedApplications(&filtering.SavedApplicationsConfig{Ignore: ignore}, &filtering.SavedApplicationsDeps{
		Store:  store,
		UserID: userID,
		Logger: logger,
	})
}

func prepareAIFilter(ctx context.Context, config *AIConfig, candidate *profile.Profile, logger *zap.Logger, excludeFile string) (filtering.Filter, error) {
	if config == nil || !config.Enabled {
		return filtering.NewAIFit(&filtering.AIFitFilterConfig{
			Enabled: false,
		}, nil), nil
	}

	matcher, model, err := newAIMatcher(ctx, config, logger)
	if err != nil {
		return nil, fmt.Errorf("building ai matcher: %w", err)
	}

	aiConfig := &filtering.AIFitFilterConfig{
		Enabled:         config.Enabled,
		Model:           model,
		MinimumFitScore: config.MinimumFitScore,
		Concurrency:     config.Concurrency,
	}

	return filtering.NewAIFit(aiConfig, &filtering.AIFitFilterDeps{
		Logger:      logger,
		Matcher:     matcher,
		Profile:     candidate,
		ExcludeFile: excludeFile,
	}), nil
}
