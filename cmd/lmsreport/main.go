package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"
	_ "time/tzdata"

	"github.com/kardolus/lms-reports/api/client"
	"github.com/kardolus/lms-reports/api/http"
	"github.com/kardolus/lms-reports/cache"
	"github.com/kardolus/lms-reports/cmd/lmsreport/utils"
	"github.com/kardolus/lms-reports/config"
	"github.com/kardolus/lms-reports/internal"
	"github.com/kardolus/lms-reports/report"
	"github.com/kardolus/lms-reports/runner"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	GitCommit  string
	GitVersion string
)

var (
	v = viper.New()

	start           string
	end             string
	enrollmentTypes []string
	mappingFile     string
	termID          string
	readingStart    string
	readingEnd      string
	examStart       string
	examEnd         string
)

// flagKeys binds persistent flags to configuration keys.
var flagKeys = map[string]string{
	"url":             "url",
	"api-path":        "api_path",
	"token":           "api_token",
	"token-file":      "api_token_file",
	"per-page":        "per_page",
	"timeout":         "timeout",
	"max-retries":     "max_retries",
	"cache-mode":      "cache_mode",
	"cache-dir":       "cache_dir",
	"output-dir":      "output_dir",
	"timezone":        "timezone",
	"otel-endpoint":   "otel_endpoint",
	"skip-tls-verify": "skip_tls_verify",
	"debug":           "debug",
}

func main() {
	internal.InitLogger(false)
	rootCmd := newRootCommand()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		zap.S().Error(err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lmsreport",
		Short:         "Reports from a learning management system",
		Long:          "Fetches courses, enrollments, assignments, submissions and page views from an LMS REST API, caches them locally and exports reports as JSON, CSV and spreadsheets.",
		Version:       fmt.Sprintf("%s (commit %s)", GitVersion, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("url", "", "Base URL of the LMS")
	flags.String("api-path", "", "Path of the REST API below the base URL")
	flags.String("token", "", "API access token")
	flags.String("token-file", "", "File holding the API access token")
	flags.Int("per-page", 0, "Records requested per page")
	flags.Int("timeout", 0, "Per request timeout in seconds")
	flags.Int("max-retries", 0, "Retries of a failed request")
	flags.String("cache-mode", "", "Cache granularity: call, run, sqlite or off")
	flags.String("cache-dir", "", "Directory of the local cache")
	flags.StringP("output-dir", "o", "", "Directory the reports are written to")
	flags.String("timezone", "", "Timezone due dates are rendered in")
	flags.String("otel-endpoint", "", "OTLP/HTTP endpoint spans are exported to")
	flags.Bool("skip-tls-verify", false, "Skip TLS certificate verification")
	flags.Bool("debug", false, "Log every request and response")

	for flag, key := range flagKeys {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(
		newPageViewsCommand(),
		newRubricsCommand(),
		newDueDatesCommand(),
		newEmailsCommand(),
		newCoursesCommand(),
		newAssignmentViewsCommand(),
		newConfigCommand(),
	)

	return rootCmd
}

func newPageViewsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pageviews <course_id>",
		Short: "Count page views of a course's pages by its enrolled users",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			courseID, err := utils.ParseID("course_id", args[0])
			if err != nil {
				return err
			}
			from, to, err := utils.DateRange(start, end, time.Now(), internal.DefaultPageViewsWindow)
			if err != nil {
				return err
			}

			opts := runner.PageViewsOptions{CourseID: courseID, Start: from, End: to, EnrollmentTypes: utils.SplitList(enrollmentTypes)}
			return withRunner(cmd, runner.ReportPageViews, opts.RunIdentity(), os.Stdout, func(r *runner.Runner) error {
				_, err := r.PageViews(cmd.Context(), opts)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "Start date YYYY-MM-DD (default 90 days before the end)")
	cmd.Flags().StringVar(&end, "end", "", "End date YYYY-MM-DD (default today)")
	cmd.Flags().StringSliceVar(&enrollmentTypes, "enrollment-type", nil, "Enrollment types to include, e.g. StudentEnrollment (default all)")
	return cmd
}

func newRubricsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rubrics <course_id>",
		Short: "Export rubric assessments of a course per student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			courseID, err := utils.ParseID("course_id", args[0])
			if err != nil {
				return err
			}

			opts := runner.RubricsOptions{CourseID: courseID}
			if mappingFile != "" {
				if opts.Mapping, err = report.LoadMapping(mappingFile); err != nil {
					return err
				}
			}

			return withRunner(cmd, runner.ReportRubrics, opts.RunIdentity(), os.Stdout, func(r *runner.Runner) error {
				_, err := r.Rubrics(cmd.Context(), opts)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&mappingFile, "mapping-file", "", "YAML file selecting and relabeling assignments")
	return cmd
}

func newDueDatesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "duedates <account_id>",
		Short: "Export assignment due dates of an account's published courses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := utils.ParseID("account_id", args[0])
			if err != nil {
				return err
			}

			cfg := loadConfig().Config
			loc, err := utils.LoadLocation(cfg.Timezone)
			if err != nil {
				return err
			}

			opts := runner.DueDatesOptions{AccountID: accountID, TermID: termID, Location: loc}
			if opts.Reading, err = report.ParsePeriod(readingStart, readingEnd, loc); err != nil {
				return fmt.Errorf("reading period: %w", err)
			}
			if opts.Exam, err = report.ParsePeriod(examStart, examEnd, loc); err != nil {
				return fmt.Errorf("exam period: %w", err)
			}
			if err := opts.Validate(); err != nil {
				return err
			}

			return withRunner(cmd, runner.ReportDueDates, opts.RunIdentity(), os.Stdout, func(r *runner.Runner) error {
				_, err := r.DueDates(cmd.Context(), opts)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&termID, "term", "", "Enrollment term ID the courses are restricted to")
	cmd.Flags().StringVar(&readingStart, "reading-start", "", "First day of the reading period, YYYY-MM-DD")
	cmd.Flags().StringVar(&readingEnd, "reading-end", "", "Last day of the reading period, YYYY-MM-DD")
	cmd.Flags().StringVar(&examStart, "exam-start", "", "First day of the exam period, YYYY-MM-DD")
	cmd.Flags().StringVar(&examEnd, "exam-end", "", "Last day of the exam period, YYYY-MM-DD")
	return cmd
}

func newEmailsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "emails <course_id>",
		Short: "Print email and name of a course's students as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			courseID, err := utils.ParseID("course_id", args[0])
			if err != nil {
				return err
			}

			run := runner.RunIdentity(runner.ReportEmails, nil)
			return withRunner(cmd, runner.ReportEmails, run, os.Stderr, func(r *runner.Runner) error {
				return r.Emails(cmd.Context(), courseID)
			})
		},
	}
}

func newCoursesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "courses",
		Short: "List the courses of the token's owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			run := runner.RunIdentity(runner.ReportCourses, nil)
			return withRunner(cmd, runner.ReportCourses, run, os.Stderr, func(r *runner.Runner) error {
				return r.Courses(cmd.Context())
			})
		},
	}
}

func newAssignmentViewsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assignmentviews <course_id>",
		Short: "Dump a course's students and all their page views",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			courseID, err := utils.ParseID("course_id", args[0])
			if err != nil {
				return err
			}
			from, to, err := utils.DateRange(start, end, time.Now(), internal.DefaultPageViewsWindow)
			if err != nil {
				return err
			}

			opts := runner.AssignmentViewsOptions{CourseID: courseID, Start: from, End: to}
			return withRunner(cmd, runner.ReportAssignmentViews, opts.RunIdentity(), os.Stdout, func(r *runner.Runner) error {
				_, err := r.AssignmentViews(cmd.Context(), opts)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "Start date YYYY-MM-DD (default 90 days before the end)")
	cmd.Flags().StringVar(&end, "end", "", "End date YYYY-MM-DD (default today)")
	return cmd
}

func newConfigCommand() *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager := loadConfig()
			if save {
				if err := manager.Save(); err != nil {
					return fmt.Errorf("failed to save configuration: %w", err)
				}
			}

			out, err := manager.ShowConfig()
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Write the effective configuration to the config file")
	return cmd
}

func loadConfig() *config.Manager {
	return config.NewManager(config.New()).WithEnvironment().WithFlags(v)
}

// withRunner wires configuration, token, cache and client for one report
// and runs fn. progress receives info logs; commands printing data on stdout
// log to stderr instead.
func withRunner(cmd *cobra.Command, name string, run cache.Identity, progress io.Writer, fn func(*runner.Runner) error) error {
	manager := loadConfig()
	cfg := manager.Config

	zap.ReplaceGlobals(internal.NewLogger(progress, os.Stderr, cfg.Debug))

	token, err := manager.Token()
	if err != nil {
		return err
	}

	mode := runner.DefaultCacheMode(name)
	if cfg.CacheMode != "" {
		if mode, err = cache.ParseMode(cfg.CacheMode); err != nil {
			return err
		}
	}

	store, closer, err := cache.NewStore(mode, cfg.CacheDir, run)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer closer.Close()

	shutdown, err := internal.SetupTracing(cmd.Context(), cfg.OtelEndpoint)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			zap.S().Warnf("failed to flush traces: %v", err)
		}
	}()

	zap.S().Debugf("cache mode %s in %s", mode, cfg.CacheDir)

	c := client.New(http.RealCallerFactory, cfg, token)
	loader := report.NewLoader(c, cache.New(store))

	return fn(runner.New(cfg, loader, os.Stdout))
}
