package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dailyskills/marketplace/internal/core/domain"
	"github.com/dailyskills/marketplace/internal/core/ports"
)

func newJobsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Browse and post jobs",
	}
	cmd.AddCommand(newJobsListCmd(a), newJobsCreateCmd(a))
	return cmd
}

func newJobsListCmd(a *app) *cobra.Command {
	var (
		status   string
		employer string
		limit    int
		mine     bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posted jobs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(func() error {
				identity, err := a.signedIn()
				if err != nil {
					return err
				}
				if err := a.open(identity.Role, domain.RouteJobs); err != nil {
					return err
				}

				filter := ports.JobFilter{Status: domain.JobStatus(status), EmployerID: employer, Limit: limit}
				if mine {
					filter.EmployerID = identity.ID
				}
				jobs, err := a.api.ListJobs(cmd.Context(), identity.Token, filter)
				if err != nil {
					return a.checkToken(cmd.Context(), err)
				}

				if len(jobs) == 0 {
					fmt.Fprintln(a.out, "No jobs found.")
					return nil
				}
				for _, j := range jobs {
					printJob(a, j)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "only jobs in this status: open, in-progress, completed, cancelled")
	cmd.Flags().StringVar(&employer, "employer", "", "only jobs posted by this employer ID")
	cmd.Flags().BoolVar(&mine, "mine", false, "only jobs posted by me")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of jobs")
	return cmd
}

func newJobsCreateCmd(a *app) *cobra.Command {
	var input ports.CreateJobInput

	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Post a new job (employers only)",
		Example: `  dailyskills jobs create --title "House painter" --description "Two rooms" --category painting --location Pune --min-rate 500 --max-rate 800`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(func() error {
				identity, err := a.signedIn()
				if err != nil {
					return err
				}
				if err := a.open(identity.Role, domain.RouteJobCreate); err != nil {
					return err
				}

				job, err := a.api.CreateJob(cmd.Context(), identity.Token, input)
				if err != nil {
					return a.checkToken(cmd.Context(), err)
				}
				a.nav.Back()
				fmt.Fprintf(a.out, "Posted job %s\n", job.ID)
				printJob(a, job)
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&input.Title, "title", "", "job title")
	f.StringVar(&input.Description, "description", "", "what needs doing")
	f.StringVar(&input.Category, "category", "", "job category, e.g. painting")
	f.StringVar(&input.Location, "location", "", "where the work is")
	f.StringSliceVar(&input.Skills, "skills", nil, "required skills, comma separated")
	f.Float64Var(&input.Budget.MinRate, "min-rate", 0, "lowest rate offered")
	f.Float64Var(&input.Budget.MaxRate, "max-rate", 0, "highest rate offered")
	f.BoolVar(&input.Budget.IsHourly, "hourly", false, "rates are per hour instead of per day")
	f.BoolVar(&input.IsUrgent, "urgent", false, "mark the job as urgent")
	return cmd
}

func printJob(a *app, j *domain.Job) {
	unit := "day"
	if j.Budget.IsHourly {
		unit = "hour"
	}
	urgent := ""
	if j.IsUrgent {
		urgent = " [urgent]"
	}
	fmt.Fprintf(a.out, "%s  %s%s\n", j.ID, j.Title, urgent)
	fmt.Fprintf(a.out, "    %s · %s · %s · %.0f-%.0f per %s\n", j.Status, j.Category, j.Location, j.Budget.MinRate, j.Budget.MaxRate, unit)
	if len(j.Skills) > 0 {
		fmt.Fprintf(a.out, "    skills: %s\n", strings.Join(j.Skills, ", "))
	}
}
