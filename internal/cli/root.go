// Package cli implements the dailyskills command line client. Every command
// starts from the remembered session, lets the route guard settle, and
// prints the screen the app would now show.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"

	"github.com/dailyskills/marketplace/internal/core/domain"
	"github.com/dailyskills/marketplace/internal/core/ports"
	"github.com/dailyskills/marketplace/internal/core/service"
	"github.com/dailyskills/marketplace/internal/infrastructure/filestore"
	"github.com/dailyskills/marketplace/internal/infrastructure/remote"
	"github.com/dailyskills/marketplace/internal/pkg/config"
	"github.com/dailyskills/marketplace/pkg/logger"
)

// API is the backend surface the CLI drives.
type API interface {
	ports.Authenticator
	Logout(ctx context.Context, token string) error
	ListJobs(ctx context.Context, token string, filter ports.JobFilter) ([]*domain.Job, error)
	CreateJob(ctx context.Context, token string, input ports.CreateJobInput) (*domain.Job, error)
	StartConversation(ctx context.Context, token, otherID, jobID string) (*domain.Conversation, error)
	ListConversations(ctx context.Context, token string) ([]*domain.Conversation, error)
	ListMessages(ctx context.Context, token, conversationID string) ([]*domain.Message, error)
	SendMessage(ctx context.Context, token, conversationID, content string) (*domain.Message, error)
}

// Options overrides the collaborators NewRootCommand would otherwise build
// from the environment.
type Options struct {
	API      API
	Store    ports.IdentityStore
	Lookuper envconfig.Lookuper
}

var errNotSignedIn = errors.New("not signed in, run `dailyskills login` first")

type app struct {
	opts Options
	out  io.Writer

	log     zerolog.Logger
	api     API
	session *service.Session
	nav     *service.StackNavigator
	flow    *service.AuthFlow
	detach  func()
}

// NewRootCommand returns the dailyskills command tree.
func NewRootCommand(opts Options) *cobra.Command {
	a := &app{opts: opts}

	root := &cobra.Command{
		Use:   "dailyskills",
		Short: "DailySkills marketplace client",
		Long: `dailyskills signs you in to the DailySkills marketplace and lets you
browse and post jobs and chat with workers or employers.

The signed-in account is remembered between runs. After every command the
screen the app would show is printed as "route: <path>".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown()
		},
	}

	root.AddCommand(
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
		newStatusCmd(a),
		newJobsCmd(a),
		newMessagesCmd(a),
	)
	return root
}

// Execute runs the CLI against the real environment.
func Execute(ctx context.Context) error {
	return NewRootCommand(Options{}).ExecuteContext(ctx)
}

func (a *app) setup(cmd *cobra.Command) error {
	ctx := cmd.Context()
	a.out = cmd.OutOrStdout()

	lookuper := a.opts.Lookuper
	if lookuper == nil {
		lookuper = envconfig.OsLookuper()
	}
	cfg, err := config.LoadClientWith(ctx, lookuper)
	if err != nil {
		return err
	}

	a.log = logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  true,
		Output:  cmd.ErrOrStderr(),
		Service: "dailyskills",
	})

	a.api = a.opts.API
	if a.api == nil {
		a.api = remote.NewClient(cfg.APIURL, remote.WithTimeout(cfg.Timeout))
	}

	store := a.opts.Store
	if store == nil {
		path := cfg.SessionFile
		if path == "" {
			if path, err = filestore.DefaultPath(); err != nil {
				return err
			}
		}
		store = filestore.NewIdentityFile(path)
	}

	a.session = service.NewSession(a.api, a.log, service.WithIdentityStore(store))
	a.nav = service.NewStackNavigator(domain.RouteNone)
	a.detach = service.NewGuard(a.nav, a.log).Attach(a.session)
	a.flow = service.NewAuthFlow(a.session)

	return a.session.Initialize(ctx)
}

func (a *app) teardown() {
	if a.detach != nil {
		a.detach()
	}
	if a.session != nil {
		a.session.Close()
	}
}

// run executes fn, reports a failure the way the app would, and always
// prints the resulting route.
func (a *app) run(fn func() error) error {
	err := fn()
	if err != nil {
		a.printFailure(err)
	}
	fmt.Fprintf(a.out, "route: %s\n", a.nav.Current())
	return err
}

func (a *app) printFailure(err error) {
	msg := service.UserMessage(err)
	switch {
	case errors.Is(err, errNotSignedIn), errors.Is(err, domain.ErrTokenInvalid):
		msg = err.Error()
	case errors.Is(err, domain.ErrForbidden):
		msg = "Your account type cannot open that screen"
	}
	fmt.Fprintln(a.out, msg)

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		fields := make([]string, 0, len(ve.Fields))
		for f := range ve.Fields {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			fmt.Fprintf(a.out, "  %s: %s\n", f, ve.Fields[f])
		}
	}

	var regErr *domain.RegistrationError
	if errors.As(err, &regErr) && regErr.Reason != "" {
		fmt.Fprintf(a.out, "  %s\n", regErr.Reason)
	}
}

// signedIn returns the identity of the current session or errNotSignedIn.
func (a *app) signedIn() (*domain.Identity, error) {
	snap := a.session.Snapshot()
	if snap.State != domain.StateAuthenticated || snap.Identity == nil || snap.Identity.Token == "" {
		return nil, errNotSignedIn
	}
	return snap.Identity, nil
}

// open shows route on top of the current screen when role may see it.
func (a *app) open(role domain.Role, route domain.Route) error {
	if !service.CanAccess(role, route) {
		return domain.ErrForbidden
	}
	a.nav.Push(route)
	return nil
}

// checkToken signs the session out when the backend no longer accepts its
// token.
func (a *app) checkToken(ctx context.Context, err error) error {
	if errors.Is(err, domain.ErrTokenInvalid) {
		a.log.Info().Msg("token rejected by backend, signing out")
		a.session.Logout(ctx)
		return fmt.Errorf("session expired, please log in again: %w", err)
	}
	return err
}
