package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"

	"github.com/college-predictor/prompt-manager-fe/internal/domain/model"
	apperrors "github.com/college-predictor/prompt-manager-fe/internal/errors"
)

func runProjects(cmdCtx *commandContext, args []string) error {
	sub := "list"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		sub = args[0]
		args = args[1:]
	}
	switch sub {
	case "list":
		return runProjectsList(cmdCtx)
	case "create":
		return runProjectsCreate(cmdCtx, args)
	case "delete":
		return runProjectsDelete(cmdCtx, args)
	default:
		return apperrors.Validationf("unknown projects subcommand %q (valid: list, create, delete)", sub)
	}
}

func runProjectsList(cmdCtx *commandContext) error {
	if _, err := requireAuthenticated(cmdCtx); err != nil {
		return err
	}
	store := cmdCtx.services.AppStore
	if err := store.FetchProjects(cmdCtx.Ctx); err != nil {
		return err
	}
	return printProjects(store.Projects().Items)
}

type projectCreateOptions struct {
	Name        string
	Description string
	Models      string
	APIKeys     string
}

func parseProjectCreateFlags(args []string) (projectCreateOptions, error) {
	var opts projectCreateOptions
	fs := flag.NewFlagSet("projects create", flag.ContinueOnError)
	fs.StringVar(&opts.Name, "name", "", "project name (required)")
	fs.StringVar(&opts.Description, "description", "", "project description")
	fs.StringVar(&opts.Models, "models", "", "comma-separated model IDs to enable")
	fs.StringVar(&opts.APIKeys, "api-keys", "", "comma-separated provider=key pairs")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}

func runProjectsCreate(cmdCtx *commandContext, args []string) error {
	opts, err := parseProjectCreateFlags(args)
	if err != nil {
		return err
	}
	if opts.Name == "" {
		return apperrors.Validation("project name is required (-name)")
	}

	in := model.CreateProjectInput{
		Name:        opts.Name,
		Description: opts.Description,
	}
	if opts.Models != "" {
		for _, raw := range strings.Split(opts.Models, ",") {
			id, convErr := strconv.Atoi(strings.TrimSpace(raw))
			if convErr != nil {
				return apperrors.Validationf("invalid model ID %q", raw)
			}
			in.ModelIDs = append(in.ModelIDs, id)
		}
	}
	if opts.APIKeys != "" {
		in.APIKeys = make(map[string]string)
		for _, pair := range strings.Split(opts.APIKeys, ",") {
			provider, key, found := strings.Cut(pair, "=")
			if !found || provider == "" {
				return apperrors.Validationf("invalid api-key pair %q (want provider=key)", pair)
			}
			in.APIKeys[strings.TrimSpace(provider)] = key
		}
	}

	if _, err := requireAuthenticated(cmdCtx); err != nil {
		return err
	}
	store := cmdCtx.services.AppStore
	if err := store.CreateProject(cmdCtx.Ctx, in); err != nil {
		return err
	}
	if err := writef(os.Stdout, "Project %q created.\n", in.Name); err != nil {
		return err
	}
	return printProjects(store.Projects().Items)
}

type projectDeleteOptions struct {
	ID int
}

func parseProjectDeleteFlags(args []string) (projectDeleteOptions, error) {
	var opts projectDeleteOptions
	fs := flag.NewFlagSet("projects delete", flag.ContinueOnError)
	fs.IntVar(&opts.ID, "id", 0, "project ID to delete (required)")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}

func runProjectsDelete(cmdCtx *commandContext, args []string) error {
	opts, err := parseProjectDeleteFlags(args)
	if err != nil {
		return err
	}
	if opts.ID <= 0 {
		return apperrors.Validation("project ID is required (-id)")
	}

	if _, err := requireAuthenticated(cmdCtx); err != nil {
		return err
	}
	if err := cmdCtx.services.AppStore.DeleteProject(cmdCtx.Ctx, opts.ID); err != nil {
		return err
	}
	return writef(os.Stdout, "Project %d deleted.\n", opts.ID)
}

func runModels(cmdCtx *commandContext, _ []string) error {
	if _, err := requireAuthenticated(cmdCtx); err != nil {
		return err
	}
	store := cmdCtx.services.AppStore
	if err := store.FetchModels(cmdCtx.Ctx); err != nil {
		return err
	}
	return printModels(store.Models().Items)
}

// runDashboard fetches projects and models concurrently after the
// session has settled, mirroring a dashboard's initial load.
func runDashboard(cmdCtx *commandContext, _ []string) error {
	if _, err := requireAuthenticated(cmdCtx); err != nil {
		return err
	}
	store := cmdCtx.services.AppStore

	g, ctx := errgroup.WithContext(cmdCtx.Ctx)
	g.Go(func() error { return store.FetchProjects(ctx) })
	g.Go(func() error { return store.FetchModels(ctx) })
	if err := g.Wait(); err != nil {
		return err
	}

	if err := writef(os.Stdout, "Projects\n"); err != nil {
		return err
	}
	if err := printProjects(store.Projects().Items); err != nil {
		return err
	}
	if err := writef(os.Stdout, "\nModels\n"); err != nil {
		return err
	}
	return printModels(store.Models().Items)
}

func printProjects(projects []model.Project) error {
	if len(projects) == 0 {
		return writef(os.Stdout, "No projects.\n")
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ID\tNAME\tROLE\tMODELS\tDESCRIPTION"); err != nil {
		return err
	}
	for _, p := range projects {
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\n",
			p.ID, p.Name, p.Role, len(p.Models), p.Description); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func printModels(models []model.Model) error {
	if len(models) == 0 {
		return writef(os.Stdout, "No models.\n")
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ID\tNAME\tPROVIDER\tTEMP\tIMAGE\tAUDIO"); err != nil {
		return err
	}
	for _, m := range models {
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%t\t%t\n",
			m.ID, m.ModelName, m.ProviderName, m.TemperatureAllowed, m.ImageInputAllowed, m.AudioInputAllowed); err != nil {
			return err
		}
	}
	return tw.Flush()
}
