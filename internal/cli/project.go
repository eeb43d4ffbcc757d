package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/blockc/internal/catalog"
	"github.com/roach88/blockc/internal/ctxlog"
	"github.com/roach88/blockc/internal/store"
	"github.com/roach88/blockc/internal/validator"
	"github.com/roach88/blockc/internal/workspace"
)

// ProjectOptions holds flags shared by the project subcommands.
type ProjectOptions struct {
	*RootOptions
	DB string // sqlite database path
}

// SaveReport is the JSON payload of project save.
type SaveReport struct {
	Project  *store.Project `json:"project"`
	Built    bool           `json:"built"`
	Hash     string         `json:"hash,omitempty"`
	Size     int            `json:"size,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
	Errors   int            `json:"errors"`
}

// NewProjectCommand creates the project command group.
func NewProjectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProjectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage stored projects",
		Long: `Store workspaces as named projects in a local SQLite database. Each save
bumps the project revision and, unless --no-build is given, records the
generated program as a build.`,
	}
	cmd.PersistentFlags().StringVar(&opts.DB, "db", DefaultDB, "project database path")

	cmd.AddCommand(newProjectNewCommand(opts))
	cmd.AddCommand(newProjectSaveCommand(opts))
	cmd.AddCommand(newProjectLoadCommand(opts))
	cmd.AddCommand(newProjectListCommand(opts))
	cmd.AddCommand(newProjectBuildsCommand(opts))
	cmd.AddCommand(newProjectDeleteCommand(opts))
	return cmd
}

// withStore opens the database for one command.
func withStore(opts *ProjectOptions, f *OutputFormatter, fn func(*store.Store) error) error {
	st, err := store.Open(opts.DB)
	if err != nil {
		return fail(f, ExitCommandError, &LoadError{Code: ErrCodeStoreFailed, Message: err.Error()})
	}
	defer st.Close()
	return fn(st)
}

// storeFailure reports a store error. Missing and duplicate projects keep
// their own codes.
func storeFailure(f *OutputFormatter, err error) error {
	if errorCode(err) == ErrCodeGeneric {
		err = &LoadError{Code: ErrCodeStoreFailed, Message: err.Error()}
	}
	return fail(f, ExitFailure, err)
}

func newProjectNewCommand(opts *ProjectOptions) *cobra.Command {
	var (
		build       BuildFlags
		description string
		from        string
	)
	cmd := &cobra.Command{
		Use:           "new <name>",
		Short:         "Create a project",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
			settings, err := resolveSettings(cmd, opts.RootOptions, &build)
			if err != nil {
				return fail(f, ExitCommandError, &LoadError{Code: ErrCodeManifest, Message: err.Error()})
			}

			var w *workspace.Workspace
			if from != "" {
				cat, err := loadCatalog(settings)
				if err != nil {
					return fail(f, ExitCommandError, err)
				}
				if w, err = loadWorkspaceFile(cat, from); err != nil {
					return fail(f, ExitCommandError, err)
				}
			}

			return withStore(opts, f, func(st *store.Store) error {
				p, err := st.Create(commandContext(cmd), store.NewProject{
					Name:        args[0],
					Description: description,
					Target:      settings.Target,
					Device:      settings.Device,
				}, w)
				if err != nil {
					return storeFailure(f, err)
				}
				if f.JSON() {
					return f.Success(p)
				}
				fmt.Fprintf(f.Writer, "%s Created project %s (%s) for %s/%s\n", f.Mark(true), p.Name, p.ID, p.Target, p.Device)
				return nil
			})
		},
	}
	addBuildFlags(cmd, &build)
	cmd.Flags().StringVar(&description, "description", "", "project description")
	cmd.Flags().StringVar(&from, "from", "", "initial workspace file")
	return cmd
}

func newProjectSaveCommand(opts *ProjectOptions) *cobra.Command {
	var (
		build   BuildFlags
		noBuild bool
	)
	cmd := &cobra.Command{
		Use:   "save <project> <workspace-file>",
		Short: "Save a workspace into a project",
		Long: `Replace the project's tree with the workspace file and compile it for the
project's target and device. --target and --device override and update
the stored pair.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
			settings, err := resolveSettings(cmd, opts.RootOptions, &build)
			if err != nil {
				return fail(f, ExitCommandError, &LoadError{Code: ErrCodeManifest, Message: err.Error()})
			}
			cat, err := loadCatalog(settings)
			if err != nil {
				return fail(f, ExitCommandError, err)
			}
			w, err := loadWorkspaceFile(cat, args[1])
			if err != nil {
				return fail(f, ExitCommandError, err)
			}

			return withStore(opts, f, func(st *store.Store) error {
				ctx := commandContext(cmd)
				p, err := st.Resolve(ctx, args[0])
				if err != nil {
					return storeFailure(f, err)
				}
				if !cmd.Flags().Changed("target") {
					settings.Target = p.Target
				}
				if !cmd.Flags().Changed("device") {
					settings.Device = p.Device
				}

				report := SaveReport{}
				var art *store.Artifact
				if !noBuild {
					art, report, err = buildArtifact(ctx, settings, cat, w)
					if err != nil {
						return fail(f, ExitFailure, err)
					}
				}

				saved, err := st.Save(ctx, p.ID, w, art)
				if err != nil {
					return storeFailure(f, err)
				}
				report.Project = saved
				ctxlog.FromContext(ctx).Debug("project saved", "id", saved.ID, "revision", saved.Revision, "built", report.Built)
				return outputSave(f, report)
			})
		},
	}
	addBuildFlags(cmd, &build)
	cmd.Flags().BoolVar(&noBuild, "no-build", false, "store the tree without compiling")
	return cmd
}

// buildArtifact compiles and validates w for a save.
func buildArtifact(ctx context.Context, s *Settings, cat *catalog.Catalog, w *workspace.Workspace) (*store.Artifact, SaveReport, error) {
	res, err := compileWorkspace(ctx, s, cat, w)
	if err != nil {
		return nil, SaveReport{}, err
	}
	check := validator.Validate(res.Source, validator.Options{Language: validator.LanguageForTarget(res.Target)})
	art := &store.Artifact{
		Source:   res.Source,
		Target:   res.Target,
		Device:   res.Device,
		Errors:   len(check.Errors),
		Warnings: len(res.Warnings) + len(check.Warnings),
	}
	return art, SaveReport{
		Built:    true,
		Hash:     res.Hash,
		Size:     len(res.Source),
		Warnings: res.Warnings,
		Errors:   len(check.Errors),
	}, nil
}

func outputSave(f *OutputFormatter, r SaveReport) error {
	if f.JSON() {
		return f.Success(r)
	}
	for _, w := range r.Warnings {
		f.Warn("%s", w)
	}
	p := r.Project
	fmt.Fprintf(f.Writer, "%s Saved %s revision %d\n", f.Mark(r.Errors == 0), p.Name, p.Revision)
	if r.Built {
		fmt.Fprintf(f.Writer, "  built for %s/%s: %d bytes, %d validation error(s)\n", p.Target, p.Device, r.Size, r.Errors)
	}
	return nil
}

func newProjectLoadCommand(opts *ProjectOptions) *cobra.Command {
	var (
		output string
		source bool
	)
	cmd := &cobra.Command{
		Use:   "load <project>",
		Short: "Print a project's workspace tree or last program",
		Long: `Print the stored workspace tree as canonical JSON, or with --source the
program generated by the last build. A project is named by id or name.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return withStore(opts, f, func(st *store.Store) error {
				p, err := st.Resolve(commandContext(cmd), args[0])
				if err != nil {
					return storeFailure(f, err)
				}
				body := p.Tree
				if source {
					if p.Source == "" {
						return fail(f, ExitFailure, &LoadError{
							Code: ErrCodeNotFound, Message: fmt.Sprintf("project %s has no build yet", p.Name),
						})
					}
					body = p.Source
				}

				if output != "" {
					if err := os.WriteFile(output, []byte(body), 0644); err != nil {
						return fail(f, ExitCommandError,
							&LoadError{Code: ErrCodeWriteFailed, Message: fmt.Sprintf("writing output file: %v", err)})
					}
				}
				if f.JSON() {
					data := map[string]any{"project": p}
					if source {
						data["source"] = p.Source
					} else {
						data["tree"] = json.RawMessage(p.Tree)
					}
					return f.Success(data)
				}
				if output != "" {
					fmt.Fprintf(f.Writer, "Wrote %s\n", output)
					return nil
				}
				fmt.Fprint(f.Writer, body)
				if !source {
					fmt.Fprintln(f.Writer)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&source, "source", false, "print the last generated program")
	return cmd
}

func newProjectListCommand(opts *ProjectOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List projects",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return withStore(opts, f, func(st *store.Store) error {
				projects, err := st.List(commandContext(cmd))
				if err != nil {
					return storeFailure(f, err)
				}
				if f.JSON() {
					return f.Success(projects)
				}
				if len(projects) == 0 {
					fmt.Fprintln(f.Writer, "No projects")
					return nil
				}
				tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tTARGET\tREVISION\tID")
				for _, p := range projects {
					fmt.Fprintf(tw, "%s\t%s/%s\t%d\t%s\n", p.Name, p.Target, p.Device, p.Revision, p.ID)
				}
				return tw.Flush()
			})
		},
	}
}

func newProjectBuildsCommand(opts *ProjectOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "builds <project>",
		Short:         "List a project's recorded builds",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return withStore(opts, f, func(st *store.Store) error {
				ctx := commandContext(cmd)
				p, err := st.Resolve(ctx, args[0])
				if err != nil {
					return storeFailure(f, err)
				}
				builds, err := st.Builds(ctx, p.ID)
				if err != nil {
					return storeFailure(f, err)
				}
				if f.JSON() {
					return f.Success(builds)
				}
				if len(builds) == 0 {
					fmt.Fprintf(f.Writer, "No builds for %s\n", p.Name)
					return nil
				}
				tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "REV\tTARGET\tSIZE\tERRORS\tWARNINGS\tHASH")
				for _, b := range builds {
					fmt.Fprintf(tw, "%d\t%s/%s\t%d\t%d\t%d\t%s\n",
						b.Revision, b.Target, b.Device, b.Size, b.Errors, b.Warnings, shortHash(b.SourceHash))
				}
				return tw.Flush()
			})
		},
	}
}

func newProjectDeleteCommand(opts *ProjectOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <project>",
		Short:         "Delete a project and its builds",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return withStore(opts, f, func(st *store.Store) error {
				ctx := commandContext(cmd)
				p, err := st.Resolve(ctx, args[0])
				if err != nil {
					return storeFailure(f, err)
				}
				if err := st.Delete(ctx, p.ID); err != nil {
					return storeFailure(f, err)
				}
				if f.JSON() {
					return f.Success(map[string]string{"deleted": p.ID})
				}
				fmt.Fprintf(f.Writer, "%s Deleted %s\n", f.Mark(true), p.Name)
				return nil
			})
		},
	}
}

// shortHash trims a digest for table output.
func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
