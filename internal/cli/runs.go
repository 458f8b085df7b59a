package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/hdlorder/internal/order"
	"github.com/roach88/hdlorder/internal/store"
)

// RunsOptions holds flags for the runs and show commands.
type RunsOptions struct {
	*RootOptions
	Database string
	Tag      string
}

// RunList is the output of the runs command.
type RunList struct {
	Runs []store.Run `json:"runs"`
}

// WriteText renders the list for terminals, oldest first.
func (l RunList) WriteText(w io.Writer) error {
	if len(l.Runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}
	fmt.Fprintf(w, "%-4s %-36s %-16s %-20s %8s %7s %6s\n", "SEQ", "ID", "TAG", "CREATED", "VERTICES", "DELETED", "PRUNED")
	for _, r := range l.Runs {
		fmt.Fprintf(w, "%-4d %-36s %-16s %-20s %8d %7d %6d\n",
			r.Seq, r.ID, r.Tag, r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"), r.Vertices, r.Deleted, r.Pruned)
	}
	return nil
}

// RunDetail is the output of the show command.
type RunDetail struct {
	Run     store.Run            `json:"run"`
	Canon   []store.CanonSet     `json:"canon"`
	Domains []order.VertexDomain `json:"domains"`
	Pruned  []string             `json:"pruned"`
}

// WriteText renders one run for terminals.
func (d RunDetail) WriteText(w io.Writer) error {
	r := d.Run
	fmt.Fprintf(w, "Run: %s (seq %d)\n", r.ID, r.Seq)
	fmt.Fprintf(w, "Tag: %s\n", r.Tag)
	fmt.Fprintf(w, "Graph: %s\n", r.GraphHash)
	fmt.Fprintf(w, "Tool: %s\n", r.ToolVersion)
	fmt.Fprintf(w, "Created: %s\n", r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"))
	fmt.Fprintf(w, "Vertices: %d (preset %d, concrete %d, deleted %d)\n", r.Vertices, r.Preset, r.Concrete, r.Deleted)
	fmt.Fprintf(w, "Trigger sets: %d (hits %d)\n", r.Interned, r.Hits)
	for _, c := range d.Canon {
		fmt.Fprintf(w, "  %-4s %s\n", c.Handle, c.Text)
	}
	fmt.Fprintln(w, "Domains:")
	for _, vd := range d.Domains {
		name := vd.Name
		if vd.Phase != "" {
			name += " {" + vd.Phase + "}"
		}
		fmt.Fprintf(w, "  %-5s %-30s %s\n", vd.Kind, name, vd.Domain)
	}
	if len(d.Pruned) == 0 {
		_, err := fmt.Fprintln(w, "Pruned: none")
		return err
	}
	_, err := fmt.Fprintf(w, "Pruned: %s\n", strings.Join(d.Pruned, ", "))
	return err
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded domain passes",
		Long: `List the domain passes recorded with "hdlorder domains --db".

Examples:
  hdlorder runs --db ./hdlorder.db
  hdlorder runs --db ./hdlorder.db --tag top --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default: database from config)")
	cmd.Flags().StringVar(&opts.Tag, "tag", "", "only list runs with this tag")

	return cmd
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the domains of one recorded run",
		Long: `Show the trigger sets, vertex domains and pruned logic of a recorded
run. Any unique prefix of the run id is accepted.

Examples:
  hdlorder show --db ./hdlorder.db 0192f6c4`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default: database from config)")

	return cmd
}

// openExisting opens the run database without creating it.
func (o *RunsOptions) openExisting(formatter *OutputFormatter) (*store.Store, error) {
	path := o.Database
	if path == "" {
		path = o.Config.Database
	}
	if path == "" {
		_ = formatter.Error(ErrCodeNotFound, "no database: pass --db or set database in the config", nil)
		return nil, NewExitError(ExitCommandError, "no database configured")
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("database not found: %s", path), nil)
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", path))
	}
	st, err := store.Open(path)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func runRuns(opts *RunsOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	st, err := opts.openExisting(formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(commandContext(cmd), opts.Tag)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}
	return formatter.Success(RunList{Runs: runs})
}

func runShow(opts *RunsOptions, id string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	st, err := opts.openExisting(formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := commandContext(cmd)
	run, err := st.ReadRun(ctx, id)
	if errors.Is(err, store.ErrRunNotFound) {
		_ = formatter.Error(ErrCodeRunNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "no such run", err)
	}
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	detail := RunDetail{Run: run}
	if detail.Canon, err = st.ReadCanon(ctx, run.ID); err != nil {
		return WrapExitError(ExitCommandError, "failed to read trigger sets", err)
	}
	if detail.Domains, err = st.ReadDomains(ctx, run.ID); err != nil {
		return WrapExitError(ExitCommandError, "failed to read domains", err)
	}
	if detail.Pruned, err = st.ReadPruned(ctx, run.ID); err != nil {
		return WrapExitError(ExitCommandError, "failed to read pruned logic", err)
	}
	return formatter.Success(detail)
}

// commandContext returns the command's context, or Background when the
// command runs without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
