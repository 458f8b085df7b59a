package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/hdlorder/internal/compiler"
)

// FileValidation holds the outcome for one graph description.
type FileValidation struct {
	Path     string                     `json:"path"`
	Valid    bool                       `json:"valid"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
	Warnings []compiler.CycleWarning    `json:"warnings,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// ErrorCount returns the number of errors over all files.
func (r ValidationResult) ErrorCount() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Errors)
	}
	return n
}

// WriteText renders the result for terminals.
func (r ValidationResult) WriteText(w io.Writer) error {
	for _, f := range r.Files {
		mark := "✓"
		if !f.Valid {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %s\n", mark, f.Path)
		for _, e := range f.Errors {
			if e.Line > 0 {
				fmt.Fprintf(w, "  line %d\n", e.Line)
			}
			fmt.Fprintf(w, "  %s %s: %s\n", e.Code, e.Field, e.Message)
		}
		for _, warn := range f.Warnings {
			fmt.Fprintf(w, "  warning: %s\n", warn.Message)
		}
	}
	if r.Valid {
		_, err := fmt.Fprintf(w, "✓ All graph descriptions valid (%d)\n", len(r.Files))
		return err
	}
	_, err := fmt.Fprintf(w, "✗ Validation failed with %d error(s)\n", r.ErrorCount())
	return err
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <graph-file|dir>",
		Short: "Check graph descriptions without running the domain pass",
		Long: `Check graph descriptions without running the domain pass.

Reports undeclared references, misplaced fields, unparseable or
combinational trigger items, negative weights and nonzero edges that run
against the vertex order. Loops through nonzero edges are reported as
warnings naming the whole cycle.

Given a directory, every .cue, .yaml, .yml and .hcl file below it is checked.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	files, err := FindGraphFiles(path)
	if err != nil {
		_ = formatter.Error(loadErrorCode(err), err.Error(), nil)
		return WrapExitError(ExitCommandError, "cannot validate", err)
	}
	formatter.VerboseLog("Found %d graph description(s) in %s", len(files), path)

	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(files))}
	for _, file := range files {
		fv := ValidateGraphFile(file)
		formatter.VerboseLog("Validated %s: %d error(s), %d warning(s)", file, len(fv.Errors), len(fv.Warnings))
		result.Files = append(result.Files, fv)
		if !fv.Valid {
			result.Valid = false
		}
	}

	if result.Valid {
		return formatter.Success(result)
	}

	if formatter.Format == "json" {
		first := firstError(result)
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: first.Code, Message: first.Message},
		}); err != nil {
			return err
		}
	} else if err := result.WriteText(formatter.Writer); err != nil {
		return err
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", result.ErrorCount()))
}

// ValidateGraphFile loads and checks one description. Load failures are
// reported as errors of the file, not returned.
func ValidateGraphFile(path string) FileValidation {
	fv := FileValidation{Path: path}

	spec, err := LoadGraph(path)
	if err != nil {
		ve := compiler.ValidationError{Field: "load", Code: loadErrorCode(err), Message: err.Error()}
		var le *LoadError
		if errors.As(err, &le) {
			ve.Message = le.Message
			if le.Pos.IsValid() {
				ve.Line = le.Pos.Line()
			}
		}
		fv.Errors = []compiler.ValidationError{ve}
		return fv
	}

	fv.Errors = compiler.Validate(spec)
	if cycles := compiler.AnalyzeCycles(spec); len(cycles) > 0 {
		fv.Warnings = cycles
	}
	fv.Valid = len(fv.Errors) == 0
	return fv
}

func firstError(r ValidationResult) compiler.ValidationError {
	for _, f := range r.Files {
		if len(f.Errors) > 0 {
			return f.Errors[0]
		}
	}
	return compiler.ValidationError{Code: ErrCodeGeneric, Message: "validation failed"}
}
