package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roboco-io/pubrender/internal/model"
)

var validateFile string

var validateCmd = &cobra.Command{
	Use:   "validate [publication-id]",
	Short: "Check a publication before saving",
	Long: `Validate a publication from the store or from a record file.

Field errors are listed one per line and the command exits non-zero.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateFile, "file", "", "publication record file instead of the store")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if (len(args) == 0) == (validateFile == "") {
		return fmt.Errorf("give either a publication id or --file")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, validateFile == "")
	if err != nil {
		return err
	}
	defer a.Close()

	var p model.Publication
	if validateFile != "" {
		p, err = readPublication(validateFile, a.log.Logger)
	} else {
		p, err = a.store.Publication(ctx, args[0])
	}
	if err != nil {
		return err
	}

	return reportValidation(cmd, model.Validate(p))
}

func reportValidation(cmd *cobra.Command, err error) error {
	if err == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "valid")
		return nil
	}
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		return err
	}

	fields := verr.Map()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\t%s\n", name, fields[name])
	}
	w.Flush()
	return fmt.Errorf("publication is invalid: %d field(s)", len(names))
}
