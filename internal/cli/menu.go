package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roboco-io/pubrender/internal/menuimport"
	"github.com/roboco-io/pubrender/internal/model"
)

var menuHeader string

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Menu block tools",
}

var menuImportCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Convert a spreadsheet export into a menu block",
	Long: `Read a CSV file with a header row and the columns name, nutrition and
allergens, and print the equivalent menu block as JSON.

Rows without a name are skipped.

Example:
  pubrender menu import niyaz.csv --header "Thursday Niyaz"`,
	Args: cobra.ExactArgs(1),
	RunE: runMenuImport,
}

func init() {
	menuImportCmd.Flags().StringVar(&menuHeader, "header", "", "menu header text")

	menuCmd.AddCommand(menuImportCmd)
	rootCmd.AddCommand(menuCmd)
}

func runMenuImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open menu file: %w", err)
	}
	defer f.Close()

	items, err := menuimport.FromCSV(f)
	if err != nil {
		return err
	}
	block := model.NewMenuBlock(menuHeader, items...)
	data, err := json.MarshalIndent(block, "", "  ")
	if err != nil {
		return fmt.Errorf("encode menu block: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
