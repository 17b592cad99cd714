package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roboco-io/pubrender/internal/merge"
	"github.com/roboco-io/pubrender/internal/model"
	"github.com/roboco-io/pubrender/internal/render"
	"github.com/roboco-io/pubrender/internal/render/export"
	"github.com/roboco-io/pubrender/internal/render/pdf"
	"github.com/roboco-io/pubrender/internal/render/preview"
	"github.com/roboco-io/pubrender/internal/store"
)

var (
	renderFormat      string
	renderOutput      string
	renderFile        string
	renderHost        string
	renderDepartments string
	renderEvent       string
	renderLocation    string
	renderTemplate    string
	renderPage        string
	renderOrientation string
)

var renderCmd = &cobra.Command{
	Use:   "render [publication-id]",
	Short: "Render a publication",
	Long: `Render a publication as html (standalone export), pdf or preview.

The publication is read from the configured store, or from a record file
with --file. Record files hold the stored JSON form: id, event_id,
location_id, title, status and content.

Output goes to stdout unless -o is given. When -o names a directory the
suggested download name "{location} - {title}.{ext}" is used inside it.

Examples:
  pubrender render pub-42 --format pdf -o ./out/
  pubrender render --file weekly.json --host host.json --departments umoor.yaml
  pubrender render pub-42 --template branded --page letter --orientation landscape`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	f := renderCmd.Flags()
	f.StringVarP(&renderFormat, "format", "f", "html", "output format (html, pdf, preview)")
	f.StringVarP(&renderOutput, "output", "o", "", "output file or directory (default: stdout)")
	f.StringVar(&renderFile, "file", "", "publication record file instead of the store")
	f.StringVar(&renderHost, "host", "", "host publication record file (with --file)")
	f.StringVar(&renderDepartments, "departments", "", "departments YAML file (with --file)")
	f.StringVar(&renderEvent, "event", "", "event name shown in the header (with --file)")
	f.StringVar(&renderLocation, "location", "", "location name shown in the header (with --file)")
	f.StringVar(&renderTemplate, "template", "", "export template (professional, minimal, branded)")
	f.StringVar(&renderPage, "page", "", "PDF page format (a4, letter, a5)")
	f.StringVar(&renderOrientation, "orientation", "", "PDF orientation (portrait, landscape)")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	if (len(args) == 0) == (renderFile == "") {
		return fmt.Errorf("give either a publication id or --file")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, renderFile == "")
	if err != nil {
		return err
	}
	defer a.Close()

	prof, err := profile(a.cfg, renderTemplate)
	if err != nil {
		return err
	}

	var in render.Input
	if renderFile != "" {
		in, err = fileInput(a.log.Logger)
	} else {
		in, err = store.LoadInput(ctx, a.store, args[0])
	}
	if err != nil {
		return err
	}
	doc := render.NewDocument(in, prof, time.Now())

	var (
		data []byte
		name string
	)
	switch renderFormat {
	case "html":
		data, err = export.NewRenderer().Render(ctx, doc)
		name = export.Filename(doc)
	case "preview":
		data, err = preview.NewRenderer(preview.Options{}).Render(ctx, doc)
		name = render.Filename(doc.LocationName, doc.Title, ".preview.html")
	case "pdf":
		var opts pdf.Options
		opts, err = pdfOptions(a.cfg.PDF, renderPage, renderOrientation)
		if err != nil {
			return err
		}
		start := time.Now()
		data, err = pdf.New(opts).Render(ctx, doc)
		name = pdf.Filename(doc)
		a.log.Logger.Debug().Dur("took", time.Since(start)).Int("bytes", len(data)).Msg("rasterized pdf")
	default:
		return fmt.Errorf("unknown format %q (want html, pdf or preview)", renderFormat)
	}
	if err != nil {
		return err
	}

	return writeOutput(cmd, renderOutput, name, data)
}

func writeOutput(cmd *cobra.Command, output, name string, data []byte) error {
	if output == "" || output == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	path := output
	if info, err := os.Stat(output); (err == nil && info.IsDir()) || os.IsPathSeparator(output[len(output)-1]) {
		if err := os.MkdirAll(output, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		path = filepath.Join(output, name)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", path)
	return nil
}

// fileInput builds a render input from the --file family of flags.
func fileInput(log zerolog.Logger) (render.Input, error) {
	p, err := readPublication(renderFile, log)
	if err != nil {
		return render.Input{}, err
	}
	in := render.Input{
		Publication:  p,
		EventName:    renderEvent,
		LocationName: renderLocation,
	}
	if renderHost != "" {
		host, err := readPublication(renderHost, log)
		if err != nil {
			return render.Input{}, err
		}
		in.Host = &host
	}
	if renderDepartments != "" {
		deps, err := readDepartments(renderDepartments)
		if err != nil {
			return render.Input{}, err
		}
		in.Departments = deps
	}
	return in, nil
}

func readPublication(path string, log zerolog.Logger) (model.Publication, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Publication{}, fmt.Errorf("read publication: %w", err)
	}
	var rec model.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.Publication{}, fmt.Errorf("parse publication %s: %w", path, err)
	}
	return rec.Publication(log), nil
}

func readDepartments(path string) (merge.Departments, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read departments: %w", err)
	}
	var list []merge.Department
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse departments %s: %w", path, err)
	}
	return merge.NewDepartments(list), nil
}
