package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"phewasview/adapters/excel"
	"phewasview/app"
	"phewasview/domain/core"
	"phewasview/domain/phewas"
	"phewasview/internal"
	"phewasview/internal/catalog"
	"phewasview/internal/config"
	"phewasview/internal/container"
	"phewasview/internal/pipeline"
	"phewasview/internal/render"
	"phewasview/internal/report"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "phewas-cli",
		Short: "Query ExPheWAS gene-phenotype associations from the command line",
	}

	rootCmd.AddCommand(
		newLoadCmd(),
		newPlotCmd(),
		newLabelsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newContainer() (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	internal.DefaultLogger.SetLevel(internal.ParseLogLevel(cfg.LogLevel))
	return container.New(cfg)
}

// load runs one load in a private session and prints its log
func load(ctx context.Context, c *container.Container, genes []string, subset string) (core.SessionID, *phewas.ResultSet) {
	sid := core.NewSessionID()
	tokens := phewas.ParseGeneList(strings.Join(genes, ","))
	rs, report := c.ExploreService.Load(ctx, sid, tokens, phewas.ParseSubset(subset))
	for _, line := range report.Log {
		fmt.Println(line)
	}
	return sid, rs
}

func newLoadCmd() *cobra.Command {
	var subset, csvPath, xlsxPath, reportPath string

	cmd := &cobra.Command{
		Use:   "load GENE...",
		Short: "Fetch association rows for genes and optionally export them",
		Long: `Resolve each gene symbol or Ensembl ID, fetch its association rows and
print a per-gene log. Rows of every resolved gene can be exported.

Example: phewas-cli load PCSK9 APOB --subset FEMALE_ONLY --csv out.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			sid, rs := load(cmd.Context(), c, args, subset)
			if rs.IsEmpty() {
				if reportPath != "" {
					return writeReport(cmd.Context(), c, sid, reportPath)
				}
				return nil
			}

			table, err := c.ExploreService.ExportTable(cmd.Context(), sid)
			if err != nil {
				return err
			}
			for _, path := range []string{csvPath, xlsxPath} {
				if path == "" {
					continue
				}
				if err := excel.WriteFile(path, table); err != nil {
					return err
				}
				fmt.Printf("Wrote %d rows to %s\n", len(table.Rows), path)
			}
			if reportPath != "" {
				return writeReport(cmd.Context(), c, sid, reportPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&subset, "subset", string(phewas.SubsetBoth), "Analysis subset: BOTH|MALE_ONLY|FEMALE_ONLY")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write every row to this CSV file")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Write every row to this XLSX file")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write a load report (.md, or .html for a web page)")
	return cmd
}

func writeReport(ctx context.Context, c *container.Container, sid core.SessionID, path string) error {
	md, err := c.ExploreService.Report(ctx, sid)
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), ".html") {
		md = report.HTML(md)
	}
	if err := os.WriteFile(path, md, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Printf("Wrote report to %s\n", path)
	return nil
}

func newPlotCmd() *cobra.Command {
	var (
		subset, kind, out, metric, gene, category string
		limit                                     int
		useLog, legend                            bool
	)

	cmd := &cobra.Command{
		Use:   "plot GENE...",
		Short: "Render a volcano, bar, heatmap or bubble chart to PNG",
		Long: `Load genes and render one chart of their top associations.

Example: phewas-cli plot PCSK9 APOB --kind heatmap --metric q --limit 5 --out heatmap.png`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plotKind, err := render.ParseKind(kind)
			if err != nil {
				return err
			}

			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			sid, _ := load(cmd.Context(), c, args, subset)

			req := app.PlotRequest{
				Kind:    plotKind,
				Metric:  phewas.Metric(strings.ToLower(metric)),
				Limit:   limitFlag(cmd, limit),
				UseLog:  useLog,
				Options: render.DefaultOptions(),
			}
			req.Options.ShowLegend = legend
			req.Options.Gene = strings.TrimSpace(gene)
			if category != "" {
				if req.Options.Category, err = phewas.ParseAnalysisType(category); err != nil {
					return err
				}
			}

			frame, err := c.ExploreService.Frame(cmd.Context(), sid, req)
			if err != nil {
				return err
			}
			if summary := frame.Summary(); summary.Rows > 0 {
				fmt.Printf("Plotting %d rows for %d genes, %s in [%.3g, %.3g], median %.3g\n",
					summary.Rows, summary.Genes, summary.Metric, summary.MinY, summary.MaxY, summary.MedY)
			}

			fig, err := c.ExploreService.Plot(cmd.Context(), sid, req)
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			defer f.Close()
			if err := c.Renderer.RenderPNG(f, fig); err != nil {
				return err
			}
			fmt.Printf("Wrote %s to %s\n", fig.Title, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&subset, "subset", string(phewas.SubsetBoth), "Analysis subset: BOTH|MALE_ONLY|FEMALE_ONLY")
	cmd.Flags().StringVar(&kind, "kind", string(render.KindVolcano), "Chart: volcano|bar|heatmap|bubble")
	cmd.Flags().StringVar(&out, "out", "plot.png", "Output PNG path")
	cmd.Flags().StringVar(&metric, "metric", string(phewas.MetricP), "Metric: p|q")
	cmd.Flags().IntVar(&limit, "limit", 10, "Top rows per gene and category; values below 1 become 1 (unset uses DEFAULT_LIMIT)")
	cmd.Flags().BoolVar(&useLog, "log", true, "Plot -log10 of the metric")
	cmd.Flags().BoolVar(&legend, "legend", true, "Draw the legend")
	cmd.Flags().StringVar(&gene, "gene", "", "Bubble chart gene (default: first gene)")
	cmd.Flags().StringVar(&category, "category", "", "Bubble chart category (default: CONTINUOUS_VARIABLE)")
	return cmd
}

// limitFlag returns 0 when --limit was not given, so the configured default
// applies; an explicit value is floored to 1
func limitFlag(cmd *cobra.Command, limit int) int {
	if !cmd.Flags().Changed("limit") {
		return 0
	}
	return pipeline.CoerceLimit(limit)
}

func newLabelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "labels CATEGORY",
		Short: "List the outcome labels of one analysis type",
		Long: `Print the unique, sorted outcome labels the catalog holds for a category.

Example: phewas-cli labels PHECODES`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := phewas.ParseAnalysisType(args[0])
			if err != nil {
				return fmt.Errorf("%w: %s (want one of %v)", err, args[0], phewas.AnalysisTypes)
			}

			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			cat, err := c.Catalog.Get(cmd.Context())
			if err != nil {
				return err
			}
			for _, label := range catalog.LabelList(cat, category) {
				fmt.Println(label)
			}
			return nil
		},
	}
}
