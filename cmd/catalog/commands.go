package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"text/tabwriter"

	"github.com/architeacher/catalog/internal/adapters/catalogfile"
	"github.com/architeacher/catalog/internal/config"
	"github.com/architeacher/catalog/internal/domain/model"
	"github.com/architeacher/catalog/internal/runtime"
	"github.com/spf13/cobra"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

type filterOptions struct {
	file     string
	colors   []string
	sizes    []string
	minPrice float64
	maxPrice float64
	name     string
	output   string
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "catalog",
		Short:         "Product catalog filtered by composable specifications",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		newServeCmd(),
		newFilterCmd(),
		newVersionCmd(),
	)

	return root
}

func newServeCmd() *cobra.Command {
	var (
		port     uint
		seedFile string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the catalog HTTP service",
		Long:  "Run the catalog HTTP service. Settings come from the environment, flags override them.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			overrides := func(cfg *config.ServiceConfig) {
				if cmd.Flags().Changed("port") {
					cfg.HTTPServer.Port = port
				}

				if cmd.Flags().Changed("seed-file") {
					cfg.Storage.SeedFile = seedFile
				}
			}

			return runtime.New(runtime.WithConfigOverrides(overrides)).Run()
		},
	}

	cmd.Flags().UintVar(&port, "port", 8080, "HTTP port, overrides HTTP_SERVER_PORT")
	cmd.Flags().StringVar(&seedFile, "seed-file", "", "YAML catalog loaded into an empty storage, overrides STORAGE_SEED_FILE")

	return cmd
}

func newFilterCmd() *cobra.Command {
	opts := &filterOptions{}

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Print the products of a YAML catalog that match every given condition",
		Example: `  # Large green products between 50 and 100
  catalog filter --file products.yaml --color green --size large --min-price 50 --max-price 100

  # Red or blue products whose name contains "car"
  catalog filter --file products.yaml --color red,blue --name car -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			criteria, err := opts.criteria(cmd)
			if err != nil {
				return err
			}

			products, err := catalogfile.Load(opts.file)
			if err != nil {
				return err
			}

			matches, _ := criteria.Apply(products)

			return writeProducts(cmd.OutOrStdout(), opts.output, matches)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.file, "file", "f", "", "YAML catalog to filter (required)")
	flags.StringSliceVar(&opts.colors, "color", nil, "accepted colors: red, green, blue")
	flags.StringSliceVar(&opts.sizes, "size", nil, "accepted sizes: small, medium, large")
	flags.Float64Var(&opts.minPrice, "min-price", 0, "inclusive lower price bound")
	flags.Float64Var(&opts.maxPrice, "max-price", 0, "inclusive upper price bound")
	flags.StringVar(&opts.name, "name", "", "case-insensitive name substring")
	flags.StringVarP(&opts.output, "output", "o", outputTable, "output format: table or json")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// criteria combines every given flag with AND. Repeated colors or sizes are
// alternatives. No pagination applies, so matches keep catalog order.
func (o *filterOptions) criteria(cmd *cobra.Command) (model.Criteria, error) {
	builder := model.NewCriteria().Unpaginated()

	if len(o.colors) > 0 {
		colors := make([]model.Color, 0, len(o.colors))

		for _, raw := range o.colors {
			color, err := model.ParseColor(raw)
			if err != nil {
				return model.Criteria{}, fmt.Errorf("--color %q: %w", raw, err)
			}

			colors = append(colors, color)
		}

		builder.WhereColorIn(colors...)
	}

	if len(o.sizes) > 0 {
		sizes := make([]model.Size, 0, len(o.sizes))

		for _, raw := range o.sizes {
			size, err := model.ParseSize(raw)
			if err != nil {
				return model.Criteria{}, fmt.Errorf("--size %q: %w", raw, err)
			}

			sizes = append(sizes, size)
		}

		builder.WhereSizeIn(sizes...)
	}

	var bounds []model.PriceOption

	if cmd.Flags().Changed("min-price") {
		if !isFinite(o.minPrice) {
			return model.Criteria{}, fmt.Errorf("--min-price: %w", model.ErrInvalidPrice)
		}

		bounds = append(bounds, model.WithMinPrice(o.minPrice))
	}

	if cmd.Flags().Changed("max-price") {
		if !isFinite(o.maxPrice) {
			return model.Criteria{}, fmt.Errorf("--max-price: %w", model.ErrInvalidPrice)
		}

		bounds = append(bounds, model.WithMaxPrice(o.maxPrice))
	}

	if len(bounds) > 0 {
		builder.WherePriceRange(bounds...)
	}

	if o.name != "" {
		builder.WhereNameLike(o.name)
	}

	switch o.output {
	case outputTable, outputJSON:
	default:
		return model.Criteria{}, fmt.Errorf("--output %q: must be %s or %s", o.output, outputTable, outputJSON)
	}

	return builder.Build(), nil
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}

func writeProducts(w io.Writer, format string, products []model.Product) error {
	if format == outputJSON {
		type product struct {
			Name  string  `json:"name"`
			Color string  `json:"color"`
			Size  string  `json:"size"`
			Price float64 `json:"price"`
		}

		out := make([]product, 0, len(products))
		for _, p := range products {
			out = append(out, product{Name: p.Name, Color: p.Color.String(), Size: p.Size.String(), Price: p.Price})
		}

		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return encoder.Encode(out)
	}

	table := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(table, "NAME\tCOLOR\tSIZE\tPRICE")

	for _, p := range products {
		_, _ = fmt.Fprintf(table, "%s\t%s\t%s\t%s\n",
			p.Name, p.Color, p.Size, strconv.FormatFloat(p.Price, 'f', -1, 64))
	}

	return table.Flush()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, _ []string) {
			version := config.ServiceVersion
			if version == "" {
				version = "dev"
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "catalog %s", version)

			if config.CommitSHA != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), " (%s)", config.CommitSHA)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout())
		},
	}
}
