package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/dataprep/internal/cache"
	"github.com/born-ml/dataprep/internal/loader"
)

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "dataprep",
		Short: "Prepare named datasets as raw binary payloads with a descriptor",
		Long: `dataprep reads or generates a named dataset, writes each split as a headerless
binary file, and records shapes, element types and auxiliary values in a descriptor
so later runs can load the data without re-reading the sources.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (default $DATAPREP_CONFIG)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVarP(&opts.outputDir, "output", "o", "", "prepared dataset directory")
	flags.StringVar(&opts.sourceDir, "source", "", "raw source directory")

	root.AddCommand(
		newPrepareCmd(opts),
		newShowCmd(opts),
		newListCmd(opts),
		newVerifyCmd(opts),
		newVersionCmd(),
	)
	return root
}

func newPrepareCmd(opts *rootOptions) *cobra.Command {
	var (
		all         bool
		skipRead    bool
		seed        uint64
		parallelism int
	)
	cmd := &cobra.Command{
		Use:   "prepare [dataset...]",
		Short: "Prepare one or more datasets",
		Example: `  dataprep prepare toyReg toyClass
  dataprep prepare --all --parallelism 4
  dataprep prepare MNIST --skip-read`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				a.exportMetrics = true
				names := args
				if all {
					names = a.registry.Names()
				}
				if len(names) == 0 {
					return errors.New("no dataset named; pass names or --all")
				}
				if !cmd.Flags().Changed("seed") {
					seed = a.cfg.Seed
				}
				if !cmd.Flags().Changed("parallelism") {
					parallelism = a.cfg.Parallelism
				}

				descs, err := a.dispatcher(seed).PrepareAll(cmd.Context(), names, skipRead, parallelism)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "DATASET\tMODEL\tSPLITS\tBYTES\tSEED\tDIR")
				for _, d := range descs {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n",
						d.Dataset, d.ModelName, len(d.Splits()), d.TotalBytes(), d.Seed,
						filepath.Join(a.cfg.OutputDir, d.Dataset))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "prepare every registered dataset")
	cmd.Flags().BoolVar(&skipRead, "skip-read", false, "return cached descriptors without reading sources")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for synthetic datasets (0 derives one from the clock)")
	cmd.Flags().IntVarP(&parallelism, "parallelism", "p", 1, "datasets prepared at once")
	return cmd
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <dataset>",
		Short: "Print the cached descriptor of a dataset as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				d, err := a.cache.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				enc := yaml.NewEncoder(a.out)
				enc.SetIndent(2)
				if err := enc.Encode(d); err != nil {
					return fmt.Errorf("failed to render descriptor: %w", err)
				}
				return enc.Close()
			})
		},
	}
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered datasets and whether they are prepared",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app) error {
				tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "DATASET\tMODEL\tSTATUS\tPREPARED AT")
				for _, name := range a.registry.Names() {
					p, err := a.registry.Lookup(name)
					if err != nil {
						return err
					}
					status, at := "-", "-"
					d, err := a.cache.Load(cmd.Context(), name)
					switch {
					case err == nil:
						status, at = "prepared", d.PreparedAt.Format("2006-01-02 15:04:05")
					case errors.Is(err, cache.ErrNotFound):
						status = "missing"
					default:
						status = "invalid"
						a.logger.Warn("unreadable descriptor", "dataset", name, "error", err)
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, p.ModelName(), status, at)
				}
				return tw.Flush()
			})
		},
	}
}

func newVerifyCmd(opts *rootOptions) *cobra.Command {
	var skipChecksum bool
	cmd := &cobra.Command{
		Use:   "verify <dataset...>",
		Short: "Check that every payload matches its descriptor",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				for _, name := range args {
					d, err := a.cache.Load(cmd.Context(), name)
					if err != nil {
						return err
					}
					dir := filepath.Join(a.cfg.OutputDir, name)
					if _, err := loader.Load(dir, d, loader.Options{SkipChecksum: skipChecksum}); err != nil {
						return fmt.Errorf("%s: %w", name, err)
					}
					for _, ns := range d.Splits() {
						fmt.Fprintf(a.out, "%s/%s\t%s\t%s\t%s\tok\n", name, ns.Split.Path, ns.Name, ns.Split.Shape, ns.Split.DType)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&skipChecksum, "skip-checksum", false, "only check sizes")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dataprep %s\n", version)
		},
	}
}
