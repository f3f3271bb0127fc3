package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mturchin/tfjs-converter/graphmodel"
	"github.com/mturchin/tfjs-converter/internal/config"
	"github.com/mturchin/tfjs-converter/internal/watcher"
	"github.com/mturchin/tfjs-converter/internal/xfs"
)

// loadFlags are the per-command flags shared by inspect and watch.
type loadFlags struct {
	fromTFHub bool
	frozen    bool
	manifest  string
	headers   []string
	progress  bool
}

func (f *loadFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.fromTFHub, "from-tfhub", false, "Treat the locator as a TF-Hub module")
	cmd.Flags().BoolVar(&f.frozen, "frozen", false, "Use the deprecated frozen-model entry point")
	cmd.Flags().StringVar(&f.manifest, "manifest", "", "Explicit weight-manifest URL (frozen models only)")
	cmd.Flags().StringArrayVar(&f.headers, "header", nil, "Extra request header, key=value (repeatable)")
	cmd.Flags().BoolVar(&f.progress, "progress", false, "Log load progress")
}

func newRootCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "tfjsload",
		Short:        "Load and inspect TF.js graph models",
		Long:         "Load TF.js graph models (model.json, frozen binary, TF-Hub) and print what they contain.",
		SilenceUsage: true,
	}

	cmd.AddCommand(inspectCmd(cfg))
	cmd.AddCommand(watchCmd(cfg))

	return cmd
}

func inspectCmd(cfg *config.Config) *cobra.Command {
	var flags loadFlags

	cmd := &cobra.Command{
		Use:   "inspect <model-url-or-path>",
		Short: "Load a model and print a summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildOptions(cfg, &flags)
			if err != nil {
				return err
			}

			model, err := load(cmd.Context(), args[0], &flags, opts)
			if err != nil {
				return err
			}
			return printModel(cmd.OutOrStdout(), model)
		},
	}

	flags.register(cmd)
	return cmd
}

func watchCmd(cfg *config.Config) *cobra.Command {
	var flags loadFlags

	cmd := &cobra.Command{
		Use:   "watch <model-path>",
		Short: "Reload a local model whenever it changes",
		Long:  "Load a local model, then reload and re-summarize it every time the file is rewritten. Useful while a converter regenerates the model in place.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildOptions(cfg, &flags)
			if err != nil {
				return err
			}

			path := xfs.ExpandTilde(args[0])
			w, err := watcher.New(cmd.Context(), path,
				func(ctx context.Context) (*graphmodel.Model, error) {
					return load(ctx, path, &flags, opts)
				},
				func(model *graphmodel.Model, err error) {
					if err == nil {
						_ = printModel(cmd.OutOrStdout(), model)
					}
				})
			if err != nil {
				return err
			}
			defer w.Close()

			<-cmd.Context().Done()
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// load routes through the entry point the flags select.
func load(ctx context.Context, url string, flags *loadFlags, opts *graphmodel.LoadOptions) (*graphmodel.Model, error) {
	url = xfs.ExpandTilde(url)
	if flags.frozen {
		return graphmodel.LoadFrozenModel(ctx, url, flags.manifest, opts) //nolint:staticcheck // the deprecated path is part of the CLI surface
	}
	return graphmodel.LoadGraphModel(ctx, url, opts)
}

func buildOptions(cfg *config.Config, flags *loadFlags) (*graphmodel.LoadOptions, error) {
	opts := &graphmodel.LoadOptions{
		FromTFHub:      flags.fromTFHub,
		RequestOptions: cfg.RequestOptions(),
	}

	if len(flags.headers) > 0 {
		if opts.RequestOptions == nil {
			opts.RequestOptions = &graphmodel.RequestOptions{}
		}
		headers := make(map[string]string, len(flags.headers))
		for k, v := range opts.RequestOptions.Headers {
			headers[k] = v
		}
		for _, h := range flags.headers {
			key, value, ok := strings.Cut(h, "=")
			if !ok {
				return nil, fmt.Errorf("invalid header %q, expected key=value", h)
			}
			headers[key] = value
		}
		opts.RequestOptions.Headers = headers
	}

	if flags.progress {
		opts.OnProgress = func(fraction float64) {
			fmt.Printf("\rloading... %3.0f%%", fraction*100)
			if fraction >= 1 {
				fmt.Println()
			}
		}
	}

	return opts, nil
}

func printModel(out io.Writer, m *graphmodel.Model) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintf(w, "Format:\t%s\n", m.Format)
	fmt.Fprintf(w, "Source:\t%s\n", m.Source)
	if m.GeneratedBy != "" {
		fmt.Fprintf(w, "Generated by:\t%s\n", m.GeneratedBy)
	}
	if m.ConvertedBy != "" {
		fmt.Fprintf(w, "Converted by:\t%s\n", m.ConvertedBy)
	}
	fmt.Fprintf(w, "Weights:\t%d (%d bytes)\n", m.NumWeights(), m.WeightBytes())

	if m.GraphDef != nil {
		fmt.Fprintf(w, "Nodes:\t%d\n", len(m.GraphDef.Nodes))
		fmt.Fprintf(w, "Inputs:\t%s\n", strings.Join(m.GraphDef.InputNodes(), ", "))
		fmt.Fprintf(w, "Outputs:\t%s\n", strings.Join(m.GraphDef.OutputNodes(), ", "))
	}

	if m.Signature != nil {
		fmt.Fprintf(w, "Signature inputs:\t%s\n", tensorSummary(m.Signature.Inputs))
		fmt.Fprintf(w, "Signature outputs:\t%s\n", tensorSummary(m.Signature.Outputs))
	}

	return w.Flush()
}

func tensorSummary(tensors map[string]graphmodel.TensorInfo) string {
	keys := make([]string, 0, len(tensors))
	for k := range tensors {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		t := tensors[k]
		dims := make([]string, 0, len(t.Shape))
		for _, d := range t.Shape {
			dims = append(dims, fmt.Sprintf("%d", d))
		}
		parts = append(parts, fmt.Sprintf("%s [%s]", k, strings.Join(dims, "x")))
	}
	return strings.Join(parts, ", ")
}
