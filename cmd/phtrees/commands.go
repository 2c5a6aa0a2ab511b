package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/jrhy/phtrees"
	"github.com/jrhy/phtrees/spatial"
	"github.com/spf13/cobra"
)

type queryFlags struct {
	x, y      float64
	xr, yr    string
	epsilon   float64
	jsonOut   string
	plot      bool
	ancestors bool
	children  bool
}

func newRootCmd(cfg Config, logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "phtrees",
		Short:         "Query the optimal and stable volumes of a persistence diagram",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%v: %w", err, phtrees.ErrConfiguration)
	})
	root.AddCommand(newQueryCmd(cfg, logger), newSnapshotCmd(cfg, logger))
	return root
}

func newQueryCmd(cfg Config, logger *slog.Logger) *cobra.Command {
	var f queryFlags
	cmd := &cobra.Command{
		Use:   "query INPUT",
		Short: "Resolve the pairs at a point or inside a rectangle of the diagram",
		Long: `INPUT is a .json or .yaml diagram file, or a stored snapshot
referenced as file:DIR/NAME or s3://BUCKET/PREFIX/NAME.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), cmd, args[0], &f, cfg, logger)
		},
	}
	fl := cmd.Flags()
	fl.Float64VarP(&f.x, "birth", "x", 0, "birth time of a point query")
	fl.Float64VarP(&f.y, "death", "y", 0, "death time of a point query")
	fl.StringVarP(&f.xr, "birth-range", "X", "", "birth range lo:hi of a rectangle query")
	fl.StringVarP(&f.yr, "death-range", "Y", "", "death range lo:hi of a rectangle query")
	fl.Float64VarP(&f.epsilon, "stable", "S", 0, "report stable volumes for this epsilon")
	fl.StringVarP(&f.jsonOut, "json", "j", "", "write the query document to this file, - for stdout")
	fl.BoolVarP(&f.plot, "plot", "P", false, "draw the volumes and open them in $PHTREES_VISUALIZER")
	fl.BoolVar(&f.ancestors, "ancestors", false, "add the enclosing pairs of each volume")
	fl.BoolVar(&f.children, "children", false, "add the volumes of each direct child")
	return cmd
}

func newSnapshotCmd(cfg Config, logger *slog.Logger) *cobra.Command {
	var store string
	cmd := &cobra.Command{
		Use:   "snapshot INPUT",
		Short: "Store the forest of a diagram file and print its snapshot name",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if store == "" {
				return fmt.Errorf("--store is required: %w", phtrees.ErrConfiguration)
			}
			in, err := readInputFile(args[0])
			if err != nil {
				return err
			}
			s, err := in.snapshot()
			if err != nil {
				return err
			}
			if _, err := s.Build(nil); err != nil {
				return fmt.Errorf("invalid forest: %w", err)
			}
			p, err := openStore(store, cfg)
			if err != nil {
				return err
			}
			name, err := phtrees.SaveSnapshot(cmd.Context(), p, s)
			if err != nil {
				return err
			}
			logger.Info("snapshot stored", "store", store, "name", name, "pairs", len(s.Triples))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), name)
			return err
		},
	}
	cmd.Flags().StringVar(&store, "store", "", "file:DIR or s3://BUCKET/PREFIX")
	return cmd
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return fmt.Errorf("%v: %w", err, phtrees.ErrConfiguration)
		}
		return nil
	}
}

// parseRange parses "lo:hi".
func parseRange(s string) (phtrees.Range, error) {
	lo, hi, ok := strings.Cut(s, ":")
	if !ok {
		return phtrees.Range{}, fmt.Errorf("range %q: want lo:hi: %w", s, phtrees.ErrConfiguration)
	}
	l, err := strconv.ParseFloat(lo, 64)
	if err != nil {
		return phtrees.Range{}, fmt.Errorf("range %q: %v: %w", s, err, phtrees.ErrConfiguration)
	}
	h, err := strconv.ParseFloat(hi, 64)
	if err != nil {
		return phtrees.Range{}, fmt.Errorf("range %q: %v: %w", s, err, phtrees.ErrConfiguration)
	}
	return phtrees.Range{Lo: l, Hi: h}, nil
}

func buildQuery(cmd *cobra.Command, f *queryFlags, ix phtrees.SpatialIndex, sel phtrees.VolumeSelector) (phtrees.Query, error) {
	fl := cmd.Flags()
	point := fl.Changed("birth") || fl.Changed("death")
	rect := fl.Changed("birth-range") || fl.Changed("death-range")
	opts := &phtrees.QueryOptions{AncestorPairs: f.ancestors, QueryChildren: f.children}
	switch {
	case point && rect:
		return nil, fmt.Errorf("point and rectangle flags are exclusive: %w", phtrees.ErrConfiguration)
	case point:
		if !fl.Changed("birth") || !fl.Changed("death") {
			return nil, fmt.Errorf("a point query needs both -x and -y: %w", phtrees.ErrConfiguration)
		}
		return phtrees.NewPointQuery(f.x, f.y, ix, sel, opts), nil
	case rect:
		if !fl.Changed("birth-range") || !fl.Changed("death-range") {
			return nil, fmt.Errorf("a rectangle query needs both -X and -Y: %w", phtrees.ErrConfiguration)
		}
		xr, err := parseRange(f.xr)
		if err != nil {
			return nil, err
		}
		yr, err := parseRange(f.yr)
		if err != nil {
			return nil, err
		}
		return phtrees.NewRectangleQuery(xr, yr, ix, sel, opts), nil
	}
	return nil, fmt.Errorf("give -x/-y or -X/-Y: %w", phtrees.ErrConfiguration)
}

func runQuery(ctx context.Context, cmd *cobra.Command, input string, f *queryFlags, cfg Config, logger *slog.Logger) error {
	forest, err := loadForest(ctx, input, cfg)
	if err != nil {
		return err
	}
	logger.Debug("forest loaded", "input", input, "pairs", forest.Len(), "roots", len(forest.Roots()))

	var sel phtrees.VolumeSelector = phtrees.GetOptimalVolume(forest)
	if cmd.Flags().Changed("stable") {
		sel = phtrees.GetStableVolume(forest, f.epsilon)
	}
	q, err := buildQuery(cmd, f, spatial.FromForest(forest), sel)
	if err != nil {
		return err
	}
	if err := q.Invoke(); err != nil {
		return fmt.Errorf("query: %w", err)
	}
	logger.Info("query resolved", "target", sel.QueryTargetName(), "volumes", len(q.Result()))

	out := cmd.OutOrStdout()
	if f.jsonOut != "" {
		if err := writeQueryJSON(q, f.jsonOut, out); err != nil {
			return err
		}
	} else {
		for _, v := range q.Result() {
			fmt.Fprintf(out, "%d\t%g\t%g\t%d\n", v.DeathIndex(), v.BirthTime(), v.DeathTime(), len(v.VolumeNodes()))
		}
	}
	if f.plot {
		return plot(ctx, forest, q, cfg, logger)
	}
	return nil
}

// writeQueryJSON serializes the whole document before writing anything, so
// a failing resolver leaves no partial output.
func writeQueryJSON(q phtrees.Query, path string, stdout io.Writer) error {
	d, err := q.ToDict()
	if err != nil {
		return fmt.Errorf("serialize query: %w", err)
	}
	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal query: %w", err)
	}
	if path == "-" {
		_, err = stdout.Write(append(b, '\n'))
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func plot(ctx context.Context, forest *phtrees.Forest, q phtrees.Query, cfg Config, logger *slog.Logger) error {
	r, err := forest.GeometryResolver(phtrees.Coordinates)
	if err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	drawer, err := r.BuildDrawer(len(q.Result()), phtrees.DrawOptions{Name: "phtrees"})
	if err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	if err := q.Draw(drawer); err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	w, ok := drawer.(io.WriterTo)
	if !ok {
		return fmt.Errorf("plot: drawer %T cannot be written: %w", drawer, phtrees.ErrConfiguration)
	}
	tmp, err := os.CreateTemp("", "phtrees-*.vtk")
	if err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	_, err = w.WriteTo(tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("plot: write %s: %w", tmp.Name(), err)
	}
	logger.Info("opening visualizer", "visualizer", cfg.Visualizer, "file", tmp.Name())
	if err := exec.CommandContext(ctx, cfg.Visualizer, tmp.Name()).Run(); err != nil {
		return fmt.Errorf("plot: %s: %w", cfg.Visualizer, err)
	}
	return nil
}
