package main

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/storemap-cli/internal/cluster"
	"github.com/sells-group/storemap-cli/internal/export"
	"github.com/sells-group/storemap-cli/internal/manifest"
)

var (
	clusterInput      string
	clusterFormat     string
	clusterSheet      string
	clusterEps        float64
	clusterMinPts     int
	clusterWorkers    int
	clusterAllowEmpty bool
	clusterGeoJSON    bool
	clusterOutput     string
	clusterManifest   string
	clusterSave       bool
)

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Cluster store records from a file",
	Long: `Reads store records from a CSV, XLSX, or shapefile input, groups them into
density clusters, and writes the cluster summaries plus the noise set.

Examples:
  # CSV in, JSON summaries to stdout
  storemap cluster --input stores.csv

  # Tighter neighborhoods, GeoJSON for a map viewer
  storemap cluster --input stores.csv --eps 250 --min-pts 5 --geojson -o clusters.geojson

  # Everything from a job manifest, persisted for later inspection
  storemap cluster --manifest nightly.yaml --save`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		input, format, sheet := clusterInput, clusterFormat, clusterSheet
		eps, minPts, workers := clusterEps, clusterMinPts, clusterWorkers
		allowEmpty, geoJSON, output := clusterAllowEmpty, clusterGeoJSON, clusterOutput

		if clusterManifest != "" {
			m, err := manifest.Load(clusterManifest, cfg.Cluster.EpsMeters, cfg.Cluster.MinPoints)
			if err != nil {
				return err
			}
			input, format, sheet = m.Input, m.Format, m.Sheet
			eps, minPts, workers = m.EpsMeters, m.MinPoints, m.Workers
			allowEmpty, geoJSON = m.AllowEmpty, m.GeoJSON
			if output == "" {
				output = m.Output
			}
		}
		if input == "" {
			return eris.New("cluster: --input or --manifest is required")
		}
		if eps == 0 {
			eps = cfg.Cluster.EpsMeters
		}
		if minPts == 0 {
			minPts = cfg.Cluster.MinPoints
		}
		if workers == 0 {
			workers = cfg.Cluster.Workers
		}

		stores, err := loadStores(input, format, sheet)
		if err != nil {
			return eris.Wrap(err, "cluster: load stores")
		}
		zap.L().Info("loaded stores", zap.String("input", input), zap.Int("count", len(stores)))

		opts := []cluster.PipelineOption{cluster.WithPipelineWorkers(workers)}
		if allowEmpty || cfg.Cluster.AllowEmpty {
			opts = append(opts, cluster.WithEmptyResult())
		}
		result, err := cluster.NewPipeline(opts...).Run(stores, eps, minPts)
		if err != nil {
			return eris.Wrap(err, "cluster: run")
		}

		if clusterSave {
			st, err := openStore(ctx)
			if err != nil {
				return eris.Wrap(err, "cluster: open store")
			}
			defer st.Close()
			if err := st.Migrate(ctx); err != nil {
				return eris.Wrap(err, "cluster: migrate store")
			}
			run, err := st.CreateRun(ctx, input, eps, minPts, len(stores), result)
			if err != nil {
				return eris.Wrap(err, "cluster: save run")
			}
			zap.L().Info("saved run", zap.String("run_id", run.ID))
		}

		var w io.Writer = os.Stdout
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return eris.Wrapf(err, "cluster: create output %s", output)
			}
			defer f.Close()
			w = f
		}
		if geoJSON {
			return export.WriteGeoJSON(w, export.FeatureCollection(result, stores))
		}
		return export.WriteJSON(w, result)
	},
}

func init() {
	clusterCmd.Flags().StringVarP(&clusterInput, "input", "i", "", "input file (csv, xlsx, or shp)")
	clusterCmd.Flags().StringVar(&clusterFormat, "format", "", "input format (default: file extension)")
	clusterCmd.Flags().StringVar(&clusterSheet, "sheet", "", "xlsx sheet name (default: first sheet)")
	clusterCmd.Flags().Float64Var(&clusterEps, "eps", 0, "neighborhood radius in meters (default from config)")
	clusterCmd.Flags().IntVar(&clusterMinPts, "min-pts", 0, "minimum neighborhood size for a core point (default from config)")
	clusterCmd.Flags().IntVar(&clusterWorkers, "workers", 0, "neighborhood scan workers (default from config)")
	clusterCmd.Flags().BoolVar(&clusterAllowEmpty, "allow-empty", false, "treat an empty input as zero clusters instead of an error")
	clusterCmd.Flags().BoolVar(&clusterGeoJSON, "geojson", false, "emit a GeoJSON FeatureCollection instead of plain JSON")
	clusterCmd.Flags().StringVarP(&clusterOutput, "output", "o", "", "output file (default: stdout)")
	clusterCmd.Flags().StringVar(&clusterManifest, "manifest", "", "YAML job manifest")
	clusterCmd.Flags().BoolVar(&clusterSave, "save", false, "persist the run to the configured store")
	rootCmd.AddCommand(clusterCmd)
}
