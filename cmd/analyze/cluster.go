package main

import (
	"github.com/spf13/cobra"

	"github.com/tdarei/starisdons-sub013/pkg/dataset"
	"github.com/tdarei/starisdons-sub013/pkg/model"
	"github.com/tdarei/starisdons-sub013/pkg/stats"
)

type clusterReport struct {
	model.Clustering `yaml:",inline"`

	Assignments []int `json:"assignments" yaml:"assignments"`
	Noise       int   `json:"noise" yaml:"noise"`
}

func newClusterCmd(a *app) *cobra.Command {
	var (
		file string
		vars []string
	)
	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Cluster the records of a dataset over numeric variables",
		Long: `cluster extracts one point per record from --vars (missing or non-numeric
values count as 0) and groups the points with k-means, centroid-linkage
hierarchical clustering or DBSCAN. Points DBSCAN labels as noise get
assignment -1.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := a.load(file)
			if err != nil {
				return err
			}
			method, err := model.ParseMethod(a.cfg.Clustering.Method)
			if err != nil {
				return err
			}
			if len(vars) == 0 {
				vars = numericFields(ds)
			}
			if ds, err = a.impute(ds, vars); err != nil {
				return err
			}
			if a.cfg.Clustering.Standardize {
				ds = a.registry.AddDataset(ds.ID, standardized(ds, vars))
			}

			cc := a.cfg.Clustering
			engine := model.NewClusteringEngine(a.registry,
				model.WithSeed(a.seed()),
				model.WithLogger(a.logger),
				model.WithMaxIterations(cc.MaxIterations),
				model.WithTolerance(cc.Tolerance),
				model.WithDBSCAN(cc.Eps, cc.MinPts),
			)
			c, err := engine.PerformClustering(ds.ID, vars, cc.NClusters, method)
			if err != nil {
				return err
			}

			assign := c.Assignments(ds.Len())
			noise := 0
			for _, id := range assign {
				if id < 0 {
					noise++
				}
			}
			return a.print(clusterReport{Clustering: *c, Assignments: assign, Noise: noise})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&file, "file", "f", "", "Dataset file (.csv, .json, .yaml)")
	f.StringSliceVar(&vars, "vars", nil, "Variables to cluster on (default: every numeric field)")
	f.String("method", "kmeans", "Clustering method (kmeans, hierarchical, dbscan)")
	f.IntP("clusters", "k", 3, "Number of clusters for kmeans and hierarchical")
	f.Int("max-iter", 100, "Maximum k-means iterations")
	f.Float64("tolerance", 0.001, "k-means convergence threshold")
	f.Float64("eps", 0.5, "DBSCAN neighbourhood radius")
	f.Int("min-pts", 3, "DBSCAN core point threshold, the point itself included")
	f.String("impute", "none", "Fill missing values first (none, mean, median, mode)")
	f.Bool("standardize", false, "Scale every variable to zero mean and unit variance first")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func numericFields(ds *dataset.Dataset) []string {
	schema := dataset.InferSchema(ds.Records)
	var out []string
	for i, name := range schema.FeatureNames {
		if schema.Types[i] == dataset.TypeNumeric {
			out = append(out, name)
		}
	}
	return out
}

// standardized rewrites the records to hold only vars, z-scored per variable.
func standardized(ds *dataset.Dataset, vars []string) []dataset.Record {
	points := stats.Standardize(ds.Points(vars))
	out := make([]dataset.Record, len(points))
	for i, p := range points {
		rec := make(dataset.Record, len(vars))
		for j, v := range vars {
			rec[v] = p[j]
		}
		out[i] = rec
	}
	return out
}
