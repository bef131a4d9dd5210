package main

import (
	"flag"
	"fmt"
	"image/color"
	"math/rand"
	"os"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/tdarei/starisdons-sub013/pkg/dataset"
	"github.com/tdarei/starisdons-sub013/pkg/model"
)

// generateBlobs draws perBlob points around each center with Gaussian noise,
// plus a handful of uniformly scattered outliers.
func generateBlobs(rnd *rand.Rand, centers [][2]float64, perBlob, outliers int, spread float64) []dataset.Record {
	records := make([]dataset.Record, 0, len(centers)*perBlob+outliers)
	for _, c := range centers {
		for i := 0; i < perBlob; i++ {
			records = append(records, dataset.Record{
				"x": c[0] + rnd.NormFloat64()*spread,
				"y": c[1] + rnd.NormFloat64()*spread,
			})
		}
	}
	for i := 0; i < outliers; i++ {
		records = append(records, dataset.Record{"x": rnd.Float64()*30 - 5, "y": rnd.Float64()*30 - 5})
	}
	return records
}

// plotClusters draws every cluster in its own color, unclustered points in
// grey and, when the clustering has them, the centroids as crosses.
func plotClusters(ds *dataset.Dataset, c *model.Clustering, filename string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: %d clusters", c.Method, c.NClusters)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	colors := []color.RGBA{
		{R: 255, A: 255},
		{G: 180, A: 255},
		{B: 255, A: 255},
		{R: 255, G: 140, A: 255},
		{R: 160, B: 200, A: 255},
	}
	points := ds.Points(c.Variables)
	assign := c.Assignments(len(points))

	var noise plotter.XYs
	byCluster := make([]plotter.XYs, c.NClusters)
	for i, k := range assign {
		xy := plotter.XY{X: points[i][0], Y: points[i][1]}
		if k < 0 {
			noise = append(noise, xy)
			continue
		}
		byCluster[k] = append(byCluster[k], xy)
	}
	for k, pts := range byCluster {
		if len(pts) == 0 {
			continue
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		s.Color = colors[k%len(colors)]
		p.Add(s)
	}
	if len(noise) > 0 {
		s, err := plotter.NewScatter(noise)
		if err != nil {
			return err
		}
		s.Color = color.RGBA{R: 150, G: 150, B: 150, A: 255}
		p.Add(s)
	}

	centroidPts := make(plotter.XYs, 0, len(c.Clusters))
	for _, cl := range c.Clusters {
		if len(cl.Centroid) >= 2 {
			centroidPts = append(centroidPts, plotter.XY{X: cl.Centroid[0], Y: cl.Centroid[1]})
		}
	}
	if len(centroidPts) > 0 {
		s, err := plotter.NewScatter(centroidPts)
		if err != nil {
			return err
		}
		s.Color = color.RGBA{A: 255}
		s.Shape = draw.CrossGlyph{}
		s.Radius = vg.Points(5)
		p.Add(s)
	}

	if err := p.Save(5*vg.Inch, 5*vg.Inch, filename); err != nil {
		return err
	}
	fmt.Printf("Saved %s plot to %s\n", c.Method, filename)
	return nil
}

func main() {
	seed := flag.Int64("seed", 1, "random seed")
	k := flag.Int("k", 3, "clusters for kmeans and hierarchical")
	eps := flag.Float64("eps", 1.2, "DBSCAN radius")
	minPts := flag.Int("min-pts", 4, "DBSCAN core point threshold")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	rnd := rand.New(rand.NewSource(*seed))
	reg := dataset.NewRegistry(dataset.WithLogger(logger))
	ds := reg.AddDataset("blobs", generateBlobs(rnd, [][2]float64{{0, 0}, {10, 2}, {4, 12}}, 60, 12, 1.0))

	engine := model.NewClusteringEngine(reg,
		model.WithSeed(*seed),
		model.WithLogger(logger),
		model.WithDBSCAN(*eps, *minPts),
	)

	fmt.Println("=== Clustering Demo ===")
	for _, m := range []model.Method{model.MethodKMeans, model.MethodHierarchical, model.MethodDBSCAN} {
		c, err := engine.PerformClustering(ds.ID, []string{"x", "y"}, *k, m)
		if err != nil {
			logger.Fatal("clustering failed", zap.String("method", string(m)), zap.Error(err))
		}
		fmt.Printf("\n%s -> %d clusters (id %s)\n", m, c.NClusters, c.ID)
		for _, cl := range c.Clusters {
			fmt.Printf("  cluster %d: size=%d centroid=%.2f\n", cl.ID, cl.Size, cl.Centroid)
		}
		if err := plotClusters(ds, c, fmt.Sprintf("%s.png", m)); err != nil {
			logger.Fatal("plotting failed", zap.String("method", string(m)), zap.Error(err))
		}
	}
}
