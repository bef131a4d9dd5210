package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/tdarei/starisdons-sub013/pkg/dataset"
	"github.com/tdarei/starisdons-sub013/pkg/loader"
	"github.com/tdarei/starisdons-sub013/pkg/model"
)

// generateBinaryData creates a simple binary classification dataset.
// Rule: if x1 * x2 > 0 → class "same", else class "opposite". A categorical
// "zone" feature leaks the sign of x1.
func generateBinaryData(rnd *rand.Rand, n int) []dataset.Record {
	records := make([]dataset.Record, n)
	for i := range records {
		x1 := rnd.Float64()*2 - 1 // [-1,1]
		x2 := rnd.Float64()*2 - 1
		zone := "west"
		if x1 > 0 {
			zone = "east"
		}
		label := "opposite"
		if x1*x2 > 0 {
			label = "same"
		}
		records[i] = dataset.Record{"x1": x1, "x2": x2, "zone": zone, "label": label}
	}
	return records
}

func main() {
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	trees := flag.Int("trees", 50, "number of trees")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	rnd := rand.New(rand.NewSource(*seed))

	fmt.Println("=== Random Forest Demo with Train/Test Split ===")

	// Step 1. Generate dataset
	records := generateBinaryData(rnd, 1000)
	fmt.Printf("Generated %d samples.\n", len(records))
	fmt.Println("First 5 samples:")
	for _, r := range records[:5] {
		fmt.Printf("  %v\n", r)
	}

	// Step 2. Split into train/test sets
	train, test := loader.TrainTestSplit(records, 0.3, rnd)
	reg := dataset.NewRegistry(dataset.WithLogger(logger))
	reg.AddDataset("train", train)
	reg.AddDataset("test", test)
	fmt.Printf("\nTrain size: %d, Test size: %d\n", len(train), len(test))

	// Step 3. Train on training data
	engine := model.NewForestEngine(reg, model.WithSeed(*seed), model.WithLogger(logger))
	start := time.Now()
	f, err := engine.BuildForest("train", "label", nil, model.TaskClassification, model.WithNTrees(*trees))
	if err != nil {
		logger.Fatal("training failed", zap.Error(err))
	}
	fmt.Printf("Trained %d trees over %v in %v.\n", f.NTrees, f.Features, time.Since(start))

	// Step 4. Show some example predictions
	fmt.Println("\nFirst 10 test predictions:")
	for _, r := range test[:min(10, len(test))] {
		pred, err := engine.Predict(f.ID, r)
		if err != nil {
			logger.Fatal("demo failed", zap.Error(err))
		}
		fmt.Printf("  x1=%+.2f x2=%+.2f → Pred=%v, True=%v\n", r["x1"], r["x2"], pred, r["label"])
	}

	// Step 5. Score on held-out data
	score, err := engine.Evaluate(f.ID, "test")
	if err != nil {
		logger.Fatal("demo failed", zap.Error(err))
	}
	fmt.Printf("\nFinal Accuracy on test data: %.2f%% (%d samples)\n", score.Accuracy*100, score.N)
}
