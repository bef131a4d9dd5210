package model

import (
	"gonum.org/v1/gonum/stat"
)

// Score summarizes how well a forest predicts a labelled dataset.
// Accuracy is set for classification; MSE, RMSE and R2 for regression.
type Score struct {
	Task     Task    `json:"task" yaml:"task"`
	N        int     `json:"n" yaml:"n"`
	Accuracy float64 `json:"accuracy,omitempty" yaml:"accuracy,omitempty"`
	MSE      float64 `json:"mse,omitempty" yaml:"mse,omitempty"`
	RMSE     float64 `json:"rmse,omitempty" yaml:"rmse,omitempty"`
	R2       float64 `json:"r2,omitempty" yaml:"r2,omitempty"`
}

// MSE is the mean squared error.
func MSE(yTrue, yPred []float64) float64 {
	n := float64(len(yTrue))
	if n == 0 {
		return 0
	}
	s := 0.0
	for i := range yTrue {
		d := yPred[i] - yTrue[i]
		s += d * d
	}
	return s / n
}

// R2 is the coefficient of determination. It is 0 when yTrue is constant.
func R2(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	m := stat.Mean(yTrue, nil)
	ssTot := 0.0
	ssRes := 0.0
	for i := range yTrue {
		d := yTrue[i] - m
		ssTot += d * d
		r := yTrue[i] - yPred[i]
		ssRes += r * r
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

// Accuracy is the fraction of positions where yPred equals yTrue.
func Accuracy(yTrue, yPred []any) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	c := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			c++
		}
	}
	return float64(c) / float64(len(yTrue))
}
