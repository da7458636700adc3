// Package gbt implements a histogram gradient-boosted tree classifier for
// binary targets: logistic loss, leaf-wise tree growth with L2-regularized
// Newton leaf values, per-split feature subsampling, native categorical
// splits and early stopping on an internal validation slice. Models
// serialize to JSON and are immutable once trained or loaded.
package gbt

import (
	"encoding/json"
	"fmt"
	"math"
)

// Params mirror the training configuration the model ships with.
type Params struct {
	LearningRate       float64
	MaxIter            int
	MaxLeafNodes       int
	MaxDepth           int
	MinSamplesLeaf     int
	L2Regularization   float64
	MaxFeatures        float64 // fraction of features considered per split
	MaxBins            int
	EarlyStopping      bool
	ValidationFraction float64
	NIterNoChange      int
	Tol                float64
	Seed               int64
}

// DefaultParams is the production training configuration.
func DefaultParams() Params {
	return Params{
		LearningRate:       0.01,
		MaxIter:            2500,
		MaxLeafNodes:       127,
		MaxDepth:           12,
		MinSamplesLeaf:     100,
		L2Regularization:   2.5,
		MaxFeatures:        0.4,
		MaxBins:            256,
		EarlyStopping:      true,
		ValidationFraction: 0.1,
		NIterNoChange:      40,
		Tol:                1e-7,
		Seed:               42,
	}
}

// Dataset is a column-typed feature matrix: numeric columns by position
// plus raw string categorical columns.
type Dataset struct {
	NumericNames     []string
	CategoricalNames []string
	Numeric          [][]float64 // [row][col]
	Categorical      [][]string  // [row][col]
}

func (d *Dataset) NumRows() int { return len(d.Numeric) }

// Classifier is a trained model. It is safe for concurrent use; nothing is
// mutated after training or load.
type Classifier struct {
	BaseScore        float64    `json:"base_score"`
	LearningRate     float64    `json:"learning_rate"`
	NumericNames     []string   `json:"numeric_features"`
	CategoricalNames []string   `json:"categorical_features"`
	Categories       [][]string `json:"categories"` // per categorical feature, code -> level
	Trees            []*Tree    `json:"trees"`

	catCodes []map[string]int
}

// UnmarshalJSON rebuilds the category code index after decoding.
func (c *Classifier) UnmarshalJSON(data []byte) error {
	type plain Classifier
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = Classifier(p)
	if len(c.Trees) == 0 {
		return fmt.Errorf("model has no trees")
	}
	c.buildIndex()
	return nil
}

func (c *Classifier) buildIndex() {
	c.catCodes = make([]map[string]int, len(c.Categories))
	for f, levels := range c.Categories {
		m := make(map[string]int, len(levels))
		for code, level := range levels {
			m[level] = code
		}
		c.catCodes[f] = m
	}
}

// encode maps categorical values to training-time codes; unseen levels
// become -1 and follow each split's default branch.
func (c *Classifier) encode(cats []string) []int {
	codes := make([]int, len(cats))
	for f, v := range cats {
		if code, ok := c.catCodes[f][v]; ok {
			codes[f] = code
		} else {
			codes[f] = -1
		}
	}
	return codes
}

func (c *Classifier) decision(numeric []float64, cats []string) float64 {
	codes := c.encode(cats)
	score := c.BaseScore
	for _, t := range c.Trees {
		score += t.Score(numeric, codes)
	}
	return score
}

// PredictProba returns [P(no delay), P(delay)] for one row.
func (c *Classifier) PredictProba(numeric []float64, cats []string) [2]float64 {
	p := sigmoid(c.decision(numeric, cats))
	return [2]float64{1 - p, p}
}

// Predict returns the class under the 0.5 decision threshold.
func (c *Classifier) Predict(numeric []float64, cats []string) int {
	if c.PredictProba(numeric, cats)[1] >= 0.5 {
		return 1
	}
	return 0
}

// NIter reports how many boosting rounds survived early stopping.
func (c *Classifier) NIter() int { return len(c.Trees) }

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
