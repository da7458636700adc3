// Package training fits the delay classifier on engineered features and
// persists the model artifacts at fixed paths, overwriting any previous
// run. No versioning is kept.
package training

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/saajpatel/TTC-Subway-Delay-Predictor/config"
	"github.com/saajpatel/TTC-Subway-Delay-Predictor/features"
	"github.com/saajpatel/TTC-Subway-Delay-Predictor/gbt"
	"github.com/saajpatel/TTC-Subway-Delay-Predictor/models"
)

const (
	testFraction = 0.2
	splitSeed    = 42
	algorithm    = "HistGradientBoosting"
)

// BuildDataset lays the engineered table out as the classifier's input
// matrix, in the canonical column order.
func BuildDataset(table *features.Table) *gbt.Dataset {
	ds := &gbt.Dataset{
		NumericNames:     features.NumericColumns,
		CategoricalNames: features.CategoricalColumns,
		Numeric:          make([][]float64, len(table.Rows)),
		Categorical:      make([][]string, len(table.Rows)),
	}
	for i, row := range table.Rows {
		ds.Numeric[i] = row.Numeric()
		ds.Categorical[i] = row.Categorical()
	}
	return ds
}

func subset(ds *gbt.Dataset, idx []int) *gbt.Dataset {
	out := &gbt.Dataset{
		NumericNames:     ds.NumericNames,
		CategoricalNames: ds.CategoricalNames,
		Numeric:          make([][]float64, len(idx)),
		Categorical:      make([][]string, len(idx)),
	}
	for k, i := range idx {
		out.Numeric[k] = ds.Numeric[i]
		out.Categorical[k] = ds.Categorical[i]
	}
	return out
}

func subsetLabels(labels []int, idx []int) []int {
	out := make([]int, len(idx))
	for k, i := range idx {
		out[k] = labels[i]
	}
	return out
}

// Evaluate scores the classifier on a partition and returns accuracy plus
// the confusion matrix.
func Evaluate(c *gbt.Classifier, ds *gbt.Dataset, labels []int) (float64, models.ConfusionMatrix) {
	var cm models.ConfusionMatrix
	correct := 0
	for i := 0; i < ds.NumRows(); i++ {
		pred := c.Predict(ds.Numeric[i], ds.Categorical[i])
		switch {
		case pred == 0 && labels[i] == 0:
			cm.TrueNegatives++
		case pred == 1 && labels[i] == 0:
			cm.FalsePositives++
		case pred == 0 && labels[i] == 1:
			cm.FalseNegatives++
		default:
			cm.TruePositives++
		}
		if pred == labels[i] {
			correct++
		}
	}
	acc := 0.0
	if ds.NumRows() > 0 {
		acc = float64(correct) / float64(ds.NumRows())
	}
	return acc, cm
}

// Run executes the full training pipeline: feature engineering, stratified
// 80/20 split, boosting, evaluation on the untouched test partition, and
// artifact persistence under cfg.Dir.
func Run(records []models.DelayRecord, cfg config.ModelConfig, params gbt.Params) (*models.TestMetrics, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no records to train on")
	}

	log.Printf("engineering features for %d records", len(records))
	table, rates := features.BuildTable(records)
	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("no usable rows after feature engineering")
	}
	ds := BuildDataset(table)

	trainIdx, testIdx := StratifiedSplit(table.Labels, testFraction, splitSeed)
	log.Printf("split: %d train / %d test samples", len(trainIdx), len(testIdx))

	trainDS := subset(ds, trainIdx)
	trainLabels := subsetLabels(table.Labels, trainIdx)

	log.Printf("training %s (max %d iterations)", algorithm, params.MaxIter)
	classifier, err := gbt.Train(trainDS, trainLabels, params)
	if err != nil {
		return nil, fmt.Errorf("training failed: %w", err)
	}
	log.Printf("training stopped after %d iterations", classifier.NIter())

	testDS := subset(ds, testIdx)
	testLabels := subsetLabels(table.Labels, testIdx)
	accuracy, cm := Evaluate(classifier, testDS, testLabels)
	log.Printf("test accuracy: %.4f (tn=%d fp=%d fn=%d tp=%d)",
		accuracy, cm.TrueNegatives, cm.FalsePositives, cm.FalseNegatives, cm.TruePositives)

	now := time.Now().Format(time.RFC3339)
	modelConfig := &models.ModelConfig{
		Algorithm:           algorithm,
		TrainingDate:        now,
		Accuracy:            accuracy,
		FeatureColumns:      features.NumericColumns,
		CategoricalFeatures: features.CategoricalColumns,
		TotalFeatures:       len(features.NumericColumns) + len(features.CategoricalColumns),
		TotalSamples:        len(table.Rows),
		TrainSamples:        len(trainIdx),
		TestSamples:         len(testIdx),
		Hyperparameters: map[string]float64{
			"learning_rate":     params.LearningRate,
			"max_iter":          float64(params.MaxIter),
			"max_leaf_nodes":    float64(params.MaxLeafNodes),
			"max_depth":         float64(params.MaxDepth),
			"min_samples_leaf":  float64(params.MinSamplesLeaf),
			"l2_regularization": params.L2Regularization,
			"max_features":      params.MaxFeatures,
		},
	}

	metrics := &models.TestMetrics{
		Accuracy:        accuracy,
		ConfusionMatrix: cm,
		TestSamples:     len(testIdx),
		EvaluationDate:  now,
	}

	if err := persist(cfg, classifier, rates, modelConfig, metrics); err != nil {
		return nil, err
	}
	return metrics, nil
}

// persist overwrites the artifacts at their fixed paths.
func persist(cfg config.ModelConfig, classifier *gbt.Classifier, rates *features.RateTables,
	modelConfig *models.ModelConfig, metrics *models.TestMetrics) error {

	for _, dir := range []string{filepath.Dir(cfg.ModelPath()), filepath.Dir(cfg.MetricsPath())} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	artifacts := []struct {
		path  string
		value interface{}
	}{
		{cfg.ModelPath(), classifier},
		{cfg.DelayRatesPath(), rates},
		{cfg.ConfigPath(), modelConfig},
		{cfg.MetricsPath(), metrics},
	}
	for _, a := range artifacts {
		if err := writeJSON(a.path, a.value); err != nil {
			return err
		}
		log.Printf("saved %s", a.path)
	}
	return nil
}

func writeJSON(path string, value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
