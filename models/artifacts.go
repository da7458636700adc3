package models

// ModelConfig is the metadata document written once per training run and
// read back by the predictor. Hyperparameters are kept for reference only.
type ModelConfig struct {
	Algorithm           string             `json:"algorithm"`
	TrainingDate        string             `json:"training_date"`
	Accuracy            float64            `json:"accuracy"`
	FeatureColumns      []string           `json:"feature_columns"`
	CategoricalFeatures []string           `json:"categorical_features"`
	TotalFeatures       int                `json:"total_features"`
	TotalSamples        int                `json:"total_samples"`
	TrainSamples        int                `json:"train_samples"`
	TestSamples         int                `json:"test_samples"`
	Hyperparameters     map[string]float64 `json:"hyperparameters"`
}

type ConfusionMatrix struct {
	TrueNegatives  int `json:"true_negatives"`
	FalsePositives int `json:"false_positives"`
	FalseNegatives int `json:"false_negatives"`
	TruePositives  int `json:"true_positives"`
}

// TestMetrics is the evaluation document for the held-out test partition.
type TestMetrics struct {
	Accuracy        float64         `json:"accuracy"`
	ConfusionMatrix ConfusionMatrix `json:"confusion_matrix"`
	TestSamples     int             `json:"test_samples"`
	EvaluationDate  string          `json:"evaluation_date"`
}
