package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

const (
	AlgorithmSAMME  = "SAMME"
	AlgorithmSAMMER = "SAMME.R"
)

// AdaBoost evaluates a boosted ensemble of trees exported from scikit-learn's
// AdaBoostClassifier. Only the binary case is supported.
type AdaBoost struct {
	algorithm  string
	classes    [2]int
	weights    []float64
	estimators []*DecisionTree
}

type adaBoostArtifact struct {
	Algorithm        string       `json:"algorithm"`
	Classes          []int        `json:"classes"`
	FeatureNames     []string     `json:"feature_names,omitempty"`
	EstimatorWeights []float64    `json:"estimator_weights"`
	Estimators       [][]TreeNode `json:"estimators"`
}

func (ab *AdaBoost) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var artifact adaBoostArtifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return err
	}
	if err := checkFeatureNames(artifact.FeatureNames); err != nil {
		return err
	}
	return ab.init(artifact)
}

func (ab *AdaBoost) init(artifact adaBoostArtifact) error {
	switch artifact.Algorithm {
	case AlgorithmSAMME, AlgorithmSAMMER:
	case "":
		artifact.Algorithm = AlgorithmSAMME
	default:
		return fmt.Errorf("unknown boosting algorithm %q", artifact.Algorithm)
	}
	if len(artifact.Classes) == 0 {
		artifact.Classes = []int{0, 1}
	}
	if len(artifact.Classes) != 2 {
		return fmt.Errorf("expected 2 classes, got %d", len(artifact.Classes))
	}
	if len(artifact.Estimators) == 0 {
		return errors.New("ensemble has no estimators")
	}
	if len(artifact.EstimatorWeights) == 0 {
		artifact.EstimatorWeights = make([]float64, len(artifact.Estimators))
		for i := range artifact.EstimatorWeights {
			artifact.EstimatorWeights[i] = 1
		}
	}
	if len(artifact.EstimatorWeights) != len(artifact.Estimators) {
		return errors.New("estimators and weights size mismatch")
	}

	estimators := make([]*DecisionTree, len(artifact.Estimators))
	for i, nodes := range artifact.Estimators {
		tree, err := NewDecisionTree(nodes)
		if err != nil {
			return fmt.Errorf("estimator %d: %w", i, err)
		}
		estimators[i] = tree
	}

	ab.algorithm = artifact.Algorithm
	ab.classes = [2]int{artifact.Classes[0], artifact.Classes[1]}
	ab.weights = artifact.EstimatorWeights
	ab.estimators = estimators
	return nil
}

func (ab *AdaBoost) Predict(features []float64) (int, error) {
	decision, err := ab.decision(features)
	if err != nil {
		return 0, err
	}
	if decision > 0 {
		return ab.classes[1], nil
	}
	return ab.classes[0], nil
}

func (ab *AdaBoost) PredictProba(features []float64) ([]float64, error) {
	decision, err := ab.decision(features)
	if err != nil {
		return nil, err
	}
	// softmax over [-d/2, d/2]
	p1 := 1 / (1 + math.Exp(-decision))
	return []float64{1 - p1, p1}, nil
}

// decision is the binary decision function: positive favours classes[1].
func (ab *AdaBoost) decision(features []float64) (float64, error) {
	if len(ab.estimators) == 0 {
		return 0, errors.New("model not trained")
	}
	var sum, weightSum float64
	for i, tree := range ab.estimators {
		switch ab.algorithm {
		case AlgorithmSAMMER:
			proba, err := tree.PredictProba(features)
			if err != nil {
				return 0, err
			}
			sum += sammeRScore(proba)
		default:
			label, err := tree.Predict(features)
			if err != nil {
				return 0, err
			}
			// tree labels are class indices
			if label == 1 {
				sum += 2 * ab.weights[i]
			} else {
				sum -= 2 * ab.weights[i]
			}
		}
		weightSum += ab.weights[i]
	}
	if weightSum == 0 {
		return 0, errors.New("estimator weights sum to zero")
	}
	return sum / weightSum, nil
}

// sammeRScore is the class-1 minus class-0 contribution of one estimator.
func sammeRScore(proba []float64) float64 {
	const eps = 2.220446049250313e-16
	p0 := math.Max(proba[0], eps)
	p1 := math.Max(proba[1], eps)
	return math.Log(p1) - math.Log(p0)
}
