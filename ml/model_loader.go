package ml

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"
)

const (
	ModelTypeDecisionTree = "decision_tree"
	ModelTypeAdaBoost     = "adaboost"
)

type artifactLoader interface {
	Classifier
	Load(path string) error
}

func LoadModel(modelType, path string) (*Model, error) {
	var model artifactLoader
	switch modelType {
	case ModelTypeDecisionTree:
		model = &DecisionTree{}
	case ModelTypeAdaBoost:
		model = &AdaBoost{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedModel, modelType)
	}

	version, err := fileDigest(path)
	if err != nil {
		return nil, err
	}
	if err := model.Load(path); err != nil {
		return nil, fmt.Errorf("load %s model from %s: %w", modelType, path, err)
	}
	return &Model{
		Classifier: model,
		Type:       modelType,
		Path:       path,
		Version:    version,
		LoadedAt:   time.Now(),
	}, nil
}

func fileDigest(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil))[:12], nil
}
