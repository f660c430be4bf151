package ml

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// sexTree splits on Sex: men mostly perish, women mostly survive.
func sexTree() []TreeNode {
	return []TreeNode{
		{FeatureIdx: 1, Threshold: 0.5, LeftChild: 1, RightChild: 2},
		{FeatureIdx: -1, LeftChild: -1, RightChild: -1, ClassLabel: 0, IsLeaf: true, Value: []float64{80, 20}},
		{FeatureIdx: -1, LeftChild: -1, RightChild: -1, ClassLabel: 1, IsLeaf: true, Value: []float64{10, 90}},
	}
}

func writeJSON(t *testing.T, v interface{}) string {
	t.Helper()
	payload, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDecisionTreePredict(t *testing.T) {
	model, err := NewDecisionTree(sexTree())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	woman := Encode(RawPassengerInput{TicketClass: 1, Sex: "female"}).Values()
	label, err := model.Predict(woman)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 1 {
		t.Fatalf("expected label 1, got %d", label)
	}
	proba, err := model.PredictProba(woman)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(proba[1]-0.9) > 1e-9 || math.Abs(proba[0]+proba[1]-1) > 1e-9 {
		t.Fatalf("unexpected probabilities: %v", proba)
	}

	man := Encode(RawPassengerInput{TicketClass: 3, Sex: "male"}).Values()
	if label, _ := model.Predict(man); label != 0 {
		t.Fatalf("expected label 0, got %d", label)
	}
}

func TestDecisionTreeLeafWithoutWeights(t *testing.T) {
	nodes := sexTree()
	nodes[2].Value = nil
	model, err := NewDecisionTree(nodes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	proba, err := model.PredictProba(Encode(RawPassengerInput{Sex: "female"}).Values())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proba[0] != 0 || proba[1] != 1 {
		t.Fatalf("expected one-hot probabilities, got %v", proba)
	}
}

func TestDecisionTreeRejectsBrokenTrees(t *testing.T) {
	if _, err := NewDecisionTree(nil); err == nil {
		t.Fatal("expected error for empty tree")
	}
	nodes := sexTree()
	nodes[0].RightChild = 7
	if _, err := NewDecisionTree(nodes); err == nil {
		t.Fatal("expected error for dangling child")
	}
	nodes = sexTree()
	nodes[0].FeatureIdx = FeatureCount
	if _, err := NewDecisionTree(nodes); err == nil {
		t.Fatal("expected error for out of range feature")
	}
}

func TestDecisionTreeLoadFormats(t *testing.T) {
	bare := writeJSON(t, sexTree())
	model := &DecisionTree{}
	if err := model.Load(bare); err != nil {
		t.Fatalf("unexpected error loading bare array: %v", err)
	}

	wrapped := writeJSON(t, treeArtifact{FeatureNames: FeatureNames(), Nodes: sexTree()})
	if err := (&DecisionTree{}).Load(wrapped); err != nil {
		t.Fatalf("unexpected error loading wrapped artifact: %v", err)
	}

	names := FeatureNames()
	names[0], names[1] = names[1], names[0]
	swapped := writeJSON(t, treeArtifact{FeatureNames: names, Nodes: sexTree()})
	err := (&DecisionTree{}).Load(swapped)
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}
