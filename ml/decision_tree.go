package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

type DecisionTree struct {
	nodes []TreeNode
}

// TreeNode is one entry of a flattened tree. Value holds the per-class sample
// weights of the node and drives PredictProba at the leaves.
type TreeNode struct {
	FeatureIdx int       `json:"feature_idx"`
	Threshold  float64   `json:"threshold"`
	LeftChild  int       `json:"left_child"`
	RightChild int       `json:"right_child"`
	ClassLabel int       `json:"class_label"`
	IsLeaf     bool      `json:"is_leaf"`
	Value      []float64 `json:"value,omitempty"`
}

type treeArtifact struct {
	FeatureNames []string   `json:"feature_names,omitempty"`
	Nodes        []TreeNode `json:"nodes"`
}

func NewDecisionTree(nodes []TreeNode) (*DecisionTree, error) {
	dt := &DecisionTree{nodes: nodes}
	if err := dt.check(); err != nil {
		return nil, err
	}
	return dt, nil
}

func (dt *DecisionTree) Predict(features []float64) (int, error) {
	leaf, err := dt.leaf(features)
	if err != nil {
		return 0, err
	}
	if len(leaf.Value) == 2 && leaf.Value[0]+leaf.Value[1] > 0 {
		if leaf.Value[1] > leaf.Value[0] {
			return 1, nil
		}
		return 0, nil
	}
	return leaf.ClassLabel, nil
}

func (dt *DecisionTree) PredictProba(features []float64) ([]float64, error) {
	leaf, err := dt.leaf(features)
	if err != nil {
		return nil, err
	}
	return leafProba(leaf), nil
}

func leafProba(leaf TreeNode) []float64 {
	if len(leaf.Value) == 2 {
		total := leaf.Value[0] + leaf.Value[1]
		if total > 0 {
			return []float64{leaf.Value[0] / total, leaf.Value[1] / total}
		}
	}
	if leaf.ClassLabel == 1 {
		return []float64{0, 1}
	}
	return []float64{1, 0}
}

func (dt *DecisionTree) leaf(features []float64) (TreeNode, error) {
	if len(dt.nodes) == 0 {
		return TreeNode{}, errors.New("model not trained")
	}
	idx := 0
	for steps := 0; steps <= len(dt.nodes); steps++ {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return node, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return TreeNode{}, errors.New("feature index out of range")
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(dt.nodes) {
			return TreeNode{}, errors.New("invalid tree state")
		}
	}
	return TreeNode{}, errors.New("tree contains a cycle")
}

func (dt *DecisionTree) check() error {
	if len(dt.nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	for i, node := range dt.nodes {
		if node.IsLeaf {
			if len(node.Value) != 0 && len(node.Value) != 2 {
				return fmt.Errorf("leaf %d: expected 2 class weights, got %d", i, len(node.Value))
			}
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= FeatureCount {
			return fmt.Errorf("node %d: feature index %d out of range", i, node.FeatureIdx)
		}
		if node.LeftChild <= 0 || node.LeftChild >= len(dt.nodes) ||
			node.RightChild <= 0 || node.RightChild >= len(dt.nodes) {
			return fmt.Errorf("node %d: child index out of range", i)
		}
	}
	return nil
}

func (dt *DecisionTree) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	nodes, err := decodeTree(payload)
	if err != nil {
		return err
	}
	dt.nodes = nodes
	return dt.check()
}

// decodeTree accepts either a bare node array or an object carrying
// feature_names alongside the nodes.
func decodeTree(payload []byte) ([]TreeNode, error) {
	var nodes []TreeNode
	if err := json.Unmarshal(payload, &nodes); err == nil {
		return nodes, nil
	}
	var artifact treeArtifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return nil, err
	}
	if err := checkFeatureNames(artifact.FeatureNames); err != nil {
		return nil, err
	}
	return artifact.Nodes, nil
}

func checkFeatureNames(names []string) error {
	if len(names) == 0 {
		return nil
	}
	expected := FeatureNames()
	if len(names) != len(expected) {
		return fmt.Errorf("%w: artifact has %d features, encoder produces %d", ErrSchemaMismatch, len(names), len(expected))
	}
	for i := range expected {
		if names[i] != expected[i] {
			return fmt.Errorf("%w: column %d is %q, encoder produces %q", ErrSchemaMismatch, i, names[i], expected[i])
		}
	}
	return nil
}
