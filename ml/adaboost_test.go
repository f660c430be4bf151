package ml

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stump splits one feature at threshold; left predicts left, right predicts 1-left.
func stump(feature int, threshold float64, left int, leftValue, rightValue []float64) []TreeNode {
	return []TreeNode{
		{FeatureIdx: feature, Threshold: threshold, LeftChild: 1, RightChild: 2},
		{FeatureIdx: -1, LeftChild: -1, RightChild: -1, IsLeaf: true, ClassLabel: left, Value: leftValue},
		{FeatureIdx: -1, LeftChild: -1, RightChild: -1, IsLeaf: true, ClassLabel: 1 - left, Value: rightValue},
	}
}

func boostedArtifact(algorithm string) adaBoostArtifact {
	return adaBoostArtifact{
		Algorithm:    algorithm,
		Classes:      []int{0, 1},
		FeatureNames: FeatureNames(),
		// Sex <= 0.5 -> died; Pclass <= 2.5 -> survived
		EstimatorWeights: []float64{1.5, 0.5},
		Estimators: [][]TreeNode{
			stump(1, 0.5, 0, []float64{0.8, 0.2}, []float64{0.25, 0.75}),
			stump(0, 2.5, 1, []float64{0.4, 0.6}, []float64{0.75, 0.25}),
		},
	}
}

func TestAdaBoostSAMME(t *testing.T) {
	model := &AdaBoost{}
	require.NoError(t, model.init(boostedArtifact(AlgorithmSAMME)))

	// third class man: both stumps vote 0 -> decision -2
	man := Encode(RawPassengerInput{TicketClass: 3, Sex: "male"}).Values()
	label, err := model.Predict(man)
	require.NoError(t, err)
	assert.Equal(t, 0, label)
	proba, err := model.PredictProba(man)
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(2)), proba[1], 1e-12)
	assert.InDelta(t, 1, proba[0]+proba[1], 1e-12)

	// first class man: votes 0 (w=1.5) and 1 (w=0.5) -> decision (-3+1)/2 = -1
	firstClassMan := Encode(RawPassengerInput{TicketClass: 1, Sex: "male"}).Values()
	proba, err = model.PredictProba(firstClassMan)
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(1)), proba[1], 1e-12)

	// first class woman: both vote 1 -> decision 2
	woman := Encode(RawPassengerInput{TicketClass: 1, Sex: "female"}).Values()
	label, err = model.Predict(woman)
	require.NoError(t, err)
	assert.Equal(t, 1, label)
}

func TestAdaBoostSAMMER(t *testing.T) {
	artifact := boostedArtifact(AlgorithmSAMMER)
	artifact.EstimatorWeights = nil
	model := &AdaBoost{}
	require.NoError(t, model.init(artifact))

	woman := Encode(RawPassengerInput{TicketClass: 3, Sex: "female"}).Values()
	// stump 1 right leaf: log(.75/.25); stump 2 right leaf: log(.25/.75)
	want := (math.Log(3) + math.Log(1.0/3)) / 2
	proba, err := model.PredictProba(woman)
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(-want)), proba[1], 1e-12)
	assert.InDelta(t, 0.5, proba[1], 1e-12)
}

func TestAdaBoostRejectsBadArtifacts(t *testing.T) {
	artifact := boostedArtifact("SAMME.X")
	assert.Error(t, (&AdaBoost{}).init(artifact))

	artifact = boostedArtifact(AlgorithmSAMME)
	artifact.Classes = []int{0, 1, 2}
	assert.Error(t, (&AdaBoost{}).init(artifact))

	artifact = boostedArtifact(AlgorithmSAMME)
	artifact.EstimatorWeights = []float64{1}
	assert.Error(t, (&AdaBoost{}).init(artifact))

	artifact = boostedArtifact(AlgorithmSAMME)
	artifact.Estimators = nil
	assert.Error(t, (&AdaBoost{}).init(artifact))

	_, err := (&AdaBoost{}).Predict(make([]float64, FeatureCount))
	assert.Error(t, err)
}

func TestLoadModel(t *testing.T) {
	path := writeJSON(t, boostedArtifact(AlgorithmSAMME))

	model, err := LoadModel(ModelTypeAdaBoost, path)
	require.NoError(t, err)
	assert.Equal(t, ModelTypeAdaBoost, model.Type)
	assert.Len(t, model.Version, 12)
	assert.Equal(t, FeatureNames(), model.Info().Features)

	prediction, err := Run(model.Classifier, Encode(RawPassengerInput{TicketClass: 1, Sex: "female"}))
	require.NoError(t, err)
	assert.True(t, prediction.Survived())
	assert.Equal(t, prediction.SurvivalProbability(), prediction.Confidence())

	_, err = LoadModel("random_forest", path)
	assert.ErrorIs(t, err, ErrUnsupportedModel)

	_, err = LoadModel(ModelTypeAdaBoost, filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
