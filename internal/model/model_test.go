package model_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Skufu/GlucoRisk/internal/model"
	"github.com/Skufu/GlucoRisk/internal/risk"
)

func ones(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func scalerJSON(meanValue string) string {
	vals := strings.TrimSuffix(strings.Repeat(meanValue+",", risk.FeatureCount), ",")
	return `{"kind":"standard_scaler","mean":[` + vals + `],"scale":[` +
		strings.TrimSuffix(strings.Repeat("1,", risk.FeatureCount), ",") + `]}`
}

func classifierJSON(intercept string) string {
	return `{"kind":"logistic_regression","coef":[` +
		strings.TrimSuffix(strings.Repeat("0,", risk.FeatureCount), ",") +
		`],"intercept":` + intercept + `}`
}

func writeArtifacts(t *testing.T, dir, intercept string) model.Paths {
	t.Helper()
	paths := model.Paths{
		Scaler:     filepath.Join(dir, "scaler.json"),
		Classifier: filepath.Join(dir, "model.json"),
	}
	writeFile(t, paths.Scaler, scalerJSON("0"))
	writeFile(t, paths.Classifier, classifierJSON(intercept))
	return paths
}

func TestStandardScaler_Transform(t *testing.T) {
	mean := ones(risk.FeatureCount, 1)
	scale := ones(risk.FeatureCount, 2)
	s, err := model.NewStandardScaler(mean, scale)
	require.NoError(t, err)

	in := risk.FeatureVector(ones(risk.FeatureCount, 5))
	out := s.Transform(in)

	assert.Equal(t, risk.FeatureVector(ones(risk.FeatureCount, 2)), out)
	assert.Equal(t, 5.0, in[0], "input must be left untouched")
}

func TestStandardScaler_RejectsBadParameters(t *testing.T) {
	_, err := model.NewStandardScaler(ones(3, 0), ones(3, 1))
	assert.Error(t, err)

	scale := ones(risk.FeatureCount, 1)
	scale[8] = 0
	_, err = model.NewStandardScaler(ones(risk.FeatureCount, 0), scale)
	assert.ErrorContains(t, err, "gender_Other")

	mean := ones(risk.FeatureCount, 0)
	mean[0] = math.Inf(1)
	_, err = model.NewStandardScaler(mean, ones(risk.FeatureCount, 1))
	assert.Error(t, err)
}

func TestLogisticRegression_PredictProbability(t *testing.T) {
	m, err := model.NewLogisticRegression(ones(risk.FeatureCount, 0), 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, m.PredictProbability(risk.FeatureVector(ones(risk.FeatureCount, 3))), 1e-12)

	coef := ones(risk.FeatureCount, 0)
	coef[0] = 1
	m, err = model.NewLogisticRegression(coef, -1)
	require.NoError(t, err)
	v := risk.FeatureVector(ones(risk.FeatureCount, 0))
	v[0] = 1
	assert.InDelta(t, 0.5, m.PredictProbability(v), 1e-12)

	v[0] = 1000
	assert.Equal(t, 1.0, m.PredictProbability(v))
	v[0] = -1000
	p := m.PredictProbability(v)
	assert.False(t, math.IsNaN(p))
	assert.InDelta(t, 0.0, p, 1e-12)
}

func TestLoadPipeline(t *testing.T) {
	paths := writeArtifacts(t, t.TempDir(), "0")

	pipeline, err := model.LoadPipeline(paths)
	require.NoError(t, err)

	p, err := pipeline.Score(risk.FeatureVector(ones(risk.FeatureCount, 1)))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p, 1e-12)
}

func TestLoadPipeline_MissingArtifactFailsClosed(t *testing.T) {
	dir := t.TempDir()
	paths := writeArtifacts(t, dir, "0")
	require.NoError(t, os.Remove(paths.Classifier))

	pipeline, err := model.LoadPipeline(paths)
	assert.Nil(t, pipeline)
	assert.True(t, errors.Is(err, model.ErrArtifactLoad))

	paths = writeArtifacts(t, dir, "0")
	require.NoError(t, os.Remove(paths.Scaler))
	pipeline, err = model.LoadPipeline(paths)
	assert.Nil(t, pipeline)
	assert.ErrorIs(t, err, model.ErrArtifactLoad)
}

func TestLoadArtifacts_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "artifact.json")

	cases := map[string]string{
		"not json":    "\x80\x04pickle",
		"wrong kind":  classifierJSON("0"),
		"wrong width": `{"kind":"standard_scaler","mean":[1,2],"scale":[1,2]}`,
		"zero scale": `{"kind":"standard_scaler","mean":[` +
			strings.TrimSuffix(strings.Repeat("0,", risk.FeatureCount), ",") + `],"scale":[` +
			strings.TrimSuffix(strings.Repeat("0,", risk.FeatureCount), ",") + `]}`,
	}
	for name, content := range cases {
		writeFile(t, path, content)
		_, err := model.LoadScaler(path)
		assert.ErrorIs(t, err, model.ErrArtifactLoad, name)
	}
}

func TestLoadArtifacts_FeatureOrderMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	names := risk.FeatureNames
	names[0], names[1] = names[1], names[0]

	content := `{"kind":"logistic_regression","features":["` + strings.Join(names[:], `","`) +
		`"],"coef":[` + strings.TrimSuffix(strings.Repeat("0,", risk.FeatureCount), ",") + `],"intercept":0}`
	writeFile(t, path, content)

	_, err := model.LoadClassifier(path)
	assert.ErrorIs(t, err, model.ErrArtifactLoad)
	assert.ErrorContains(t, err, "hypertension")
}

func TestLoadPipeline_ShippedArtifacts(t *testing.T) {
	pipeline, err := model.LoadPipeline(model.Paths{
		Scaler:     filepath.Join("..", "..", "models", "scaler.json"),
		Classifier: filepath.Join("..", "..", "models", "model.json"),
	})
	require.NoError(t, err)

	assessment, err := pipeline.Assess(risk.PatientProfile{
		Age: 60, Gender: risk.GenderMale, BMI: 32.0, HbA1c: 6.8, BloodGlucose: 150,
		Hypertension: true, SmokingHistory: risk.SmokingCurrent,
	})
	require.NoError(t, err)
	assert.Equal(t, risk.ClassifyTier(assessment.Probability), assessment.Tier)
	assert.GreaterOrEqual(t, assessment.Probability, 0.0)
	assert.LessOrEqual(t, assessment.Probability, 1.0)
}

func TestCurrent(t *testing.T) {
	c := &model.Current{}
	assert.Nil(t, c.Load())

	paths := writeArtifacts(t, t.TempDir(), "0")
	p, err := model.LoadPipeline(paths)
	require.NoError(t, err)

	c.Store(p)
	assert.Same(t, p, c.Load())
}

func TestWatcher_ReloadsOnChangeAndKeepsPreviousOnFailure(t *testing.T) {
	paths := writeArtifacts(t, t.TempDir(), "0")
	initial, err := model.LoadPipeline(paths)
	require.NoError(t, err)
	current := model.NewCurrent(initial)

	var (
		mu      sync.Mutex
		results []error
	)
	w, err := model.NewWatcher(paths, current, zap.NewNop(), func(err error) {
		mu.Lock()
		defer mu.Unlock()
		results = append(results, err)
	})
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Large intercept pushes every probability to ~1.
	writeFile(t, paths.Classifier, classifierJSON("50"))

	require.Eventually(t, func() bool {
		return current.Load() != initial
	}, 5*time.Second, 20*time.Millisecond)

	reloaded := current.Load()
	p, err := reloaded.Score(risk.FeatureVector(ones(risk.FeatureCount, 0)))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, p, 1e-9)

	mu.Lock()
	seen := len(results)
	mu.Unlock()

	writeFile(t, paths.Classifier, "{broken")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, r := range results[seen:] {
			if r != nil {
				return true
			}
		}
		return false
	}, 5*time.Second, 20*time.Millisecond)

	assert.Same(t, reloaded, current.Load())
}

func TestWatcher_ReloadsOnMountedVolumeSwap(t *testing.T) {
	dir := t.TempDir()
	paths := writeArtifacts(t, dir, "0")
	initial, err := model.LoadPipeline(paths)
	require.NoError(t, err)
	current := model.NewCurrent(initial)

	w, err := model.NewWatcher(paths, current, zap.NewNop(), nil)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// A projected volume update only creates and renames "..data".
	target := filepath.Join(dir, "..data_tmp")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "..2026_10_16"), 0o755))
	require.NoError(t, os.Symlink("..2026_10_16", target))
	require.NoError(t, os.Rename(target, filepath.Join(dir, "..data")))

	require.Eventually(t, func() bool {
		return current.Load() != initial
	}, 5*time.Second, 20*time.Millisecond)
}
