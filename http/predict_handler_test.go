package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"titanic/ml"
)

type fakeModel struct {
	label int
	proba []float64
	err   error
}

func (f *fakeModel) Predict(features []float64) (int, error) {
	return f.label, f.err
}

func (f *fakeModel) PredictProba(features []float64) ([]float64, error) {
	if f.proba == nil {
		p := []float64{0, 0}
		p[f.label] = 1
		return p, f.err
	}
	return f.proba, f.err
}

func zapNop() *zap.Logger { return zap.NewNop() }

const rosePayload = `{"pclass":1,"name":"DeWitt Bukater, Miss. Rose","sex":"female","age":17,"sibsp":0,"parch":1,"fare":211.5,"embarked":"S"}`

func TestHandlePredict(t *testing.T) {
	model := &ml.Model{Classifier: &fakeModel{label: 1, proba: []float64{0.2, 0.8}}, Type: ml.ModelTypeAdaBoost, Version: "abc"}
	mux := http.NewServeMux()
	(&Handlers{Predictor: newTestService(t, model)}).Register(mux)

	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(rosePayload))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var payload struct {
		ID         string        `json:"id"`
		Prediction ml.Prediction `json:"prediction"`
		Version    string        `json:"model_version"`
		Cached     bool          `json:"cached"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload.Prediction.Label != 1 {
		t.Fatalf("unexpected label: %v", payload.Prediction.Label)
	}
	if payload.Prediction.Probabilities[1] != 0.8 {
		t.Fatalf("unexpected probabilities: %v", payload.Prediction.Probabilities)
	}
	if payload.ID == "" || payload.Version != "abc" || payload.Cached {
		t.Fatalf("unexpected payload: %+v", payload)
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(rosePayload)))
	if !strings.Contains(w.Body.String(), `"cached":true`) {
		t.Fatalf("expected cached result on repeat: %s", w.Body.String())
	}
}

func TestHandlePredictRejectsPlaceholders(t *testing.T) {
	model := &ml.Model{Classifier: &fakeModel{label: 0}}
	mux := http.NewServeMux()
	(&Handlers{Predictor: newTestService(t, model)}).Register(mux)

	body := `{"pclass":0,"name":"Doe, Mr. John","sex":"Pilih Jenis Kelamin","age":30,"sibsp":0,"parch":0,"fare":8,"embarked":"S"}`
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(body)))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var payload errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if _, ok := payload.Fields["pclass"]; !ok {
		t.Fatalf("expected pclass field error, got %v", payload.Fields)
	}
	if _, ok := payload.Fields["sex"]; !ok {
		t.Fatalf("expected sex field error, got %v", payload.Fields)
	}
}

func TestHandlePredictBadBody(t *testing.T) {
	mux := http.NewServeMux()
	(&Handlers{Predictor: newTestService(t, &ml.Model{Classifier: &fakeModel{}})}).Register(mux)

	for _, body := range []string{`not json`, `{"pclass":1,"cabin":"B5"}`} {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(body)))
		if w.Code != http.StatusBadRequest {
			t.Errorf("%q: expected 400, got %d", body, w.Code)
		}
	}
}

func TestHandlePredictWithoutModel(t *testing.T) {
	mux := http.NewServeMux()
	(&Handlers{Predictor: newTestService(t, nil)}).Register(mux)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(rosePayload)))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestHandlePredictClassifierFailure(t *testing.T) {
	model := &ml.Model{Classifier: &fakeModel{err: errors.New("corrupt estimator")}}
	mux := http.NewServeMux()
	(&Handlers{Predictor: newTestService(t, model), Logger: zapNop()}).Register(mux)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(rosePayload)))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "corrupt") {
		t.Fatalf("internal error leaked to client: %s", w.Body.String())
	}
}

func TestHandleModel(t *testing.T) {
	model := &ml.Model{Classifier: &fakeModel{}, Type: ml.ModelTypeDecisionTree, Path: "tree.json", Version: "0123456789ab"}
	mux := http.NewServeMux()
	(&Handlers{Predictor: newTestService(t, model)}).Register(mux)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/model", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "0123456789ab") || !strings.Contains(w.Body.String(), "decision_tree") {
		t.Fatalf("unexpected model info: %s", w.Body.String())
	}
}
