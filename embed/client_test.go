package embed_test

import (
	"context"
	"math"
	"net/http"
	"strings"
	"testing"

	"github.com/ypacademy/answer_engine/embed"
	"github.com/ypacademy/answer_engine/testutil"
)

const vectorBody = `{"data":[{"embedding":[0.1,0.2,0.3],"index":0}]}`

func newTestClient(t *testing.T, baseURL string, retryMax int) *embed.Client {
	t.Helper()
	client, err := embed.NewClient(baseURL, "test-model", "test-key", nil, retryMax, 0)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	return client
}

func TestEmbedSuccess(t *testing.T) {
	api := testutil.NewFakeEmbedAPI(testutil.PlannedResponse{Status: http.StatusOK, Body: vectorBody})
	defer api.Close()

	vec, err := newTestClient(t, api.URL(), 2).Embed(context.Background(), "basketball drills")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vec) != 3 || vec[0] != 0.1 {
		t.Fatalf("vector = %v", vec)
	}
	if api.Calls() != 1 {
		t.Fatalf("calls = %d, want 1", api.Calls())
	}
}

func TestEmbedRetriesServerErrors(t *testing.T) {
	api := testutil.NewFakeEmbedAPI(
		testutil.PlannedResponse{Status: http.StatusInternalServerError},
		testutil.PlannedResponse{Status: http.StatusBadGateway},
		testutil.PlannedResponse{Status: http.StatusOK, Body: vectorBody},
	)
	defer api.Close()

	vec, err := newTestClient(t, api.URL(), 2).Embed(context.Background(), "query")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vec) != 3 {
		t.Fatalf("vector = %v", vec)
	}
	if api.Calls() != 3 {
		t.Fatalf("calls = %d, want 3", api.Calls())
	}
}

func TestEmbedGivesUpAfterRetryMax(t *testing.T) {
	api := testutil.NewFakeEmbedAPI(testutil.PlannedResponse{Status: http.StatusInternalServerError})
	defer api.Close()

	_, err := newTestClient(t, api.URL(), 1).Embed(context.Background(), "query")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if api.Calls() != 2 {
		t.Fatalf("calls = %d, want 2", api.Calls())
	}
}

func TestEmbedClientErrorNotRetried(t *testing.T) {
	api := testutil.NewFakeEmbedAPI(testutil.PlannedResponse{
		Status: http.StatusUnauthorized,
		Body:   `{"error":"bad key"}`,
	})
	defer api.Close()

	_, err := newTestClient(t, api.URL(), 2).Embed(context.Background(), "query")
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("err = %v, want 401 failure", err)
	}
	if api.Calls() != 1 {
		t.Fatalf("calls = %d, want 1", api.Calls())
	}
}

func TestEmbedEmptyData(t *testing.T) {
	api := testutil.NewFakeEmbedAPI(testutil.PlannedResponse{Status: http.StatusOK, Body: `{"data":[]}`})
	defer api.Close()

	if _, err := newTestClient(t, api.URL(), 0).Embed(context.Background(), "query"); err == nil {
		t.Fatal("expected error for empty embedding data")
	}
}

func TestEmbedCancelledContext(t *testing.T) {
	api := testutil.NewFakeEmbedAPI(testutil.PlannedResponse{Status: http.StatusOK, Body: vectorBody})
	defer api.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newTestClient(t, api.URL(), 0).Embed(ctx, "query"); err == nil {
		t.Fatal("expected context error")
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := embed.NewClient("", "model", "", nil, 0, 0); err == nil {
		t.Fatal("missing baseURL should fail")
	}
	if _, err := embed.NewClient("http://example.com", "", "", nil, 0, 0); err == nil {
		t.Fatal("missing model should fail")
	}
}

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"mismatched length", []float32{1, 2}, []float32{1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tc := range cases {
		if got := embed.CosineSimilarity(tc.a, tc.b); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("%s: CosineSimilarity = %v, want %v", tc.name, got, tc.want)
		}
	}
}
