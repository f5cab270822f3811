package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// PlannedResponse describes the behaviour of a single fake upstream call.
type PlannedResponse struct {
	Delay  time.Duration
	Status int
	Body   string
}

// FakeEmbedAPI provides a controllable httptest server used to simulate the
// embedding upstream with configurable latency and status codes.
type FakeEmbedAPI struct {
	server    *httptest.Server
	mu        sync.Mutex
	responses []PlannedResponse
	index     int
	calls     int
}

// NewFakeEmbedAPI constructs a new FakeEmbedAPI with the provided response
// plan. When the number of executed calls exceeds the length of responses,
// the last response is reused.
func NewFakeEmbedAPI(responses ...PlannedResponse) *FakeEmbedAPI {
	if len(responses) == 0 {
		responses = []PlannedResponse{{Status: http.StatusOK}}
	}

	fa := &FakeEmbedAPI{
		responses: responses,
	}

	fa.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := fa.nextResponse()
		if resp.Delay > 0 {
			timer := time.NewTimer(resp.Delay)
			select {
			case <-timer.C:
			case <-r.Context().Done():
				timer.Stop()
				return
			}
		}

		status := resp.Status
		if status == 0 {
			status = http.StatusOK
		}

		w.WriteHeader(status)
		if resp.Body != "" {
			_, _ = w.Write([]byte(resp.Body))
		}
	}))

	return fa
}

func (f *FakeEmbedAPI) nextResponse() PlannedResponse {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.index >= len(f.responses) {
		return f.responses[len(f.responses)-1]
	}

	resp := f.responses[f.index]
	f.index++
	return resp
}

// URL returns the base URL for the fake upstream.
func (f *FakeEmbedAPI) URL() string {
	if f == nil || f.server == nil {
		return ""
	}
	return f.server.URL
}

// Calls returns the number of requests handled so far.
func (f *FakeEmbedAPI) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// SetResponses overrides the remaining response plan, resetting the cursor.
func (f *FakeEmbedAPI) SetResponses(responses ...PlannedResponse) {
	if f == nil {
		return
	}
	if len(responses) == 0 {
		responses = []PlannedResponse{{Status: http.StatusOK}}
	}
	f.mu.Lock()
	f.responses = responses
	f.index = 0
	f.calls = 0
	f.mu.Unlock()
}

// Close terminates the hosted httptest server.
func (f *FakeEmbedAPI) Close() {
	if f == nil || f.server == nil {
		return
	}
	f.server.Close()
}
