package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	server "github.com/joshua-hq/warroom/pkg/controller/http"
	"github.com/joshua-hq/warroom/pkg/domain/model/report"
	"github.com/joshua-hq/warroom/pkg/repository"
	"github.com/joshua-hq/warroom/pkg/service/identity"
	"github.com/joshua-hq/warroom/pkg/usecase"
	"github.com/m-mizutani/gt"
)

type stubEnricher struct{}

func (stubEnricher) Enrich(ctx context.Context, in report.Input) (*report.Feedback, error) {
	return &report.Feedback{
		Encouragement: "Keep going",
		Prayer:        "Amen",
	}, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	uc := usecase.New(repository.NewMemory(), stubEnricher{}, identity.New(),
		usecase.WithAccessCode("JOSUE24"),
	)
	srv := httptest.NewServer(server.New(uc, server.WithAppID("qg-test")))
	t.Cleanup(srv.Close)
	return srv
}

func issueIdentity(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/identity", "application/json", nil)
	gt.NoError(t, err)
	defer resp.Body.Close()
	gt.Equal(t, resp.StatusCode, http.StatusCreated)

	var body map[string]string
	gt.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	gt.V(t, body["identity_id"]).NotEqual("")
	return body["identity_id"]
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, identityID string, payload any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if payload != nil {
		gt.NoError(t, json.NewEncoder(&buf).Encode(payload))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	gt.NoError(t, err)
	if identityID != "" {
		req.Header.Set("X-Warroom-Identity", identityID)
	}
	resp, err := http.DefaultClient.Do(req)
	gt.NoError(t, err)
	return resp
}

func TestGateEndpoint(t *testing.T) {
	srv := newTestServer(t)
	id := issueIdentity(t, srv)

	t.Run("rejects missing identity", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodPost, "/api/gate", "", map[string]string{"code": "JOSUE24"})
		defer resp.Body.Close()
		gt.Equal(t, resp.StatusCode, http.StatusBadRequest)
	})

	t.Run("rejects wrong code", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodPost, "/api/gate", id, map[string]string{"code": "nope"})
		defer resp.Body.Close()
		gt.Equal(t, resp.StatusCode, http.StatusBadRequest)
	})

	t.Run("accepts correct code", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodPost, "/api/gate", id, map[string]string{"code": "josue24"})
		defer resp.Body.Close()
		gt.Equal(t, resp.StatusCode, http.StatusNoContent)
	})
}

func TestReportAndChatEndpoints(t *testing.T) {
	srv := newTestServer(t)
	id := issueIdentity(t, srv)

	resp := doJSON(t, srv, http.MethodPost, "/api/reports", id, report.Input{
		AuthorName: "Sam",
		VerseRef:   "John 3:16",
		Revelation: "Grace abounds",
	})
	defer resp.Body.Close()
	gt.Equal(t, resp.StatusCode, http.StatusCreated)

	var fb report.Feedback
	gt.NoError(t, json.NewDecoder(resp.Body).Decode(&fb))
	gt.Equal(t, fb.Encouragement, "Keep going")

	listResp := doJSON(t, srv, http.MethodGet, "/api/reports", id, nil)
	defer listResp.Body.Close()
	gt.Equal(t, listResp.StatusCode, http.StatusOK)

	var reports []*report.Report
	gt.NoError(t, json.NewDecoder(listResp.Body).Decode(&reports))
	gt.A(t, reports).Length(1)
	gt.Equal(t, reports[0].AuthorName, "Sam")

	chatResp := doJSON(t, srv, http.MethodPost, "/api/chat", id, map[string]string{"text": "hello"})
	defer chatResp.Body.Close()
	gt.Equal(t, chatResp.StatusCode, http.StatusNoContent)

	msgsResp := doJSON(t, srv, http.MethodGet, "/api/chat", id, nil)
	defer msgsResp.Body.Close()

	var msgs []map[string]any
	gt.NoError(t, json.NewDecoder(msgsResp.Body).Decode(&msgs))
	gt.A(t, msgs).Length(1)
	gt.Equal(t, msgs[0]["text"], "hello")
}

func TestReportValidation(t *testing.T) {
	srv := newTestServer(t)
	id := issueIdentity(t, srv)

	resp := doJSON(t, srv, http.MethodPost, "/api/reports", id, report.Input{AuthorName: "Sam"})
	defer resp.Body.Close()
	gt.Equal(t, resp.StatusCode, http.StatusBadRequest)
}

func TestWarRoomEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, srv, http.MethodGet, "/api/warroom", "", nil)
	defer resp.Body.Close()
	gt.Equal(t, resp.StatusCode, http.StatusOK)

	var body map[string]string
	gt.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	gt.True(t, strings.HasPrefix(body["url"], "https://meet.jit.si/qg-test"))
}
