package httptransport

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"datawipe/internal/audit"
	"datawipe/internal/authz"
	"datawipe/internal/erasure"
	"datawipe/internal/export"
	"datawipe/internal/hold"
	"datawipe/internal/platform/metrics"
	id "datawipe/pkg/domain"
	dErrors "datawipe/pkg/domain-errors"
)

var testMetrics = metrics.New()

type stubErasure struct {
	outcome *erasure.Outcome
	err     error
	verdict hold.Verdict
}

func (s *stubErasure) Erase(_ context.Context, userID id.UserID, requestType erasure.RequestType, _ string) (*erasure.Outcome, error) {
	if s.outcome != nil {
		s.outcome.UserID = userID
		s.outcome.RequestType = requestType
	}
	return s.outcome, s.err
}

func (s *stubErasure) QueryHolds(context.Context, id.UserID) hold.Verdict {
	return s.verdict
}

type stubExport struct {
	tree *export.Tree
	err  error
}

func (s *stubExport) Export(context.Context, id.UserID) (*export.Tree, error) {
	return s.tree, s.err
}

type stubAudit struct {
	entries []audit.Entry
	err     error
}

func (s *stubAudit) ListByUser(context.Context, authz.Actor, id.UserID) ([]audit.Entry, error) {
	return s.entries, s.err
}

func (s *stubAudit) List(context.Context, authz.Actor, int) ([]audit.Entry, error) {
	return s.entries, s.err
}

func (s *stubAudit) Update(context.Context, authz.Actor, audit.Entry) error {
	return dErrors.New(dErrors.CodeForbidden, "audit entries are immutable")
}

func (s *stubAudit) Delete(context.Context, authz.Actor, id.AuditEntryID) error {
	return dErrors.New(dErrors.CodeForbidden, "audit entries are immutable")
}

type passValidator struct{}

func (passValidator) ValidateToken(string) (authz.Actor, error) {
	return authz.Actor{ID: "tester", Capabilities: []string{authz.CapabilityViewAuditTrail}}, nil
}

type HandlersSuite struct {
	suite.Suite

	erasure *stubErasure
	export  *stubExport
	audit   *stubAudit
	server  *httptest.Server
	userID  id.UserID
}

func TestHandlersSuite(t *testing.T) {
	suite.Run(t, new(HandlersSuite))
}

func (s *HandlersSuite) SetupTest() {
	s.erasure = &stubErasure{}
	s.export = &stubExport{}
	s.audit = &stubAudit{}
	s.userID = id.NewUserID()

	router := NewRouter(RouterConfig{
		Erasure:   s.erasure,
		Export:    s.export,
		Audit:     s.audit,
		Validator: passValidator{},
		Metrics:   testMetrics,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	s.server = httptest.NewServer(router)
	s.T().Cleanup(s.server.Close)
}

func (s *HandlersSuite) do(method, path, body string) (*http.Response, map[string]any) {
	req, err := http.NewRequest(method, s.server.URL+path, strings.NewReader(body))
	s.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer test-token")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	if len(raw) > 0 {
		s.Require().NoError(json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func (s *HandlersSuite) TestEraseCompleted() {
	s.erasure.outcome = &erasure.Outcome{
		Status:     erasure.StatusCompleted,
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
		Domains: map[string]erasure.DomainResult{
			"subscriptions": {"invoices": {"INV-1"}},
		},
	}

	resp, body := s.do(http.MethodPost, "/users/"+s.userID.String()+"/erasure", `{"request_type":"user"}`)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("completed", body["status"])
	s.Equal(s.userID.String(), body["user_id"])
}

func (s *HandlersSuite) TestEraseVeto() {
	s.erasure.err = dErrors.New(dErrors.CodeHoldVeto, "user has 1 settled transaction(s) within the last 90 days")

	resp, body := s.do(http.MethodPost, "/users/"+s.userID.String()+"/erasure", `{"request_type":"user"}`)
	s.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	s.Equal("hold_veto", body["error"])
	s.Contains(body["error_description"], "settled transaction")
}

func (s *HandlersSuite) TestErasePartialCarriesOutcome() {
	s.erasure.outcome = &erasure.Outcome{
		Status:       erasure.StatusPartial,
		FailedDomain: "users",
		Domains: map[string]erasure.DomainResult{
			"subscriptions": {"invoices": {"INV-1"}},
		},
	}
	s.erasure.err = dErrors.New(dErrors.CodeStoreUnavailable, "erasure aborted in domain users: store unavailable")

	resp, body := s.do(http.MethodPost, "/users/"+s.userID.String()+"/erasure", `{"request_type":"admin"}`)
	s.Equal(http.StatusServiceUnavailable, resp.StatusCode)
	s.Equal("partial", body["status"])
	s.Equal("users", body["failed_domain"])
	s.Equal("store_unavailable", body["error"])
	s.NotNil(body["domains"], "completed domains must be visible to the caller")
}

func (s *HandlersSuite) TestEraseConflict() {
	s.erasure.err = dErrors.New(dErrors.CodeOperationConflict, "another operation for this user is in flight")

	resp, body := s.do(http.MethodPost, "/users/"+s.userID.String()+"/erasure", `{"request_type":"user"}`)
	s.Equal(http.StatusConflict, resp.StatusCode)
	s.Equal("concurrent_operation_conflict", body["error"])
}

func (s *HandlersSuite) TestEraseRejectsBadInput() {
	resp, _ := s.do(http.MethodPost, "/users/not-a-uuid/erasure", `{"request_type":"user"}`)
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(http.MethodPost, "/users/"+s.userID.String()+"/erasure", `{"request_type":"robot"}`)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *HandlersSuite) TestQueryHolds() {
	s.erasure.verdict = hold.Verdict{Vetoed: true, Reason: "litigation pending", Source: "legal_hold"}

	resp, body := s.do(http.MethodGet, "/users/"+s.userID.String()+"/holds", "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(true, body["vetoed"])
	s.Equal("legal_hold", body["source"])
}

func (s *HandlersSuite) TestExport() {
	s.export.tree = &export.Tree{
		UserID:      s.userID,
		GeneratedAt: time.Now(),
		Sections:    []export.Section{{Name: "subscriptions"}},
	}

	resp, body := s.do(http.MethodGet, "/users/"+s.userID.String()+"/export", "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(s.userID.String(), body["user_id"])
	s.NotNil(body["sections"])
}

func (s *HandlersSuite) TestAuditMutationForbidden() {
	entryID := id.NewAuditEntryID().String()

	resp, body := s.do(http.MethodDelete, "/audit/"+entryID, "")
	s.Equal(http.StatusForbidden, resp.StatusCode)
	s.Equal("forbidden", body["error"])

	resp, body = s.do(http.MethodPut, "/audit/"+entryID, `{}`)
	s.Equal(http.StatusForbidden, resp.StatusCode)
	s.Equal("forbidden", body["error"])
}

func (s *HandlersSuite) TestUnauthenticatedRejected() {
	req, err := http.NewRequest(http.MethodGet, s.server.URL+"/audit", nil)
	s.Require().NoError(err)

	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *HandlersSuite) TestHealthOpen() {
	resp, err := s.server.Client().Get(s.server.URL + "/health")
	s.Require().NoError(err)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
}
