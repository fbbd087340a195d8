package httptransport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	batchhandler "agriqcert/internal/batch/handler"
	batchservice "agriqcert/internal/batch/service"
	batchstore "agriqcert/internal/batch/store"
	credhandler "agriqcert/internal/credential/handler"
	credservice "agriqcert/internal/credential/service"
	"agriqcert/internal/credential/signing"
	credstore "agriqcert/internal/credential/store"
	jwttoken "agriqcert/internal/jwt_token"
	"agriqcert/internal/platform/health"
	"agriqcert/internal/qrcode"
	verifyhandler "agriqcert/internal/verification/handler"
	verifyservice "agriqcert/internal/verification/service"
	verifystore "agriqcert/internal/verification/store"
	"agriqcert/pkg/domain"
	"agriqcert/pkg/platform/middleware/request"
	platformsync "agriqcert/pkg/platform/sync"
)

type RouterSuite struct {
	suite.Suite
	router http.Handler
	tokens *jwttoken.JWTService
}

func (s *RouterSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	mu := platformsync.NewShardedMutex()
	bs := batchstore.NewInMemoryStore()
	cs := credstore.NewInMemoryStore()
	strategy := signing.NewStrategy(signing.WithLogger(logger))

	batches := batchservice.New(bs, batchservice.NewShardedTx(mu, bs, nil))
	creds := credservice.New(bs, cs, credservice.NewShardedTx(mu, bs, cs, nil), strategy, qrcode.New(),
		credservice.Config{PublicBaseURL: "https://agriqcert.test"})
	verifier := verifyservice.New(cs, strategy, verifystore.NewInMemoryStore())

	s.tokens = jwttoken.NewJWTService("router-test-key", "agriqcert", time.Hour)
	s.router = NewRouter(Handlers{
		Batches:      batchhandler.New(batches, logger),
		Credentials:  credhandler.New(creds, logger),
		Verification: verifyhandler.New(verifier, logger),
		Health:       health.New("test"),
	}, Deps{
		Logger:    logger,
		Validator: s.tokens,
		Metrics:   request.NewMetrics(reg),
		Gatherer:  reg,
	})
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) get(path string, role domain.Role) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if role != "" {
		token, err := s.tokens.GenerateToken(context.Background(), domain.Actor{ID: domain.UserID(uuid.New()), Role: role}, 0)
		s.Require().NoError(err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) TestProbes() {
	s.Equal(http.StatusOK, s.get("/health", "").Code)
	s.Equal(http.StatusOK, s.get("/health/live", "").Code)
}

func (s *RouterSuite) TestBatchRoutesRequireAuth() {
	s.Equal(http.StatusUnauthorized, s.get("/api/batches", "").Code)
	s.Equal(http.StatusOK, s.get("/api/batches", domain.RoleExporter).Code)

	req := httptest.NewRequest(http.MethodGet, "/api/batches", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *RouterSuite) TestVerificationIsPublic() {
	w := s.get("/api/verify/"+uuid.NewString(), "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"verdict":"NOT_FOUND"`)

	s.Equal(http.StatusUnauthorized, s.get("/api/verify/activity", "").Code)

	w = s.get("/api/verify/activity", domain.RoleCustoms)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"actor":"ANON"`)
}

func (s *RouterSuite) TestMetricsExposed() {
	s.get("/health", "")
	w := s.get("/metrics", "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "agriqcert_http_request_duration_seconds")
}
