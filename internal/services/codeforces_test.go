package services

import (
  "context"
  "net/http"
  "net/http/httptest"
  "testing"

  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/require"

  "github.com/cfanatic-org/cfanatic-backend/internal/logger"
)

func newTestCodeforces(t *testing.T, handler http.HandlerFunc) CodeforcesService {
  t.Helper()
  srv := httptest.NewServer(handler)
  t.Cleanup(srv.Close)
  t.Setenv("CODEFORCES_API_URL", srv.URL)
  return NewCodeforcesService(logger.NewNop(), nil)
}

func TestCodeforcesService_UserInfoReturnsRawResult(t *testing.T) {
  var gotPath, gotQuery string
  cf := newTestCodeforces(t, func(w http.ResponseWriter, r *http.Request) {
    gotPath = r.URL.Path
    gotQuery = r.URL.RawQuery
    w.Write([]byte(`{"status":"OK","result":[{"handle":"tourist","rating":3979}]}`))
  })

  out, err := cf.GetUserInfo(context.Background(), "tourist")
  require.NoError(t, err)
  assert.Equal(t, "/user.info", gotPath)
  assert.Equal(t, "handles=tourist", gotQuery)
  assert.Equal(t, `[{"handle":"tourist","rating":3979}]`, out)
}

func TestCodeforcesService_FailedStatusSurfacesComment(t *testing.T) {
  cf := newTestCodeforces(t, func(w http.ResponseWriter, r *http.Request) {
    w.Write([]byte(`{"status":"FAILED","comment":"handles: User with handle nosuch not found"}`))
  })

  _, err := cf.GetUserInfo(context.Background(), "nosuch")
  require.Error(t, err)
  assert.Contains(t, err.Error(), "FAILED")
  assert.Contains(t, err.Error(), "User with handle nosuch not found")
}

func TestCodeforcesService_SubmissionsQuery(t *testing.T) {
  var gotQuery string
  cf := newTestCodeforces(t, func(w http.ResponseWriter, r *http.Request) {
    gotQuery = r.URL.RawQuery
    w.Write([]byte(`{"status":"OK","result":[]}`))
  })

  _, err := cf.GetUserSubmissions(context.Background(), "tourist", 5)
  require.NoError(t, err)
  assert.Equal(t, "handle=tourist&from=1&count=5", gotQuery)

  // Non-positive counts fall back to the default window.
  _, err = cf.GetUserSubmissions(context.Background(), "tourist", 0)
  require.NoError(t, err)
  assert.Equal(t, "handle=tourist&from=1&count=10", gotQuery)
}

func TestCodeforcesService_RatingQuery(t *testing.T) {
  var gotPath string
  cf := newTestCodeforces(t, func(w http.ResponseWriter, r *http.Request) {
    gotPath = r.URL.Path
    w.Write([]byte(`{"status":"OK","result":[{"newRating":3979}]}`))
  })

  out, err := cf.GetUserRating(context.Background(), "tourist")
  require.NoError(t, err)
  assert.Equal(t, "/user.rating", gotPath)
  assert.Equal(t, `[{"newRating":3979}]`, out)
}

func TestCodeforcesService_UndecodableBody(t *testing.T) {
  cf := newTestCodeforces(t, func(w http.ResponseWriter, r *http.Request) {
    w.WriteHeader(http.StatusBadGateway)
    w.Write([]byte("<html>upstream error</html>"))
  })

  _, err := cf.GetUserInfo(context.Background(), "tourist")
  require.Error(t, err)
  assert.Contains(t, err.Error(), "502")
}
