package services

import (
  "context"
  "encoding/json"
  "fmt"
  "io"
  "net/http"
  "net/url"
  "time"

  "github.com/redis/go-redis/v9"

  "github.com/cfanatic-org/cfanatic-backend/internal/logger"
  "github.com/cfanatic-org/cfanatic-backend/internal/utils"
)

// CodeforcesService wraps the three read endpoints of the Codeforces API.
// Results come back as the raw JSON of the API's "result" field; failures
// are plain errors and get stringified at the tool boundary, not here.
type CodeforcesService interface {
  GetUserInfo(ctx context.Context, handle string) (string, error)
  GetUserSubmissions(ctx context.Context, handle string, count int) (string, error)
  GetUserRating(ctx context.Context, handle string) (string, error)
}

type codeforcesService struct {
  log         *logger.Logger
  client      *http.Client
  baseURL     string
  cache       *redis.Client
  cacheTTL    time.Duration
}

// NewCodeforcesService builds the platform client. cache may be nil, in
// which case every call goes straight to the API.
func NewCodeforcesService(log *logger.Logger, cache *redis.Client) CodeforcesService {
  serviceLog := log.With("service", "CodeforcesService")
  baseURL := utils.GetEnv("CODEFORCES_API_URL", "https://codeforces.com/api", log)
  cacheTTL := utils.GetEnvAsInt("CODEFORCES_CACHE_TTL", 300, log)
  httpClient := &http.Client{
    Timeout: 15 * time.Second,
  }
  return &codeforcesService{
    log:      serviceLog,
    client:   httpClient,
    baseURL:  baseURL,
    cache:    cache,
    cacheTTL: time.Duration(cacheTTL) * time.Second,
  }
}

type codeforcesEnvelope struct {
  Status    string            `json:"status"`
  Comment   string            `json:"comment,omitempty"`
  Result    json.RawMessage   `json:"result,omitempty"`
}

func (cs *codeforcesService) GetUserInfo(ctx context.Context, handle string) (string, error) {
  path := fmt.Sprintf("user.info?handles=%s", url.QueryEscape(handle))
  return cs.fetch(ctx, path, "cf:user.info:"+handle)
}

func (cs *codeforcesService) GetUserSubmissions(ctx context.Context, handle string, count int) (string, error) {
  if count <= 0 {
    count = 10
  }
  path := fmt.Sprintf("user.status?handle=%s&from=1&count=%d", url.QueryEscape(handle), count)
  return cs.fetch(ctx, path, fmt.Sprintf("cf:user.status:%s:%d", handle, count))
}

func (cs *codeforcesService) GetUserRating(ctx context.Context, handle string) (string, error) {
  path := fmt.Sprintf("user.rating?handle=%s", url.QueryEscape(handle))
  return cs.fetch(ctx, path, "cf:user.rating:"+handle)
}

func (cs *codeforcesService) fetch(ctx context.Context, path, cacheKey string) (string, error) {
  if cs.cache != nil {
    cached, err := cs.cache.Get(ctx, cacheKey).Result()
    if err == nil {
      return cached, nil
    }
    if err != redis.Nil {
      cs.log.Warn("redis get failed, falling through to the API", "key", cacheKey, "error", err)
    }
  }

  reqURL := fmt.Sprintf("%s/%s", cs.baseURL, path)
  req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
  if err != nil {
    cs.log.Warn("failed to build codeforces request", "error", err)
    return "", err
  }
  resp, err := cs.client.Do(req)
  if err != nil {
    cs.log.Warn("failed to call codeforces", "error", err)
    return "", err
  }
  defer resp.Body.Close()

  bodyBytes, err := io.ReadAll(resp.Body)
  if err != nil {
    cs.log.Warn("failed to read codeforces response body", "error", err)
    return "", err
  }
  var envelope codeforcesEnvelope
  if err := json.Unmarshal(bodyBytes, &envelope); err != nil {
    cs.log.Warn("failed to decode codeforces response", "statusCode", resp.StatusCode, "error", err)
    return "", fmt.Errorf("codeforces HTTP %d: undecodable body", resp.StatusCode)
  }
  if envelope.Status != "OK" {
    return "", fmt.Errorf("codeforces responded with status %s: %s", envelope.Status, envelope.Comment)
  }

  result := string(envelope.Result)
  if cs.cache != nil {
    if err := cs.cache.Set(ctx, cacheKey, result, cs.cacheTTL).Err(); err != nil {
      cs.log.Warn("redis set failed", "key", cacheKey, "error", err)
    }
  }
  return result, nil
}
