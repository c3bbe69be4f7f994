package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/common/cache"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/common/errors"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/common/telemetry"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/matcher/internal/config"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/matcher/internal/models"

	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("jobmanager/matcher/directory")

const profilesCacheKey = "directory:search-profiles"

// Client reads the current set of company search profiles from the directory
// service. An error always means "directory unavailable", never "no
// profiles": callers must be able to tell the two apart.
type Client interface {
	GetAllSearchProfiles(ctx context.Context) ([]models.CompanySearchProfile, error)
}

type directoryClient struct {
	client *http.Client
	logger *zap.Logger
	config *config.Config
	cache  cache.Cache
}

// NewClient builds a read-through directory client. The cache is injected so
// deployments can choose the in-process backend or a shared redis one.
func NewClient(logger *zap.Logger, cfg *config.Config, profileCache cache.Cache) Client {
	return &directoryClient{
		client: &http.Client{
			Timeout: cfg.DirectoryTimeout,
		},
		logger: logger,
		config: cfg,
		cache:  profileCache,
	}
}

func (c *directoryClient) GetAllSearchProfiles(ctx context.Context) ([]models.CompanySearchProfile, error) {
	ctx, span := tracer.Start(ctx, "GetAllSearchProfiles")
	defer span.End()

	var cached models.ProfileList
	err := c.cache.Get(ctx, profilesCacheKey, &cached)
	if err == nil {
		span.SetAttributes(telemetry.String("cache.result", "hit"))
		c.logger.Debug("cache hit for search profiles", zap.Int("count", len(cached.Profiles)))
		return cached.Profiles, nil
	} else if err != cache.ErrNotFound {
		span.SetAttributes(telemetry.String("cache.result", "error"))
		span.RecordError(err)
		c.logger.Warn("cache error for search profiles", zap.Error(err))
	} else {
		span.SetAttributes(telemetry.String("cache.result", "miss"))
	}

	profiles, err := c.fetchSearchProfiles(ctx)
	if err != nil {
		span.RecordError(err)
		// Stale entries must never outlive a failed refresh.
		if cerr := c.cache.Delete(ctx, profilesCacheKey); cerr != nil {
			c.logger.Warn("failed to invalidate profiles cache", zap.Error(cerr))
		}
		return nil, err
	}

	if err := c.cache.Set(ctx, profilesCacheKey, models.ProfileList{Profiles: profiles}, c.config.DirectoryCacheTTL); err != nil {
		c.logger.Warn("failed to cache search profiles", zap.Error(err))
	}

	return profiles, nil
}

func (c *directoryClient) fetchSearchProfiles(ctx context.Context) ([]models.CompanySearchProfile, error) {
	url := fmt.Sprintf("%s/api/v1/search-profiles", c.config.DirectoryBaseURL)
	c.logger.Debug("cache miss, fetching search profiles", zap.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Internal("creating request", err)
	}
	if c.config.DirectoryToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.DirectoryToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("failed to reach directory service", zap.Error(err))
		return nil, errors.Unavailable("fetching search profiles", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("failed to close response body", zap.Error(cerr))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("unexpected status code from directory service",
			zap.Int("status_code", resp.StatusCode))
		return nil, errors.Unavailable(fmt.Sprintf("directory returned status %d", resp.StatusCode), nil)
	}

	var profiles []models.CompanySearchProfile
	if err := json.NewDecoder(resp.Body).Decode(&profiles); err != nil {
		c.logger.Error("failed to decode directory response", zap.Error(err))
		return nil, errors.Unavailable("decoding directory response", err)
	}

	c.logger.Debug("successfully fetched search profiles", zap.Int("count", len(profiles)))
	return profiles, nil
}
