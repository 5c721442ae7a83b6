package cache

import (
	"context"
	"time"

	"github.com/ohbot666/connected-montreal-ai/internal/airtable"
	"github.com/ohbot666/connected-montreal-ai/internal/pkg/logger"
	"github.com/ohbot666/connected-montreal-ai/internal/posthog"
)

// TrafficSource produces the 7-day traffic aggregate. A non-nil error
// marks the snapshot as degraded, not absent.
type TrafficSource interface {
	Snapshot(ctx context.Context) (posthog.TrafficSnapshot, error)
}

// PipelineSource produces the CRM pipeline aggregate. A non-nil error
// marks the snapshot as degraded, not absent.
type PipelineSource interface {
	Snapshot(ctx context.Context) (airtable.PipelineSnapshot, error)
}

// Service serves live data through the cache: a fresh cached payload
// short-circuits the fetchers entirely; a miss fetches both sources,
// stores the result, and returns it.
type Service struct {
	store    Store
	traffic  TrafficSource
	pipeline PipelineSource
}

// NewService creates a live-data service over the given store and
// fetchers.
func NewService(store Store, traffic TrafficSource, pipeline PipelineSource) *Service {
	return &Service{store: store, traffic: traffic, pipeline: pipeline}
}

// LiveData returns the cached payload when fresh, otherwise fetches
// both sources. Fetchers degrade internally, so a payload is always
// returned; fetch errors ride along in the payload's error fields.
func (s *Service) LiveData(ctx context.Context) LiveData {
	if data, ok := s.store.Get(ctx); ok {
		return data
	}

	traffic, trafficErr := s.traffic.Snapshot(ctx)
	pipeline, pipelineErr := s.pipeline.Snapshot(ctx)

	data := LiveData{
		Traffic:   traffic,
		Pipeline:  pipeline,
		FetchedAt: time.Now().UTC(),
	}
	if trafficErr != nil {
		data.TrafficError = trafficErr.Error()
	}
	if pipelineErr != nil {
		data.PipelineError = pipelineErr.Error()
	}
	s.store.Put(ctx, data)
	logger.Info("live data refetched",
		"pageviews_7d", data.Traffic.TotalPageviews7d,
		"total_leads", data.Pipeline.TotalLeads)
	return data
}

// Refresh invalidates the cache and refetches immediately.
func (s *Service) Refresh(ctx context.Context) LiveData {
	s.store.Invalidate(ctx)
	return s.LiveData(ctx)
}
