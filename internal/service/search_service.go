package service

import (
	"context"
	"fmt"

	"research-assistant-cli/internal/dto"
	"research-assistant-cli/internal/pkg/logger"
	"research-assistant-cli/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ISearchService is the relevance test harness: it exercises the same
// retrieval path a chat turn uses, without ingesting or persisting anything.
type ISearchService interface {
	Search(ctx context.Context, query, refSetFilter string, topK int, minScore float64) (*dto.TestSearchResponse, error)
}

type searchAPI interface {
	TestSearch(ctx context.Context, req *dto.TestSearchRequest) (*dto.TestSearchResponse, error)
}

type searchService struct {
	api      searchAPI
	repo     repository.ICollectionRepository
	validate *validator.Validate
	logger   logger.ILogger
}

func NewSearchService(api searchAPI, repo repository.ICollectionRepository, validate *validator.Validate, sysLogger logger.ILogger) ISearchService {
	return &searchService{
		api:      api,
		repo:     repo,
		validate: validate,
		logger:   sysLogger,
	}
}

// Search sends topK and minScore as request parameters; filtering happens
// server-side so the returned counts are authoritative. Results come back in
// rank order and are handed through untouched: no re-sorting, no score
// bucketing client-side.
func (s *searchService) Search(ctx context.Context, query, refSetFilter string, topK int, minScore float64) (*dto.TestSearchResponse, error) {
	req := &dto.TestSearchRequest{
		Query:    query,
		RefSetId: refSetFilter,
		TopK:     topK,
		MinScore: minScore,
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	if refSetFilter != dto.RefSetFilterAll {
		id, err := uuid.Parse(refSetFilter)
		if err != nil {
			return nil, fmt.Errorf("invalid reference set filter %q", refSetFilter)
		}
		snap, loaded := s.repo.Current()
		if !loaded {
			return nil, fmt.Errorf("collections not loaded")
		}
		if _, ok := snap.ReferenceSet(id); !ok {
			return nil, fmt.Errorf("unknown reference set %s", refSetFilter)
		}
	}

	res, err := s.api.TestSearch(ctx, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("search", "test search completed", map[string]interface{}{
		"query":            query,
		"results_found":    res.ResultsFound,
		"total_candidates": res.TotalCandidates,
	})
	return res, nil
}
