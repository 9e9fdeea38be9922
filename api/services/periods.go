package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/smart-review/smart-review-cli/models"
)

type ReviewPeriodService struct {
	API Client
}

// List returns the review periods, optionally restricted to one semester.
func (s *ReviewPeriodService) List(ctx context.Context, semesterID int) ([]models.ReviewPeriod, error) {
	path := "/review-periods"
	if semesterID > 0 {
		q := url.Values{}
		q.Set("semesterId", strconv.Itoa(semesterID))
		path += "?" + q.Encode()
	}

	env, err := s.API.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	periods := []models.ReviewPeriod{}
	if !env.HasData() && env.IsSuccess {
		return periods, nil
	}
	if err := decodeData(env, &periods); err != nil {
		return nil, err
	}
	return periods, nil
}

type ReviewSessionService struct {
	API Client
}

// Scheduled returns the committed sessions of a review period.
func (s *ReviewSessionService) Scheduled(ctx context.Context, periodID int) ([]models.ReviewSession, error) {
	env, err := s.API.Do(ctx, http.MethodGet, fmt.Sprintf("/review-sessions/scheduled/%d", periodID), nil)
	if err != nil {
		return nil, err
	}

	sessions := []models.ReviewSession{}
	if !env.HasData() && env.IsSuccess {
		return sessions, nil
	}
	if err := decodeData(env, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}
