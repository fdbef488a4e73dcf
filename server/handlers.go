package server

import (
	"context"
	"net/http"

	"github.com/rushteam/big5rec/bfi"
	"github.com/rushteam/big5rec/core"
	"github.com/rushteam/big5rec/engine"
	"github.com/rushteam/big5rec/pkg/metrics"
)

type personalityRequest struct {
	// Personality 支持全称与三字母 key：{"openness": 4.2} 或 {"ope": 4.2}
	Personality map[string]any `json:"personality" validate:"required,min=1"`
	Limit       int            `json:"limit" validate:"gte=0,lte=100"`
}

type similarRequest struct {
	Selected []string `json:"selected" validate:"required,min=1,max=100,dive,required"`
	Limit    int      `json:"limit" validate:"gte=0,lte=100"`
}

type neighborsRequest struct {
	Personality map[string]any `json:"personality" validate:"required,min=1"`
	K           int            `json:"k" validate:"gte=0,lte=100"`
}

type scoreRequest struct {
	// Answers 题号 -> 1..5
	Answers map[int]int `json:"answers" validate:"required,min=1"`
	// Recommend 为 true 时顺带返回推荐
	Recommend bool `json:"recommend"`
	Limit     int  `json:"limit" validate:"gte=0,lte=100"`
}

type scoreResponse struct {
	Personality     *core.PersonalityVector `json:"personality,omitempty"`
	Traits          []bfi.TraitReading      `json:"traits,omitempty"`
	Reason          engine.Reason           `json:"reason"`
	Recommendations *engine.Result          `json:"recommendations,omitempty"`
}

func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.settings.RequestTimeout > 0 {
		return context.WithTimeout(r.Context(), s.settings.RequestTimeout)
	}
	return context.WithCancel(r.Context())
}

// invalidVector 把向量解析错误转换为领域结果（200 + reason）。
func invalidVector(endpoint string, err error) engine.Result {
	reason := engine.ReasonInvalidInput
	if core.IsDegenerateVector(err) {
		reason = engine.ReasonDegenerateVector
	}
	metrics.RequestsTotal.WithLabelValues(endpoint, string(reason)).Inc()
	return engine.Result{Items: []engine.Recommendation{}, Reason: reason}
}

func (s *Server) handleRecommendPersonality(w http.ResponseWriter, r *http.Request) {
	var req personalityRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	v, err := core.PersonalityFromMap(req.Personality)
	if err != nil {
		respondJSON(w, http.StatusOK, invalidVector(engine.EndpointPersonality, err))
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()
	respondJSON(w, http.StatusOK, s.engine.RecommendByPersonality(ctx, v, req.Limit))
}

func (s *Server) handleRecommendSimilar(w http.ResponseWriter, r *http.Request) {
	var req similarRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()
	respondJSON(w, http.StatusOK, s.engine.RecommendBySelection(ctx, req.Selected, req.Limit))
}

func (s *Server) handleNeighbors(w http.ResponseWriter, r *http.Request) {
	var req neighborsRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	v, err := core.PersonalityFromMap(req.Personality)
	if err != nil {
		respondJSON(w, http.StatusOK, invalidVector(engine.EndpointNeighbors, err))
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()
	respondJSON(w, http.StatusOK, s.engine.Neighbors(ctx, v, req.K))
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	v, err := bfi.Score(req.Answers)
	if err != nil {
		respondJSON(w, http.StatusOK, scoreResponse{Reason: engine.ReasonInvalidInput})
		return
	}
	resp := scoreResponse{Personality: &v, Traits: bfi.Interpret(v), Reason: engine.ReasonOK}
	if req.Recommend {
		ctx, cancel := s.requestContext(r)
		defer cancel()
		res := s.engine.RecommendByPersonality(ctx, v, req.Limit)
		resp.Recommendations = &res
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleQuestions(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"questions": bfi.Questions(),
		"scale":     map[string]int{"min": bfi.MinAnswer, "max": bfi.MaxAnswer},
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	data := s.engine.Data()
	body := map[string]any{
		"status":  "ok",
		"songs":   data.Songs.Len(),
		"users":   data.Users.Len(),
		"matrix":  data.Matrix != nil,
		"catalog": data.Catalog.Len(),
	}
	if err := s.engine.Ping(r.Context()); err != nil {
		body["status"] = "degraded"
		body["cache"] = err.Error()
		respondJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	respondJSON(w, http.StatusOK, body)
}
