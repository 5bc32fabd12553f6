package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/gpt"
	"github.com/hammamikhairi/ottobrew/internal/metrics"
)

// listRecipes returns summaries, filtered by ?q= when given.
func (s *Server) listRecipes(w http.ResponseWriter, r *http.Request) {
	var (
		out []domain.RecipeSummary
		err error
	)
	if q := r.URL.Query().Get("q"); q != "" {
		out, err = s.recipes.Search(r.Context(), q)
	} else {
		out, err = s.recipes.Summaries(r.Context())
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if out == nil {
		out = []domain.RecipeSummary{}
	}
	writeJSON(w, http.StatusOK, out)
}

type generateRequest struct {
	domain.BrewParams
	BrewerID  string `json:"brewerId,omitempty"`
	GrinderID string `json:"grinderId,omitempty"`
	Save      bool   `json:"save,omitempty"`
}

// generateRecipe asks the AI collaborator for a recipe. The reply is only
// stored when save is set.
func (s *Server) generateRecipe(w http.ResponseWriter, r *http.Request) {
	if s.generator == nil {
		s.metrics.Generation(metrics.ResultDisabled, 0)
		s.writeError(w, r, domain.ErrGeneratorDisabled)
		return
	}

	var req generateRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx := r.Context()
	params := req.BrewParams

	if req.BrewerID != "" {
		b, err := s.gear.Brewers().Get(ctx, req.BrewerID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		params.BrewerName = b.Name
		if params.Method == "" {
			params.Method = b.Method
		}
	}
	if req.GrinderID != "" {
		g, err := s.gear.Grinders().Get(ctx, req.GrinderID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		params.GrinderName = g.Name
	}

	start := time.Now()
	rec, err := s.generator.Generate(ctx, params)
	switch {
	case err == nil:
		s.metrics.Generation(metrics.ResultOK, time.Since(start))
	case errors.Is(err, gpt.ErrInvalidGeneration):
		s.metrics.Generation(metrics.ResultInvalid, time.Since(start))
	default:
		s.metrics.Generation(metrics.ResultFailed, time.Since(start))
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rec.BrewerID = req.BrewerID
	rec.GrinderID = req.GrinderID
	if !req.Save {
		writeJSON(w, http.StatusOK, rec)
		return
	}

	rec.OwnerID = userFrom(ctx).ID
	if err := s.recipes.Create(ctx, rec); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}
