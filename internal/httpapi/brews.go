package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hammamikhairi/ottobrew/internal/domain"
)

type openBrewRequest struct {
	RecipeID string `json:"recipeId"`
}

func (s *Server) listBrews(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.brews.List())
}

func (s *Server) openBrew(w http.ResponseWriter, r *http.Request) {
	var req openBrewRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.RecipeID == "" {
		s.writeError(w, r, fmt.Errorf("%w: recipeId is required", domain.ErrInvalid))
		return
	}
	view, err := s.brews.Open(r.Context(), req.RecipeID, userFrom(r.Context()).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) getBrew(w http.ResponseWriter, r *http.Request) {
	view, err := s.brews.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) closeBrew(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.authorizeBrew(r, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.brews.Close(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) controlBrew(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.authorizeBrew(r, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.brews.Control(id, chi.URLParam(r, "action"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// authorizeBrew checks that the signed-in user may drive the brew.
func (s *Server) authorizeBrew(r *http.Request, id string) error {
	view, err := s.brews.Get(id)
	if err != nil {
		return err
	}
	return authorize(view.OwnerID, userFrom(r.Context()), "brew", id)
}

// brewEvents streams the brew's events as server-sent events. The first
// event is the current state.
func (s *Server) brewEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	id := chi.URLParam(r, "id")
	view, err := s.brews.Get(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	events, cancel, err := s.brews.Subscribe(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	s.log.Debug("sse: client subscribed to brew %s", id)
	if err := writeEvent(w, "state", view); err != nil {
		return
	}
	flusher.Flush()

	heartbeat := time.NewTicker(s.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			s.log.Debug("sse: client left brew %s", id)
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case ev, ok := <-events:
			if !ok {
				fmt.Fprint(w, "event: closed\ndata: {}\n\n")
				flusher.Flush()
				return
			}
			if err := writeEvent(w, ev.Type, ev); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}
