package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/storage"
)

// repository is the storage surface shared by recipes, grinders and brewers.
type repository[T any] interface {
	List(ctx context.Context) ([]*T, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, item *T) error
	Update(ctx context.Context, item *T) error
	Delete(ctx context.Context, id string) error
}

type crud[T any, PT storage.Record[T]] struct {
	kind  string
	repo  repository[T]
	owner func(*T) *string
}

// mountCRUD registers GET/POST on / and GET/PUT/DELETE on /{id}. The list
// route is skipped when withList is false so callers can provide their own.
func mountCRUD[T any, PT storage.Record[T]](r chi.Router, s *Server, c crud[T, PT], withList bool) {
	if withList {
		r.Get("/", c.list(s))
	}
	r.With(s.requireUser).Post("/", c.create(s))
	r.Get("/{id}", c.get(s))
	r.With(s.requireUser).Put("/{id}", c.update(s))
	r.With(s.requireUser).Delete("/{id}", c.remove(s))
}

func (c crud[T, PT]) list(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := c.repo.List(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func (c crud[T, PT]) get(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := c.repo.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

func (c crud[T, PT]) create(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var item T
		if err := decode(r, &item); err != nil {
			s.writeError(w, r, err)
			return
		}
		PT(&item).Metadata().ID = ""
		if c.owner != nil {
			*c.owner(&item) = userFrom(r.Context()).ID
		}
		if err := c.repo.Create(r.Context(), &item); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, &item)
	}
}

func (c crud[T, PT]) update(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		owner, err := c.checkOwner(r, id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		var item T
		if err := decode(r, &item); err != nil {
			s.writeError(w, r, err)
			return
		}
		PT(&item).Metadata().ID = id
		if c.owner != nil {
			*c.owner(&item) = owner
		}
		if err := c.repo.Update(r.Context(), &item); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, &item)
	}
}

func (c crud[T, PT]) remove(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := c.checkOwner(r, chi.URLParam(r, "id")); err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := c.repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			s.writeError(w, r, err)
			return
		}
		s.log.Debug("http: deleted %s %s", c.kind, chi.URLParam(r, "id"))
		w.WriteHeader(http.StatusNoContent)
	}
}

// checkOwner loads the stored record and returns its owner, failing with
// ErrForbidden when it belongs to someone other than the signed-in user.
func (c crud[T, PT]) checkOwner(r *http.Request, id string) (string, error) {
	existing, err := c.repo.Get(r.Context(), id)
	if err != nil {
		return "", err
	}
	if c.owner == nil {
		return "", nil
	}
	owner := *c.owner(existing)
	if err := authorize(owner, userFrom(r.Context()), c.kind, id); err != nil {
		return "", err
	}
	return owner, nil
}

// authorize allows u to change a record owned by ownerID. Records without an
// owner, such as the built-in library, are shared.
func authorize(ownerID string, u *domain.User, kind, id string) error {
	if ownerID == "" || ownerID == u.ID {
		return nil
	}
	return fmt.Errorf("%s %s: %w", kind, id, domain.ErrForbidden)
}
