// Package handlers wires HTTP routing and API handlers.
//
// The API is a thin adapter over the catalog session: POSTs map UI events
// onto the session and return a fresh snapshot, GET /api/state is what the
// frontend polls while a load is in flight.
package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/handsomefox/mflix-browser/internal/catalog"
)

type Handler struct {
	session *catalog.Session
}

type Config struct {
	Session *catalog.Session
}

func New(cfg *Config) (*Handler, error) {
	if cfg.Session == nil {
		return nil, errors.New("session is required")
	}
	return &Handler{session: cfg.Session}, nil
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", Adapt(h.getHealth))
		r.Method(http.MethodGet, "/state", Adapt(h.getState))

		r.Method(http.MethodPost, "/filters", Adapt(h.postFilters))
		r.Method(http.MethodPost, "/page-size", Adapt(h.postPageSize))
		r.Method(http.MethodPost, "/page/next", Adapt(h.postNextPage))
		r.Method(http.MethodPost, "/page/prev", Adapt(h.postPrevPage))
		r.Method(http.MethodPost, "/reload", Adapt(h.postReload))
	})
}

// StateResponse is the full session snapshot plus the derived pagination
// fields the frontend renders directly.
type StateResponse struct {
	Filters    catalog.FilterState `json:"filters"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
	Total      int                 `json:"total"`
	TotalPages int                 `json:"total_pages"`
	HasPrev    bool                `json:"has_prev"`
	HasNext    bool                `json:"has_next"`
	PageLabel  string              `json:"page_label"`
	Genres     []string            `json:"genres"`
	Movies     []catalog.Movie     `json:"movies"`
	Loading    bool                `json:"loading"`
	Error      string              `json:"error,omitempty"`
}

type FiltersRequest struct {
	Q       string `json:"q"`
	Genre   string `json:"genre"`
	MinYear string `json:"min_year"`
	MaxYear string `json:"max_year"`
}

type PageSizeRequest struct {
	PageSize string `json:"page_size"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

func toStateResponse(st catalog.State) *StateResponse {
	movies := st.Movies
	if movies == nil {
		movies = []catalog.Movie{}
	}
	return &StateResponse{
		Filters:    st.Filters,
		Page:       st.Page,
		PageSize:   st.PageSize,
		Total:      st.Total,
		TotalPages: st.TotalPages(),
		HasPrev:    st.HasPrev(),
		HasNext:    st.HasNext(),
		PageLabel:  st.PageLabel(),
		Genres:     st.Genres,
		Movies:     movies,
		Loading:    st.Loading,
		Error:      st.Error,
	}
}

func (h *Handler) getHealth(w http.ResponseWriter, _ *http.Request) error {
	writeJSON(w, http.StatusOK, &HealthResponse{Status: "ok"})
	return nil
}

func (h *Handler) getState(w http.ResponseWriter, _ *http.Request) error {
	writeJSON(w, http.StatusOK, toStateResponse(h.session.Snapshot()))
	return nil
}

func (h *Handler) postFilters(w http.ResponseWriter, r *http.Request) error {
	var req FiltersRequest
	if err := decodeJSON(r, &req); err != nil {
		return badRequest("bad request")
	}

	h.session.SetQuery(req.Q)
	h.session.SetGenre(req.Genre)
	h.session.SetMinYear(req.MinYear)
	h.session.SetMaxYear(req.MaxYear)
	h.session.ApplyFilters()

	writeJSON(w, http.StatusOK, toStateResponse(h.session.Snapshot()))
	return nil
}

func (h *Handler) postPageSize(w http.ResponseWriter, r *http.Request) error {
	var req PageSizeRequest
	if err := decodeJSON(r, &req); err != nil {
		return badRequest("bad request")
	}

	h.session.SetPageSize(req.PageSize)

	writeJSON(w, http.StatusOK, toStateResponse(h.session.Snapshot()))
	return nil
}

func (h *Handler) postNextPage(w http.ResponseWriter, _ *http.Request) error {
	h.session.NextPage()
	writeJSON(w, http.StatusOK, toStateResponse(h.session.Snapshot()))
	return nil
}

func (h *Handler) postPrevPage(w http.ResponseWriter, _ *http.Request) error {
	h.session.PrevPage()
	writeJSON(w, http.StatusOK, toStateResponse(h.session.Snapshot()))
	return nil
}

func (h *Handler) postReload(w http.ResponseWriter, _ *http.Request) error {
	h.session.Reload()
	writeJSON(w, http.StatusOK, toStateResponse(h.session.Snapshot()))
	return nil
}
