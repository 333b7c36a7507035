package http

import (
	"net/http"

	"finance/internal/core"
	applog "finance/internal/log"
	"finance/internal/report"

	"github.com/go-chi/chi/v5"
)

type createCategoryRequest struct {
	Name string `json:"name"`
}

// currencyRequest takes either the ISO code or the display label.
type currencyRequest struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

type currencyResponse struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

func toCurrencyResponse(c core.Currency) currencyResponse {
	return currencyResponse{Code: string(c), Label: c.Label()}
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.tx.Categories(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err, applog.OpList)
		return
	}
	out := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategoryResponse(c))
	}
	NewJSONResponse().Body(out).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}
	c, err := s.tx.AddCategory(r.Context(), userID(r), sanitizeInput(req.Name))
	if err != nil {
		writeError(w, r, err, applog.OpCreate)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(toCategoryResponse(c)).Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, applog.OpDelete)
		return
	}
	if err := s.tx.DeleteCategory(r.Context(), userID(r), id); err != nil {
		writeError(w, r, err, applog.OpDelete)
		return
	}
	NoContent().Write(w)
}

func (s *Server) handleGetCurrency(w http.ResponseWriter, r *http.Request) {
	c, err := s.tx.Currency(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err, applog.OpRead)
		return
	}
	NewJSONResponse().Body(toCurrencyResponse(c)).Write(w)
}

func (s *Server) handleSetCurrency(w http.ResponseWriter, r *http.Request) {
	var req currencyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}
	value := req.Code
	if value == "" {
		value = req.Label
	}
	c, err := s.tx.SetCurrency(r.Context(), userID(r), sanitizeInput(value))
	if err != nil {
		writeError(w, r, err, applog.OpUpdate)
		return
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Currency saved", applog.FieldCurrency, string(c))
	NewJSONResponse().Body(toCurrencyResponse(c)).Write(w)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(report.Kinds()).Write(w)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	kind, err := report.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		NotFoundError(err.Error()).Write(w)
		return
	}
	rep, err := s.tx.Report(r.Context(), userID(r), kind)
	if err != nil {
		writeError(w, r, err, applog.OpReport)
		return
	}
	applog.FromContext(r.Context()).DebugContext(r.Context(), "Report built",
		applog.FieldComponent, applog.ComponentReport,
		applog.FieldReport, string(kind),
		"empty", rep.Empty)
	NewJSONResponse().Body(rep).Write(w)
}
