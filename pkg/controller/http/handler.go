package http

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/kujo/pkg/domain/interfaces"
	"github.com/secmon-lab/kujo/pkg/domain/model"
	"github.com/secmon-lab/kujo/pkg/service/llm"
	"github.com/secmon-lab/kujo/pkg/utils/apperr"
)

// maxBodySize limits JSON request bodies
const maxBodySize = 1 << 20

// Query parameters accepted by the dashboard endpoints
const (
	paramFrom              = "from"
	paramTo                = "to"
	paramCategory          = "category"
	paramMunicipality      = "municipality"
	paramSeverity          = "severity"
	paramAllCategories     = "all_categories"
	paramAllMunicipalities = "all_municipalities"
	paramAllSeverities     = "all_severities"
)

var filterParams = []string{
	paramFrom, paramTo, paramCategory, paramMunicipality, paramSeverity,
	paramAllCategories, paramAllMunicipalities, paramAllSeverities,
}

// Handler serves the JSON API of the dashboard
type Handler struct {
	dashboard interfaces.Dashboard
}

// NewHandler creates a new API handler
func NewHandler(dashboard interfaces.Dashboard) *Handler {
	return &Handler{dashboard: dashboard}
}

// HandleOptions returns the selectable filter values
func (h *Handler) HandleOptions(w http.ResponseWriter, r *http.Request) {
	options, err := h.dashboard.Options(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, options)
}

// HandleDashboard returns the filter, summary and rows
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := h.dashboard.Query(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

// HandleListComplaints returns only the filtered rows
func (h *Handler) HandleListComplaints(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := h.dashboard.Query(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"complaints": view.Rows,
		"total":      len(view.Rows),
	})
}

// HandleSubmitComplaint stores a complaint sent by the form
func (h *Handler) HandleSubmitComplaint(w http.ResponseWriter, r *http.Request) {
	var req model.ComplaintRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	complaint, err := h.dashboard.Submit(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, complaint)
}

// HandleAssistant answers a question about the filtered rows
func (h *Handler) HandleAssistant(w http.ResponseWriter, r *http.Request) {
	var question model.Question
	if err := decodeJSON(w, r, &question); err != nil {
		writeError(w, r, err)
		return
	}

	answer, err := h.dashboard.Ask(r.Context(), question)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, answer)
}

// HandleReload drops the cached table
func (h *Handler) HandleReload(w http.ResponseWriter, r *http.Request) {
	h.dashboard.Reload(r.Context())
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "reloaded"})
}

// HandleAPINotFound keeps unknown API paths from falling through to the page
func (h *Handler) HandleAPINotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, goerr.New("no such endpoint",
		goerr.V("path", r.URL.Path),
		goerr.T(model.ErrTagNotFound)))
}

// ParseFilter builds a filter from query parameters. Without any filter parameter it returns nil,
// which selects the default filter. category, municipality and severity may be repeated or
// comma separated.
func ParseFilter(query url.Values) (*model.Filter, error) {
	present := false
	for _, key := range filterParams {
		if _, ok := query[key]; ok {
			present = true
			break
		}
	}
	if !present {
		return nil, nil
	}

	from, err := model.ParseDate(query.Get(paramFrom))
	if err != nil {
		return nil, err
	}
	to, err := model.ParseDate(query.Get(paramTo))
	if err != nil {
		return nil, err
	}
	allCategories, err := parseBool(query, paramAllCategories)
	if err != nil {
		return nil, err
	}
	allMunicipalities, err := parseBool(query, paramAllMunicipalities)
	if err != nil {
		return nil, err
	}
	allSeverities, err := parseBool(query, paramAllSeverities)
	if err != nil {
		return nil, err
	}

	return &model.Filter{
		From:              from,
		To:                to,
		Categories:        splitValues(query[paramCategory]),
		AllCategories:     allCategories,
		Municipalities:    splitValues(query[paramMunicipality]),
		AllMunicipalities: allMunicipalities,
		Severities:        splitValues(query[paramSeverity]),
		AllSeverities:     allSeverities,
	}, nil
}

func parseBool(query url.Values, key string) (bool, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, goerr.Wrap(err, "invalid boolean parameter",
			goerr.V("param", key),
			goerr.V("value", v),
			goerr.T(model.ErrTagInvalidRequest))
	}
	return b, nil
}

func splitValues(values []string) []string {
	var result []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				result = append(result, part)
			}
		}
	}
	return result
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return goerr.Wrap(err, "invalid request body", goerr.T(model.ErrTagInvalidRequest))
	}
	return nil
}

// statusCode maps error tags to HTTP status codes
func statusCode(err error) int {
	switch {
	case goerr.HasTag(err, model.ErrTagInvalidRequest):
		return http.StatusBadRequest
	case goerr.HasTag(err, model.ErrTagNotFound):
		return http.StatusNotFound
	case goerr.HasTag(err, model.ErrTagLLMNotConfigured):
		return http.StatusServiceUnavailable
	case goerr.HasTag(err, model.ErrTagLLMFailure), goerr.HasTag(err, llm.ErrTagEmptyResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		ctxlog.From(r.Context()).Error("Failed to encode response", "error", err)
	}
}

// writeError writes an error response. Server-side failures are logged, their details are not sent.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusCode(err)

	message := http.StatusText(status)
	if status < http.StatusInternalServerError || status == http.StatusServiceUnavailable || status == http.StatusBadGateway {
		if goErr := goerr.Unwrap(err); goErr != nil {
			message = goErr.Error()
		} else {
			message = err.Error()
		}
	}

	if status >= http.StatusInternalServerError {
		apperr.Handle(r.Context(), err)
	} else {
		ctxlog.From(r.Context()).Debug("Request rejected", "status", status, "error", err)
	}

	writeJSON(w, r, status, map[string]string{
		"error": message,
	})
}
