package console

import (
	"net/http"
	"strconv"
	"time"

	"github.com/evmarket/analytics-console/internal/auth"
	"github.com/evmarket/analytics-console/internal/fetch"
	"github.com/evmarket/analytics-console/internal/hooks"
	"github.com/evmarket/analytics-console/internal/model"
)

// serveQuery runs q once and answers with its payload or its normalized error.
func serveQuery[T any](w http.ResponseWriter, r *http.Request, q *fetch.Query[T]) {
	if err := q.Refetch(r.Context()); err != nil {
		writeFailure(w, err, q.Err())
		return
	}
	writeJSON(w, http.StatusOK, q.Data())
}

func queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return n, true
}

// --- Insights ---

func (s *Server) trendingInsights(w http.ResponseWriter, r *http.Request) {
	var p model.TrendingParams
	var ok bool
	if p.Days, ok = queryInt(w, r, "days"); !ok {
		return
	}
	if p.Page, ok = queryInt(w, r, "page"); !ok {
		return
	}
	if p.Size, ok = queryInt(w, r, "size"); !ok {
		return
	}

	q := s.hooks().TrendingInsights(p)
	if err := q.Refetch(r.Context()); err != nil {
		writeFailure(w, err, q.Err())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"content":    q.Data(),
		"totalPages": q.TotalPages(),
	})
}

// --- Reports ---

func (s *Server) compareReports(w http.ResponseWriter, r *http.Request) {
	var req model.CompareRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.ReportIDs) < 2 {
		writeError(w, http.StatusBadRequest, "at least two report ids are required")
		return
	}

	m := s.hooks().CompareReports()
	out, err := m.Mutate(r.Context(), req.ReportIDs)
	if err != nil {
		writeFailure(w, err, m.Err())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// --- Schedules ---

func (s *Server) listSchedules(w http.ResponseWriter, r *http.Request) {
	serveQuery(w, r, s.hooks().Schedules().List)
}

func (s *Server) createSchedule(w http.ResponseWriter, r *http.Request) {
	var req model.ScheduleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" || req.DatasetID <= 0 || req.Frequency == "" {
		writeError(w, http.StatusBadRequest, "name, datasetId and frequency are required")
		return
	}

	m := s.hooks().Schedules()
	out, err := m.Create(r.Context(), req)
	if err != nil {
		writeFailure(w, err, m.Err())
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) updateSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req model.ScheduleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	m := s.hooks().Schedules()
	out, err := m.Update(r.Context(), id, req)
	if err != nil {
		writeFailure(w, err, m.Err())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) toggleSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	m := s.hooks().Schedules()
	out, err := m.Toggle(r.Context(), id)
	if err != nil {
		writeFailure(w, err, m.Err())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if !confirmed(r) {
		writeConfirmRequired(w)
		return
	}

	m := s.hooks().Schedules()
	if err := m.Delete(r.Context(), id); err != nil {
		writeFailure(w, err, m.Err())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "deleted", "schedule": id})
}

// --- Data quality ---

func (s *Server) lowQuality(w http.ResponseWriter, r *http.Request) {
	var threshold float64
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > 100 {
			writeError(w, http.StatusBadRequest, "threshold must be a number within [0, 100]")
			return
		}
		threshold = v
	}
	serveQuery(w, r, s.hooks().LowQuality(threshold))
}

func (s *Server) latestQuality(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "datasetId")
	if !ok {
		return
	}
	serveQuery(w, r, s.hooks().LatestQuality(id))
}

func (s *Server) assessQuality(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "datasetId")
	if !ok {
		return
	}
	var in model.DatasetQualityMetrics
	if !decodeBody(w, r, &in) {
		return
	}

	m := s.hooks().AssessQuality()
	out, err := m.Mutate(r.Context(), hooks.QualityInput{DatasetID: id, Metrics: in})
	if err != nil {
		writeFailure(w, err, m.Err())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// --- Admin ---

func (s *Server) adminStats(w http.ResponseWriter, r *http.Request) {
	serveQuery(w, r, s.hooks().AdminStats())
}

func (s *Server) whoami(w http.ResponseWriter, r *http.Request) {
	token := s.tokens.Token()
	if token == "" {
		writeError(w, http.StatusNotFound, "no API token configured")
		return
	}
	id, err := auth.Inspect(token)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"identity": id,
		"admin":    id.IsAdmin(),
		"expired":  id.Expired(time.Now()),
	})
}
