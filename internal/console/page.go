package console

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/evmarket/analytics-console/internal/download"
	"github.com/evmarket/analytics-console/internal/model"
	"github.com/evmarket/analytics-console/internal/session"
	"github.com/evmarket/analytics-console/internal/transport"
	"github.com/evmarket/analytics-console/internal/view"
)

const sessionCookie = "analytics_console_session"

// page returns the caller's provider page, creating and mounting a new
// session when the cookie is missing or stale.
func (s *Server) page(w http.ResponseWriter, r *http.Request) (*view.ProviderPage, bool) {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}

	sess, created, err := s.sessions.GetOrCreate(id)
	if errors.Is(err, session.ErrLimitReached) {
		writeError(w, http.StatusServiceUnavailable, "too many console sessions, try again later")
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}

	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			Secure:   s.config().Console.TLSEnabled(),
			SameSite: http.SameSiteLaxMode,
		})
		// Panel failures are part of the page state.
		sess.Page.Mount(r.Context())
	}
	return sess.Page, true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

func confirmed(r *http.Request) view.Confirmed {
	ok, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	return view.Confirmed(ok)
}

func writeConfirmRequired(w http.ResponseWriter) {
	writeError(w, http.StatusBadRequest, "confirmation required: repeat with confirm=true")
}

// --- Page ---

func (s *Server) pageHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := s.page(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p.View())
}

// --- Insights ---

func (s *Server) insightsHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := s.page(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p.InsightsView())
}

func (s *Server) refreshInsights(w http.ResponseWriter, r *http.Request) {
	p, ok := s.page(w, r)
	if !ok {
		return
	}
	p.RefreshInsights(r.Context())
	writeJSON(w, http.StatusOK, p.InsightsView())
}

func (s *Server) deactivateInsight(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, ok := s.page(w, r)
	if !ok {
		return
	}

	sent, err := p.Deactivate(r.Context(), id, confirmed(r))
	if err != nil {
		writeFailure(w, err, p.View().Notice)
		return
	}
	if !sent {
		writeConfirmRequired(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "deactivated", "insight": id})
}

// --- Reports ---

func (s *Server) listReports(w http.ResponseWriter, r *http.Request) {
	p, ok := s.page(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p.Reports().View())
}

func (s *Server) createReport(w http.ResponseWriter, r *http.Request) {
	var fields view.ReportFields
	if !decodeBody(w, r, &fields) {
		return
	}
	if fields.ReportType == "" {
		fields.ReportType = string(model.ReportBatteryHealth)
	}
	p, ok := s.page(w, r)
	if !ok {
		return
	}

	form := p.ReportForm()
	form.Fill(fields)
	report, err := form.Submit(r.Context())
	if err != nil {
		writeFailure(w, err, form.View().Error)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, ok := s.page(w, r)
	if !ok {
		return
	}

	list := p.Reports()
	err := list.Select(r.Context(), id)
	d := list.View().Detail
	list.CloseDetail()
	switch {
	case err == nil && d != nil && d.Found:
		writeJSON(w, http.StatusOK, d.Record)
	case err == nil || transport.IsNotFound(err):
		writeError(w, http.StatusNotFound, "report not found")
	default:
		writeFailure(w, err, d.Error)
	}
}

func (s *Server) deleteReport(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, ok := s.page(w, r)
	if !ok {
		return
	}

	sent, err := p.Reports().Delete(r.Context(), id, confirmed(r))
	if err != nil {
		writeFailure(w, err, "")
		return
	}
	if !sent {
		writeConfirmRequired(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "deleted", "report": id})
}

func (s *Server) exportReport(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	format := model.ExportFormat(mux.Vars(r)["format"])
	if !format.Valid() {
		writeError(w, http.StatusBadRequest, "format must be pdf, excel or csv")
		return
	}
	p, ok := s.page(w, r)
	if !ok {
		return
	}

	exp, err := p.Reports().Export(r.Context(), id, format)
	if err != nil {
		writeFailure(w, err, "")
		return
	}

	w.Header().Set("Content-Type", download.ContentType(format))
	w.Header().Set("Content-Disposition", `attachment; filename="`+exp.Name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(exp.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(exp.Data)
}

// --- Predictions ---

func (s *Server) listPredictions(w http.ResponseWriter, r *http.Request) {
	p, ok := s.page(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p.Predictions().View())
}

func (s *Server) createPrediction(w http.ResponseWriter, r *http.Request) {
	var fields view.PredictionFields
	if !decodeBody(w, r, &fields) {
		return
	}
	if fields.PredictionType == "" {
		fields.PredictionType = string(model.PredictionBatteryDegradation)
	}
	p, ok := s.page(w, r)
	if !ok {
		return
	}

	form := p.PredictionForm()
	form.Fill(fields)
	prediction, err := form.Submit(r.Context())
	if err != nil {
		writeFailure(w, err, form.View().Error)
		return
	}
	writeJSON(w, http.StatusCreated, prediction)
}

func (s *Server) getPrediction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, ok := s.page(w, r)
	if !ok {
		return
	}

	list := p.Predictions()
	err := list.Select(r.Context(), id)
	v := list.View()
	list.CloseDetail()
	switch {
	case err == nil && v.Detail != nil && v.Detail.Found:
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"prediction": v.Detail.Record,
			"result":     v.Result,
		})
	case err == nil || transport.IsNotFound(err):
		writeError(w, http.StatusNotFound, "prediction not found")
	default:
		writeFailure(w, err, v.Detail.Error)
	}
}
