package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tartampluch/go-manse/internal/config"
	"github.com/tartampluch/go-manse/internal/engine"
	"github.com/tartampluch/go-manse/internal/feedback"
	"github.com/tartampluch/go-manse/internal/i18n"
	"github.com/tartampluch/go-manse/internal/metrics"
	"github.com/tartampluch/go-manse/internal/printout"
)

// errorResponse is the JSON body of every API error.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// pillarsResponse adds localized labels to a result record.
type pillarsResponse struct {
	*engine.ResultRecord
	Lang         string `json:"lang"`
	ZodiacName   string `json:"zodiac_name"`
	CalendarName string `json:"calendar_name"`
	AgeLabel     string `json:"age_label"`
}

type regionResponse struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	Offset int    `json:"offset_minutes"`
}

type slotResponse struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type feedbackSubmitRequest struct {
	Text string `json:"text"`
}

type feedbackStatusRequest struct {
	Status string `json:"status"`
}

type feedbackSubmitResponse struct {
	Entry   feedback.Entry `json:"entry"`
	Message string         `json:"message"`
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}

// writeError writes the API error envelope.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// localizer picks the language from ?lang=, then Accept-Language.
func (s *Server) localizer(r *http.Request) *i18n.Localizer {
	if s.Translator == nil {
		return nil
	}
	return s.Translator.Localizer(r.URL.Query().Get(config.QueryLang), r.Header.Get(config.HeaderAcceptLang))
}

// writeResolveError maps a resolution error to its status and API code.
func writeResolveError(w http.ResponseWriter, loc *i18n.Localizer, err error) {
	msg := loc.Msg(engine.MessageKey(err))
	switch {
	case errors.Is(err, engine.ErrInvalidFormat):
		writeError(w, http.StatusBadRequest, config.CodeInvalidFormat, msg)
	case errors.Is(err, engine.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, config.CodeInvalidDate, msg)
	case errors.Is(err, engine.ErrInvalidTime):
		writeError(w, http.StatusBadRequest, config.CodeInvalidTime, msg)
	case errors.Is(err, engine.ErrInvalidOption):
		writeError(w, http.StatusBadRequest, config.CodeInvalidOption, msg)
	case errors.Is(err, engine.ErrNotFound):
		writeError(w, http.StatusNotFound, config.CodeNotFound, msg)
	default:
		slog.Error(config.MsgResolveFailed,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
		writeError(w, http.StatusInternalServerError, config.CodeInternal, msg)
	}
}

// outcomeOf maps a resolution error to its metrics outcome label.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, engine.ErrInvalidFormat):
		return metrics.OutcomeInvalidFormat
	case errors.Is(err, engine.ErrInvalidDate):
		return metrics.OutcomeInvalidDate
	case errors.Is(err, engine.ErrInvalidTime):
		return metrics.OutcomeInvalidTime
	case errors.Is(err, engine.ErrInvalidOption):
		return metrics.OutcomeInvalidOption
	case errors.Is(err, engine.ErrNotFound):
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomeError
	}
}

// queryInput reads the birth form fields from the URL query.
func queryInput(r *http.Request) engine.QueryInput {
	v := r.URL.Query()
	return engine.QueryInput{
		Date:       v.Get(config.QueryDate),
		Time:       v.Get(config.QueryTime),
		Slot:       v.Get(config.QuerySlot),
		Region:     v.Get(config.QueryRegion),
		Calendar:   v.Get(config.QueryCalendar),
		BloodType:  v.Get(config.QueryBlood),
		RhNegative: v.Get(config.QueryRh) == config.QueryValueRhNeg,
	}
}

// resolve runs the resolver for the request query and records the outcome.
func (s *Server) resolve(r *http.Request) (*engine.ResultRecord, error) {
	start := time.Now()
	q, err := queryInput(r).Query()
	if err != nil {
		s.Metrics.RecordResolve(outcomeOf(err), false, time.Since(start))
		return nil, err
	}

	rec, err := s.Resolver.Resolve(r.Context(), q)
	s.Metrics.RecordResolve(outcomeOf(err), rec != nil && rec.Pillars.Hour != nil, time.Since(start))
	return rec, err
}

// handlePillars serves the resolved record with localized labels.
func (s *Server) handlePillars(w http.ResponseWriter, r *http.Request) {
	loc := s.localizer(r)

	rec, err := s.resolve(r)
	if err != nil {
		writeResolveError(w, loc, err)
		return
	}

	resp := pillarsResponse{ResultRecord: rec}
	if loc != nil {
		resp.Lang = loc.Lang()
		resp.ZodiacName = loc.Zodiac(rec.Zodiac)
		resp.CalendarName = loc.Calendar(rec.Calendar)
		resp.AgeLabel = loc.Age(rec.Age)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRegions lists the birth regions and their offsets.
func (s *Server) handleRegions(w http.ResponseWriter, _ *http.Request) {
	all := engine.Regions()
	out := make([]regionResponse, 0, len(all))
	for _, reg := range all {
		out = append(out, regionResponse{Key: reg.Key(), Name: reg.Name(), Offset: reg.Offset()})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleSlots lists the preset two-hour slots.
func (s *Server) handleSlots(w http.ResponseWriter, _ *http.Request) {
	all := engine.Slots()
	out := make([]slotResponse, 0, len(all))
	for _, slot := range all {
		out = append(out, slotResponse{Key: slot.Key(), Label: slot.Label()})
	}
	writeJSON(w, http.StatusOK, out)
}

// handlePrint renders the print page for the queried birth.
func (s *Server) handlePrint(w http.ResponseWriter, r *http.Request) {
	rec, err := s.resolve(r)
	if err != nil {
		writeResolveError(w, s.localizer(r), err)
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeHTML)
	if err := printout.Render(w, rec, s.Layout()); err != nil {
		slog.Error(config.ErrPrintRender,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}

// handleCalendarQuery builds a feed for the single birth named in the query.
func (s *Server) handleCalendarQuery(w http.ResponseWriter, r *http.Request) {
	loc := s.localizer(r)

	rec, err := s.resolve(r)
	if err != nil {
		writeResolveError(w, loc, err)
		return
	}

	name := r.URL.Query().Get(config.QueryName)
	if name == "" {
		name = config.FallbackName
	}

	builder := *s.Calendar
	if loc != nil {
		builder.FormatSummary = loc.EventSummary
	}

	data, count, err := builder.Build(r.Context(), []engine.LunarBirthday{engine.BirthdayFromRecord(name, rec)})
	if err != nil {
		slog.Error(config.ErrICalEncode,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
		writeError(w, http.StatusInternalServerError, config.CodeInternal, loc.Msg(config.TKeyErrInternal))
		return
	}
	s.Metrics.RecordCalendarEvents(count)

	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	if r.Method == http.MethodGet {
		if _, err := w.Write(data); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}

// handleFeedbackList returns every stored feedback entry.
func (s *Server) handleFeedbackList(w http.ResponseWriter, r *http.Request) {
	entries, err := s.Feedback.List(r.Context())
	if err != nil {
		slog.Error(config.ErrFeedbackRead,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
		writeError(w, http.StatusInternalServerError, config.CodeInternal, s.localizer(r).Msg(config.TKeyErrInternal))
		return
	}
	if entries == nil {
		entries = []feedback.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleFeedbackSubmit stores a new feedback entry.
func (s *Server) handleFeedbackSubmit(w http.ResponseWriter, r *http.Request) {
	loc := s.localizer(r)

	var req feedbackSubmitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, config.MaxRequestBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, config.CodeInvalidInput, err.Error())
		return
	}

	entry, err := s.Feedback.Submit(r.Context(), req.Text)
	switch {
	case errors.Is(err, feedback.ErrEmptyFeedback):
		writeError(w, http.StatusBadRequest, config.CodeInvalidInput, loc.Msg(config.TKeyFeedbackEmpty))
		return
	case err != nil:
		slog.Error(config.ErrFeedbackWrite,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
		writeError(w, http.StatusInternalServerError, config.CodeInternal, loc.Msg(config.TKeyErrInternal))
		return
	}

	s.Metrics.RecordFeedback()
	writeJSON(w, http.StatusCreated, feedbackSubmitResponse{Entry: entry, Message: loc.Msg(config.TKeyFeedbackThanks)})
}

// handleFeedbackStatus changes the status of one feedback entry.
func (s *Server) handleFeedbackStatus(w http.ResponseWriter, r *http.Request) {
	loc := s.localizer(r)

	id, err := uuid.Parse(chi.URLParam(r, config.URLParamID))
	if err != nil {
		writeError(w, http.StatusBadRequest, config.CodeInvalidInput, err.Error())
		return
	}

	var req feedbackStatusRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, config.MaxRequestBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, config.CodeInvalidInput, err.Error())
		return
	}
	status, err := feedback.ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, config.CodeInvalidInput, err.Error())
		return
	}

	err = s.Feedback.SetStatus(r.Context(), id, status)
	switch {
	case errors.Is(err, feedback.ErrNotFound):
		writeError(w, http.StatusNotFound, config.CodeNotFound, loc.Msg(config.TKeyFeedbackMiss))
		return
	case err != nil:
		slog.Error(config.ErrFeedbackWrite,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
		writeError(w, http.StatusInternalServerError, config.CodeInternal, loc.Msg(config.TKeyErrInternal))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
