package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/gerrymanoim/exchange-calendars/internal/calendar"
	"github.com/gerrymanoim/exchange-calendars/internal/registry"
)

// CalendarHandlers handles calendar query HTTP endpoints.
type CalendarHandlers struct {
	registry *registry.Registry
	// start/end bound the index built to answer queries.
	start time.Time
	end   time.Time
	log   zerolog.Logger
}

// NewCalendarHandlers creates new calendar handlers. Queries are
// answered from indexes covering [start, end].
func NewCalendarHandlers(reg *registry.Registry, start, end time.Time, log zerolog.Logger) *CalendarHandlers {
	return &CalendarHandlers{
		registry: reg,
		start:    start,
		end:      end,
		log:      log.With().Str("component", "calendar_handlers").Logger(),
	}
}

// RegisterRoutes registers calendar routes
func (h *CalendarHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/calendars", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", h.HandleDescribe)
			r.Get("/sessions", h.HandleSessionsInRange)
			r.Get("/sessions/{date}", h.HandleSession)
			r.Get("/sessions/{date}/next", h.HandleNextSession)
			r.Get("/sessions/{date}/previous", h.HandlePreviousSession)
			r.Get("/is-open", h.HandleIsOpen)
			r.Get("/minute", h.HandleMinute)
		})
	})
}

type sessionPayload struct {
	Date    string `json:"date"`
	Open    string `json:"open"`
	Close   string `json:"close"`
	Special bool   `json:"special"`
}

func toPayload(s calendar.Session) sessionPayload {
	return sessionPayload{
		Date:    calendar.FormatDate(s.Date),
		Open:    s.Open.Format(time.RFC3339),
		Close:   s.Close.Format(time.RFC3339),
		Special: s.Special,
	}
}

// HandleList returns the registered calendar names and aliases
func (h *CalendarHandlers) HandleList(w http.ResponseWriter, r *http.Request) {
	writeData(w, h.log, map[string]interface{}{
		"calendars": h.registry.Names(),
		"aliases":   h.registry.Aliases(),
	})
}

// HandleDescribe returns summary information for one calendar
func (h *CalendarHandlers) HandleDescribe(w http.ResponseWriter, r *http.Request) {
	ix, ok := h.index(w, r)
	if !ok {
		return
	}

	data := map[string]interface{}{
		"name":     ix.Name(),
		"timezone": ix.Timezone().String(),
		"start":    calendar.FormatDate(ix.Start()),
		"end":      calendar.FormatDate(ix.End()),
		"sessions": ix.Len(),
	}
	if first, ok := ix.FirstSession(); ok {
		data["first_session"] = calendar.FormatDate(first.Date)
	}
	if last, ok := ix.LastSession(); ok {
		data["last_session"] = calendar.FormatDate(last.Date)
	}
	writeData(w, h.log, data)
}

// HandleSessionsInRange returns the sessions between the start and end
// query parameters, inclusive
func (h *CalendarHandlers) HandleSessionsInRange(w http.ResponseWriter, r *http.Request) {
	ix, ok := h.index(w, r)
	if !ok {
		return
	}

	from, to := ix.Start(), ix.End()
	if raw := r.URL.Query().Get("start"); raw != "" {
		var err error
		if from, err = calendar.ParseDate(raw); err != nil {
			writeError(w, h.log, http.StatusBadRequest, "bad_request", "start must be YYYY-MM-DD")
			return
		}
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		var err error
		if to, err = calendar.ParseDate(raw); err != nil {
			writeError(w, h.log, http.StatusBadRequest, "bad_request", "end must be YYYY-MM-DD")
			return
		}
	}

	sessions := ix.SessionsInRange(from, to)
	payload := make([]sessionPayload, len(sessions))
	for i, s := range sessions {
		payload[i] = toPayload(s)
	}
	writeData(w, h.log, map[string]interface{}{
		"sessions": payload,
		"count":    len(payload),
	})
}

// HandleSession returns the session for the date in the path
func (h *CalendarHandlers) HandleSession(w http.ResponseWriter, r *http.Request) {
	ix, ok := h.index(w, r)
	if !ok {
		return
	}
	d, ok := h.pathDate(w, r)
	if !ok {
		return
	}

	session, err := ix.SessionForParam(d, "date")
	if err != nil {
		h.writeQueryError(w, err)
		return
	}
	writeData(w, h.log, toPayload(session))
}

// HandleNextSession returns the first session strictly after the date
// in the path
func (h *CalendarHandlers) HandleNextSession(w http.ResponseWriter, r *http.Request) {
	ix, ok := h.index(w, r)
	if !ok {
		return
	}
	d, ok := h.pathDate(w, r)
	if !ok {
		return
	}

	session, err := ix.NextSession(d)
	if err != nil {
		h.writeQueryError(w, err)
		return
	}
	writeData(w, h.log, toPayload(session))
}

// HandlePreviousSession returns the last session strictly before the
// date in the path
func (h *CalendarHandlers) HandlePreviousSession(w http.ResponseWriter, r *http.Request) {
	ix, ok := h.index(w, r)
	if !ok {
		return
	}
	d, ok := h.pathDate(w, r)
	if !ok {
		return
	}

	session, err := ix.PreviousSession(d)
	if err != nil {
		h.writeQueryError(w, err)
		return
	}
	writeData(w, h.log, toPayload(session))
}

// HandleIsOpen reports whether the exchange is open at the given instant
func (h *CalendarHandlers) HandleIsOpen(w http.ResponseWriter, r *http.Request) {
	ix, ok := h.index(w, r)
	if !ok {
		return
	}
	at, ok := h.queryInstant(w, r)
	if !ok {
		return
	}

	writeData(w, h.log, map[string]interface{}{
		"at":   at.Format(time.RFC3339),
		"open": ix.IsOpenAt(at),
	})
}

// HandleMinute maps an instant onto the session that contains it
func (h *CalendarHandlers) HandleMinute(w http.ResponseWriter, r *http.Request) {
	ix, ok := h.index(w, r)
	if !ok {
		return
	}
	at, ok := h.queryInstant(w, r)
	if !ok {
		return
	}

	session, err := ix.MinuteToSession(at)
	if err != nil {
		h.writeQueryError(w, err)
		return
	}
	writeData(w, h.log, map[string]interface{}{
		"at":      at.Format(time.RFC3339),
		"session": toPayload(session),
	})
}

func (h *CalendarHandlers) index(w http.ResponseWriter, r *http.Request) (*calendar.SessionIndex, bool) {
	name := chi.URLParam(r, "name")
	ix, err := h.registry.Get(name, h.start, h.end)
	if err != nil {
		var unknown *calendar.UnknownCalendarError
		var cyclic *calendar.CyclicAliasError
		switch {
		case errors.As(err, &unknown):
			writeError(w, h.log, http.StatusNotFound, "unknown_calendar", err.Error())
		case errors.As(err, &cyclic):
			writeError(w, h.log, http.StatusConflict, "cyclic_alias", err.Error())
		default:
			h.log.Error().Err(err).Str("calendar", name).Msg("Failed to build calendar")
			writeError(w, h.log, http.StatusInternalServerError, "construction_error", err.Error())
		}
		return nil, false
	}
	return ix, true
}

func (h *CalendarHandlers) pathDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	d, err := calendar.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, h.log, http.StatusBadRequest, "bad_request", "date must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return d, true
}

func (h *CalendarHandlers) queryInstant(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("at")
	if raw == "" {
		return time.Now().UTC(), true
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		writeError(w, h.log, http.StatusBadRequest, "bad_request", "at must be RFC 3339")
		return time.Time{}, false
	}
	return at, true
}

// writeQueryError maps typed query failures onto structured payloads so
// clients can distinguish the cases without parsing message text.
func (h *CalendarHandlers) writeQueryError(w http.ResponseWriter, err error) {
	var notSession *calendar.NotASessionError
	var gap *calendar.RangeGapError
	switch {
	case errors.As(err, &notSession):
		payload := map[string]interface{}{
			"kind":    "not_a_session",
			"message": notSession.Error(),
			"date":    calendar.FormatDate(notSession.Date),
		}
		switch notSession.Reason() {
		case calendar.ReasonBeforeFirst:
			payload["case"] = "before_first_session"
		case calendar.ReasonAfterLast:
			payload["case"] = "after_last_session"
		default:
			payload["case"] = "not_a_session"
		}
		if !notSession.First.IsZero() {
			payload["first_session"] = calendar.FormatDate(notSession.First)
		}
		if !notSession.Last.IsZero() {
			payload["last_session"] = calendar.FormatDate(notSession.Last)
		}
		writeJSON(w, h.log, http.StatusNotFound, map[string]interface{}{"error": payload})
	case errors.As(err, &gap):
		payload := map[string]interface{}{
			"kind":    "range_gap",
			"message": gap.Error(),
		}
		if !gap.PrevClose.IsZero() {
			payload["previous_close"] = gap.PrevClose.Format(time.RFC3339)
		}
		if !gap.NextOpen.IsZero() {
			payload["next_open"] = gap.NextOpen.Format(time.RFC3339)
		}
		writeJSON(w, h.log, http.StatusNotFound, map[string]interface{}{"error": payload})
	default:
		writeError(w, h.log, http.StatusInternalServerError, "internal", err.Error())
	}
}
