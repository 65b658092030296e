package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Sternrassler/hypixel-cache/pkg/lookup"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	req, err := lookupRequest(r)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	res, err := s.lookuper.Lookup(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error().
				Err(err).
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("type", req.Type).
				Str("identifier", req.Identifier).
				Str("kind", string(lookup.KindOf(err))).
				Msg("Lookup failed")
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, lookupResponse{
		Success:   true,
		Cached:    res.Cached,
		FetchedAt: FormatTimestamp(res.FetchedAt),
		Username:  res.Username,
		UUID:      res.UUID,
		Player:    res.Player,
	})
}

// lookupRequest decodes the route parameters. chi matches on the escaped
// path, so percent-encoded segments arrive still encoded.
func lookupRequest(r *http.Request) (lookup.Request, error) {
	typ, err := url.PathUnescape(chi.URLParam(r, "type"))
	if err != nil {
		return lookup.Request{}, lookup.ErrNotFound
	}
	identifier, err := url.PathUnescape(chi.URLParam(r, "identifier"))
	if err != nil {
		switch typ {
		case lookup.TypeUUID:
			return lookup.Request{}, lookup.ErrInvalidUUID
		case lookup.TypeName:
			return lookup.Request{}, lookup.ErrInvalidUsername
		default:
			return lookup.Request{}, lookup.ErrNotFound
		}
	}
	return lookup.Request{Type: typ, Identifier: identifier}, nil
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// handleReady pings every registered check.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	resp := readyResponse{Status: "ready", Checks: make(map[string]string, len(s.checks))}
	status := http.StatusOK

	for name, check := range s.checks {
		ctx, cancel := context.WithTimeout(r.Context(), s.readyTimeout)
		err := check.Ping(ctx)
		cancel()

		if err != nil {
			s.logger.Warn().Err(err).Str("check", name).Msg("Readiness check failed")
			resp.Checks[name] = err.Error()
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	writeJSON(w, status, resp)
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, lookup.ErrNotFound.Message)
}
