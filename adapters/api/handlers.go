package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"bootstat/app"
	"bootstat/domain/core"
	apperrors "bootstat/internal/errors"
)

type correlationPayload struct {
	XName           string    `json:"x_name"`
	YName           string    `json:"y_name"`
	X               []float64 `json:"x"`
	Y               []float64 `json:"y"`
	Method          string    `json:"method"`
	Replications    int       `json:"replications"`
	Alpha           float64   `json:"alpha"`
	Seed            *int64    `json:"seed"`
	ReturnEstimates bool      `json:"return_estimates"`
}

type differencePayload struct {
	AName           string    `json:"a_name"`
	BName           string    `json:"b_name"`
	CName           string    `json:"c_name"`
	A               []float64 `json:"a"`
	B               []float64 `json:"b"`
	C               []float64 `json:"c"`
	Method          string    `json:"method"`
	Replications    int       `json:"replications"`
	Alpha           float64   `json:"alpha"`
	Seed            *int64    `json:"seed"`
	ReturnEstimates bool      `json:"return_estimates"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCorrelation(w http.ResponseWriter, r *http.Request) {
	var payload correlationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeError(w, apperrors.InvalidInput("request body is not valid JSON"))
		return
	}

	result, err := s.service.RunCorrelation(r.Context(), app.CorrelationRequest{
		XName:           payload.XName,
		YName:           payload.YName,
		X:               payload.X,
		Y:               payload.Y,
		Method:          payload.Method,
		Replications:    payload.Replications,
		Alpha:           payload.Alpha,
		Seed:            seedOrDefault(payload.Seed),
		ReturnEstimates: payload.ReturnEstimates,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDifference(w http.ResponseWriter, r *http.Request) {
	var payload differencePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeError(w, apperrors.InvalidInput("request body is not valid JSON"))
		return
	}

	result, err := s.service.RunDifference(r.Context(), app.DifferenceRequest{
		AName:           payload.AName,
		BName:           payload.BName,
		CName:           payload.CName,
		A:               payload.A,
		B:               payload.B,
		C:               payload.C,
		Method:          payload.Method,
		Replications:    payload.Replications,
		Alpha:           payload.Alpha,
		Seed:            seedOrDefault(payload.Seed),
		ReturnEstimates: payload.ReturnEstimates,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleMethods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"methods": s.service.Methods()})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeError(w, apperrors.InvalidInput("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	records, err := s.service.ListRecentRuns(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": records})
}

func (s *Server) handleRunByID(w http.ResponseWriter, r *http.Request) {
	record, err := s.service.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// seedOrDefault keeps omitted seeds deterministic. An explicit zero is a
// valid seed; only a missing field falls back.
func seedOrDefault(seed *int64) int64 {
	if seed == nil {
		return app.DefaultSeed
	}
	return *seed
}

// writeError maps domain errors onto HTTP statuses and structured codes
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := apperrors.CodeInternalError

	switch {
	case core.IsValidationError(err), errors.Is(err, core.ErrUnknownMethod):
		status = http.StatusBadRequest
		code = apperrors.CodeValidationError
	case core.IsNotFoundError(err):
		status = http.StatusNotFound
		code = apperrors.CodeNotFound
	case apperrors.IsAppError(err):
		code = apperrors.GetCode(err)
		switch code {
		case apperrors.CodeInvalidInput, apperrors.CodeValidationError:
			status = http.StatusBadRequest
		case apperrors.CodeNotFound:
			status = http.StatusNotFound
		}
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed: %v", err)
	} else {
		s.logger.Warn("request rejected: %v", err)
	}

	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: err.Error()}})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}
