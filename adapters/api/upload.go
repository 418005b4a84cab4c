package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"bootstat/adapters/excel"
	"bootstat/app"
	"bootstat/domain/core"
	apperrors "bootstat/internal/errors"
)

// maxUploadSize caps data file uploads at 50MB
const maxUploadSize = 50 << 20

// handleFileAnalysis runs an analysis directly against an uploaded xlsx or
// csv file. Multipart form fields: "file" (the data file), "kind"
// (correlation or difference, default correlation), "columns"
// (comma-separated column names: two for correlation, three for
// difference), plus the same knobs the JSON endpoints accept.
func (s *Server) handleFileAnalysis(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		s.writeError(w, apperrors.InvalidInput("multipart form is malformed or exceeds the 50MB upload limit"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, apperrors.InvalidInput(`no data file uploaded under field "file"`))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".xlsx" && ext != ".csv" {
		s.writeError(w, apperrors.InvalidInput("only .xlsx and .csv files are supported"))
		return
	}

	path, cleanup, err := spoolUpload(file, ext)
	if err != nil {
		s.logger.Error("failed to spool upload %q: %v", header.Filename, err)
		s.writeError(w, apperrors.InternalError("failed to store uploaded file"))
		return
	}
	defer cleanup()

	columns := splitColumns(r.FormValue("columns"))
	params, err := parseAnalysisForm(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	reader := excel.NewDataReader(path)

	switch kind := r.FormValue("kind"); kind {
	case "", "correlation":
		if len(columns) != 2 {
			s.writeError(w, apperrors.InvalidInput("correlation needs exactly two column names"))
			return
		}
		series, err := reader.ReadSeries(columns...)
		if err != nil {
			s.writeError(w, readerError(err))
			return
		}
		result, err := s.service.RunCorrelation(r.Context(), app.CorrelationRequest{
			XName:           columns[0],
			YName:           columns[1],
			X:               series[columns[0]],
			Y:               series[columns[1]],
			Method:          params.method,
			Replications:    params.replications,
			Alpha:           params.alpha,
			Seed:            params.seed,
			ReturnEstimates: params.returnEstimates,
		})
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)

	case "difference":
		if len(columns) != 3 {
			s.writeError(w, apperrors.InvalidInput("difference needs exactly three column names"))
			return
		}
		series, err := reader.ReadSeries(columns...)
		if err != nil {
			s.writeError(w, readerError(err))
			return
		}
		result, err := s.service.RunDifference(r.Context(), app.DifferenceRequest{
			AName:           columns[0],
			BName:           columns[1],
			CName:           columns[2],
			A:               series[columns[0]],
			B:               series[columns[1]],
			C:               series[columns[2]],
			Method:          params.method,
			Replications:    params.replications,
			Alpha:           params.alpha,
			Seed:            params.seed,
			ReturnEstimates: params.returnEstimates,
		})
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)

	default:
		s.writeError(w, apperrors.InvalidInput(fmt.Sprintf("unknown analysis kind %q", kind)))
	}
}

// analysisParams are the scalar knobs shared by both analysis kinds
type analysisParams struct {
	method          string
	replications    int
	alpha           float64
	seed            int64
	returnEstimates bool
}

func parseAnalysisForm(r *http.Request) (analysisParams, error) {
	params := analysisParams{
		method: r.FormValue("method"),
		seed:   app.DefaultSeed,
	}

	if raw := r.FormValue("replications"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return params, apperrors.InvalidInput("replications must be an integer")
		}
		params.replications = parsed
	}
	if raw := r.FormValue("alpha"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return params, apperrors.InvalidInput("alpha must be a number")
		}
		params.alpha = parsed
	}
	if raw := r.FormValue("seed"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return params, apperrors.InvalidInput("seed must be an integer")
		}
		params.seed = parsed
	}
	params.returnEstimates = r.FormValue("return_estimates") == "true"

	return params, nil
}

// spoolUpload writes the upload to a temp file carrying the original
// extension, so the reader dispatches on the right format.
func spoolUpload(file multipart.File, ext string) (string, func(), error) {
	tmp, err := os.CreateTemp("", "bootstat-upload-*"+ext)
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { os.Remove(tmp.Name()) }

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return tmp.Name(), cleanup, nil
}

func splitColumns(raw string) []string {
	var columns []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			columns = append(columns, trimmed)
		}
	}
	return columns
}

// readerError keeps domain sentinels intact and tags everything else
// (cell parse failures and the like) as invalid input, since the file
// came from the client.
func readerError(err error) error {
	if core.IsValidationError(err) || core.IsNotFoundError(err) {
		return err
	}
	return apperrors.WithCode(apperrors.CodeInvalidInput, err)
}
