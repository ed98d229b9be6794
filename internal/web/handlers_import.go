package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/credport/internal/core"
)

// multipartMemory is the in-memory budget for multipart forms.
const multipartMemory = 32 << 20

// handleImport runs an import from a JSON body with a base64 file or from
// a multipart upload.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	// Base64 inflates by a third; leave room for the JSON envelope.
	maxBody := s.cfg.Import.MaxPayloadSize*2 + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	req, err := s.readImportRequest(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = fmt.Errorf("%w: request body over %d bytes", core.ErrFileTooLarge, maxBody)
		}
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if req.Reference == "" {
		req.Reference = core.DefaultReference(time.Now())
	}

	result, err := s.service.Import(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, newImportResponse(result))
}

// handlePreview runs a dry-run import and returns what would happen.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxPayloadSize*2+1<<20)

	req, err := s.readImportRequest(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = fmt.Errorf("%w: %v", core.ErrFileTooLarge, err)
		}
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if req.Reference == "" {
		req.Reference = core.DefaultReference(time.Now())
	}

	preview, err := s.service.Preview(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

func (s *Server) readImportRequest(r *http.Request) (core.ImportRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return readMultipartImport(r)
	}

	var body importRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return core.ImportRequest{}, err
		}
		return core.ImportRequest{}, fmt.Errorf("%w: %v", core.ErrInvalidPayload, err)
	}
	if strings.TrimSpace(body.File) == "" {
		return core.ImportRequest{}, core.ErrNoFile
	}

	payload, err := core.DecodeBase64Payload(body.File)
	if err != nil {
		return core.ImportRequest{}, err
	}
	return core.ImportRequest{
		Reference:      body.Reference,
		Format:         body.Format,
		Payload:        payload,
		FlattenFolders: body.FlattenFolders,
	}, nil
}

func readMultipartImport(r *http.Request) (core.ImportRequest, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return core.ImportRequest{}, err
		}
		return core.ImportRequest{}, fmt.Errorf("%w: %v", core.ErrInvalidPayload, err)
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return core.ImportRequest{}, core.ErrNoFile
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		return core.ImportRequest{}, err
	}

	req := core.ImportRequest{
		Reference: r.FormValue("reference"),
		Format:    r.FormValue("format"),
		Payload:   payload,
	}
	if v := r.FormValue("flattenFolders"); v != "" {
		flatten, err := strconv.ParseBool(v)
		if err != nil {
			return core.ImportRequest{}, fmt.Errorf("%w: flattenFolders %q", core.ErrInvalidPayload, v)
		}
		req.FlattenFolders = &flatten
	}
	return req, nil
}

// handleImportResult returns a finished import while it is retained.
func (s *Server) handleImportResult(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.Result(chi.URLParam(r, "importID"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, newImportResponse(result))
}

// handleImportReport renders the HTML report of a finished import.
func (s *Server) handleImportReport(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.Result(chi.URLParam(r, "importID"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := ImportReport(result).Render(r.Context(), w); err != nil {
		logRenderError(r, err)
	}
}

// handleExport composes the posted resources as a vendor CSV download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxPayloadSize)

	var body exportRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = fmt.Errorf("%w: %v", core.ErrFileTooLarge, err)
		} else {
			err = fmt.Errorf("%w: %v", core.ErrInvalidPayload, err)
		}
		s.respondError(w, r, err, statusFor(err))
		return
	}

	data, err := s.service.Export(r.Context(), format, body.Resources)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format+"-export.csv"))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
