package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/munnerz/goautoneg"

	"github.com/remiblancher/cmsinfo/internal/api/dto"
	apierrors "github.com/remiblancher/cmsinfo/internal/api/errors"
	"github.com/remiblancher/cmsinfo/internal/api/middleware"
	"github.com/remiblancher/cmsinfo/internal/api/service"
	"github.com/remiblancher/cmsinfo/pkg/describe"
)

// Media types offered by Info, most preferred first.
var offered = []string{
	"application/json",
	"application/yaml",
	"application/x-yaml",
	"application/cbor",
	"text/plain",
}

var formatByMediaType = map[string]describe.Format{
	"application/json":   describe.FormatJSON,
	"application/yaml":   describe.FormatYAML,
	"application/x-yaml": describe.FormatYAML,
	"application/cbor":   describe.FormatCBOR,
	"text/plain":         describe.FormatText,
}

// CMSHandler handles CMS-related HTTP requests.
type CMSHandler struct {
	service  *service.CMSService
	language describe.Language
}

// NewCMSHandler creates a new CMSHandler. lang is used when a request names none.
func NewCMSHandler(cmsService *service.CMSService, lang describe.Language) *CMSHandler {
	return &CMSHandler{service: cmsService, language: lang}
}

// Info handles POST /api/v1/cms/info
//
// The body is either a JSON CMSInfoRequest or the raw DER/BER/PEM object
// (mode and lang then come from the query string).
func (h *CMSHandler) Info(w http.ResponseWriter, r *http.Request) {
	format, ok, err := negotiateFormat(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if !ok {
		respondError(w, http.StatusNotAcceptable, &dto.APIError{
			Code:    apierrors.CodeNotAcceptable,
			Message: "Supported response types: " + strings.Join(offered, ", "),
		})
		return
	}

	q := r.URL.Query()
	modeName, langName := q.Get("mode"), q.Get("lang")

	var data []byte
	if isJSON(r.Header.Get("Content-Type")) {
		var req dto.CMSInfoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handleDecodeError(w, err, "Invalid JSON request body")
			return
		}
		if req.Mode != "" {
			modeName = req.Mode
		}
		if req.Language != "" {
			langName = req.Language
		}
		decoded, err := req.Data.Decode()
		if err != nil {
			respondError(w, http.StatusBadRequest, apierrors.NewBadRequest(err.Error()))
			return
		}
		data = decoded
	} else {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			handleDecodeError(w, err, "Cannot read request body")
			return
		}
		data = body
	}
	if len(data) == 0 {
		respondError(w, http.StatusBadRequest, apierrors.NewBadRequest("Request carries no CMS data"))
		return
	}

	mode, err := describe.ParseMode(modeName)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	lang := h.language
	if langName != "" {
		if lang, err = describe.ParseLanguage(langName); err != nil {
			handleServiceError(w, err)
			return
		}
	}

	d, err := h.service.Info(r.Context(), &service.InfoRequest{
		Data:       data,
		Mode:       mode,
		RequestID:  middleware.RequestIDFromContext(r.Context()),
		RemoteAddr: r.RemoteAddr,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := describe.Render(&buf, d, format, lang); err != nil {
		handleServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", format.MediaType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// negotiateFormat picks the output format from the format query parameter,
// falling back to the Accept header. JSON is the default.
func negotiateFormat(r *http.Request) (describe.Format, bool, error) {
	if name := r.URL.Query().Get("format"); name != "" {
		f, err := describe.ParseFormat(name)
		return f, err == nil, err
	}
	accept := strings.TrimSpace(r.Header.Get("Accept"))
	if accept == "" {
		return describe.FormatJSON, true, nil
	}
	f, ok := formatByMediaType[goautoneg.Negotiate(accept, offered)]
	return f, ok, nil
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "application/json"
}

func handleDecodeError(w http.ResponseWriter, err error, message string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		handleServiceError(w, err)
		return
	}
	respondError(w, http.StatusBadRequest, apierrors.NewBadRequest(message))
}

// handleServiceError maps service errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error) {
	status, apiErr := apierrors.MapError(err)
	respondError(w, status, apiErr)
}
