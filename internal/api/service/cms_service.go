// Package service provides business logic for the REST API.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	apierrors "github.com/remiblancher/cmsinfo/internal/api/errors"
	"github.com/remiblancher/cmsinfo/internal/api/metrics"
	"github.com/remiblancher/cmsinfo/internal/audit"
	"github.com/remiblancher/cmsinfo/pkg/cms"
	"github.com/remiblancher/cmsinfo/pkg/describe"
)

// InfoRequest is a decoded interpretation request.
type InfoRequest struct {
	Data       []byte
	Mode       describe.Mode
	RequestID  string
	RemoteAddr string
}

// CMSService interprets CMS objects for the REST API.
type CMSService struct {
	log     logr.Logger
	metrics *metrics.Metrics
}

// NewCMSService creates a new CMSService. m may be nil.
func NewCMSService(log logr.Logger, m *metrics.Metrics) *CMSService {
	return &CMSService{log: log, metrics: m}
}

// Info interprets req.Data and records the inspection in the audit log.
func (s *CMSService) Info(ctx context.Context, req *InfoRequest) (*describe.Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var d *describe.Descriptor
	data, err := cms.Unarmor(req.Data)
	if err == nil {
		d, err = describe.Interpret(data, &describe.Options{
			Mode:   req.Mode,
			Logger: s.log.WithValues("request_id", req.RequestID),
		})
	}
	contentType := ""
	if d != nil {
		contentType = d.ContentType
	}

	var actor *audit.Actor
	if req.RemoteAddr != "" {
		actor = &audit.Actor{Type: "service", ID: req.RemoteAddr}
	}
	if auditErr := audit.LogInspection(audit.Inspection{
		Input:       req.Data,
		ContentType: contentType,
		Mode:        req.Mode.String(),
		Source:      "api",
		RequestID:   req.RequestID,
		Actor:       actor,
		Err:         err,
	}); auditErr != nil {
		s.log.Error(auditErr, "audit write failed", "request_id", req.RequestID)
		s.record(req, contentType, auditErr)
		return nil, fmt.Errorf("%w: %w", apierrors.ErrAudit, auditErr)
	}

	s.record(req, contentType, err)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *CMSService) record(req *InfoRequest, contentType string, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveInspection(contentType, resultOf(err), len(req.Data))
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, cms.ErrUnsupportedContentType):
		return metrics.ResultUnsupported
	case errors.Is(err, cms.ErrMalformed):
		return metrics.ResultMalformed
	default:
		return metrics.ResultError
	}
}
