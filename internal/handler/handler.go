// Package handler serves the intake API over fasthttp.
package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/fasthttp/router"
	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"planning-bee/internal/delivery"
	"planning-bee/internal/document"
	"planning-bee/internal/engine"
	"planning-bee/internal/formstate"
	"planning-bee/internal/listedit"
	"planning-bee/internal/model"
	"planning-bee/internal/store"
	"planning-bee/internal/summary"
	"planning-bee/internal/validate"
)

// Mailer sends an assembled document to a recipient.
type Mailer interface {
	Send(ctx context.Context, pdf []byte, to string) (delivery.Result, error)
}

type Server struct {
	sessions  *formstate.Manager
	engine    *engine.Engine
	assembler *document.Assembler
	mailer    Mailer
	logger    *zap.Logger
}

func New(sessions *formstate.Manager, eng *engine.Engine, assembler *document.Assembler, mailer Mailer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{sessions: sessions, engine: eng, assembler: assembler, mailer: mailer, logger: logger}
}

// Handler returns the routed request handler.
func (s *Server) Handler() fasthttp.RequestHandler {
	r := router.New()
	r.GET("/health", s.health)
	r.GET("/sessions/{id}", s.getSession)
	r.DELETE("/sessions/{id}", s.resetSession)
	r.GET("/sessions/{id}/sections/{name}", s.getSection)
	r.PUT("/sessions/{id}/sections/{name}", s.putSection)
	r.POST("/sessions/{id}/sections/{name}/validate", s.validateSection)
	r.POST("/sessions/{id}/mutations", s.mutations)
	r.GET("/sessions/{id}/summary", s.summary)
	r.POST("/sessions/{id}/document", s.document)
	r.POST("/sessions/{id}/document/email", s.email)
	r.NotFound = func(ctx *fasthttp.RequestCtx) {
		writeError(ctx, fasthttp.StatusNotFound, "Not found")
	}
	r.MethodNotAllowed = func(ctx *fasthttp.RequestCtx) {
		writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
	}
	return r.Handler
}

func (s *Server) health(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) container(ctx *fasthttp.RequestCtx) (*formstate.Container, bool) {
	c, err := s.sessions.Get(ctx, sessionID(ctx))
	if err != nil {
		s.fail(ctx, err)
		return nil, false
	}
	return c, true
}

func (s *Server) getSession(ctx *fasthttp.RequestCtx) {
	c, ok := s.container(ctx)
	if !ok {
		return
	}
	raw, err := c.SnapshotJSON()
	if err != nil {
		s.fail(ctx, err)
		return
	}
	writeRaw(ctx, fasthttp.StatusOK, raw)
}

func (s *Server) resetSession(ctx *fasthttp.RequestCtx) {
	if err := s.sessions.Reset(ctx, sessionID(ctx)); err != nil {
		s.fail(ctx, err)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusNoContent)
}

func (s *Server) getSection(ctx *fasthttp.RequestCtx) {
	c, ok := s.container(ctx)
	if !ok {
		return
	}
	raw, err := c.Get(sectionName(ctx))
	if err != nil {
		s.fail(ctx, err)
		return
	}
	writeRaw(ctx, fasthttp.StatusOK, raw)
}

func (s *Server) putSection(ctx *fasthttp.RequestCtx) {
	c, ok := s.container(ctx)
	if !ok {
		return
	}
	name := sectionName(ctx)
	if err := c.Patch(ctx, name, ctx.PostBody()); err != nil {
		s.fail(ctx, err)
		return
	}
	raw, err := c.Get(name)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	writeRaw(ctx, fasthttp.StatusOK, raw)
}

// validateSection checks the posted section value, or the stored one when
// the body is empty.
func (s *Server) validateSection(ctx *fasthttp.RequestCtx) {
	c, ok := s.container(ctx)
	if !ok {
		return
	}
	name := sectionName(ctx)
	raw := ctx.PostBody()
	if len(raw) == 0 {
		stored, err := c.Get(name)
		if err != nil {
			s.fail(ctx, err)
			return
		}
		raw = stored
	} else if !model.IsSection(name) {
		s.fail(ctx, fmt.Errorf("%w: %q", formstate.ErrUnknownSection, name))
		return
	}
	doc, err := listedit.Decode(raw)
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid section value: "+err.Error())
		return
	}
	errs := validate.Section(name, doc)
	writeJSON(ctx, fasthttp.StatusOK, map[string]any{"valid": len(errs) == 0, "errors": errs})
}

func (s *Server) mutations(ctx *fasthttp.RequestCtx) {
	c, ok := s.container(ctx)
	if !ok {
		return
	}

	var req model.MutationRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.SessionID != "" && req.SessionID != c.ID() {
		writeError(ctx, fasthttp.StatusBadRequest, "session_id does not match the URL")
		return
	}
	if len(req.Mutations) == 0 {
		writeError(ctx, fasthttp.StatusBadRequest, "At least one mutation is required")
		return
	}

	resp, err := s.engine.Process(ctx, c, &req)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, resp)
}

func (s *Server) intake(ctx *fasthttp.RequestCtx) ([]byte, bool) {
	c, ok := s.container(ctx)
	if !ok {
		return nil, false
	}
	raw, err := c.SnapshotJSON()
	if err != nil {
		s.fail(ctx, err)
		return nil, false
	}
	return raw, true
}

func (s *Server) summary(ctx *fasthttp.RequestCtx) {
	raw, ok := s.intake(ctx)
	if !ok {
		return
	}
	in, err := model.DecodeIntake(raw)
	if err != nil {
		s.fail(ctx, fmt.Errorf("%w: %v", document.ErrMalformedSnapshot, err))
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, summary.Compute(in))
}

func (s *Server) render(ctx *fasthttp.RequestCtx) (*document.Result, bool) {
	raw, ok := s.intake(ctx)
	if !ok {
		return nil, false
	}
	res, err := s.assembler.Assemble(ctx, raw)
	if err != nil {
		s.fail(ctx, err)
		return nil, false
	}
	return res, true
}

func (s *Server) document(ctx *fasthttp.RequestCtx) {
	res, ok := s.render(ctx)
	if !ok {
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType("application/pdf")
	ctx.Response.Header.Set("Content-Disposition", `attachment; filename="instructions.pdf"`)
	ctx.Response.Header.Set("X-Page-Count", strconv.Itoa(res.Pages))
	ctx.SetBody(res.PDF)
}

func (s *Server) email(ctx *fasthttp.RequestCtx) {
	var req model.EmailRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if !validate.Email(req.To) {
		s.fail(ctx, delivery.ErrInvalidRecipient)
		return
	}
	if s.mailer == nil {
		s.fail(ctx, delivery.ErrDisabled)
		return
	}

	res, ok := s.render(ctx)
	if !ok {
		return
	}
	result, err := s.mailer.Send(ctx, res.PDF, req.To)
	if err != nil {
		s.logger.Warn("document email failed", zap.String("session", sessionID(ctx)), zap.Error(err))
		if status := statusFor(err); status != fasthttp.StatusBadGateway && status != fasthttp.StatusInternalServerError {
			s.fail(ctx, err)
			return
		}
		// the email service or the network failed; report its result
		writeJSON(ctx, fasthttp.StatusBadGateway, result)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, result)
}

func sessionID(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue("id").(string)
	return id
}

func sectionName(ctx *fasthttp.RequestCtx) string {
	name, _ := ctx.UserValue("name").(string)
	return name
}

// fail maps err to a status code and writes it as an ErrorResponse.
func (s *Server) fail(ctx *fasthttp.RequestCtx, err error) {
	status := statusFor(err)
	if status >= fasthttp.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", string(ctx.Method())),
			zap.String("path", string(ctx.Path())),
			zap.Error(err))
	}
	writeError(ctx, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, formstate.ErrUnknownSection), errors.Is(err, store.ErrNotFound):
		return fasthttp.StatusNotFound
	case errors.Is(err, formstate.ErrInvalidJSON),
		errors.Is(err, formstate.ErrInvalidSessionID),
		errors.Is(err, delivery.ErrInvalidRecipient):
		return fasthttp.StatusBadRequest
	case errors.Is(err, document.ErrMissingSnapshot), errors.Is(err, document.ErrMalformedSnapshot):
		return fasthttp.StatusUnprocessableEntity
	case errors.Is(err, delivery.ErrDisabled):
		return fasthttp.StatusServiceUnavailable
	case errors.Is(err, delivery.ErrRejected):
		return fasthttp.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return fasthttp.StatusGatewayTimeout
	default:
		return fasthttp.StatusInternalServerError
	}
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, "encoding response: "+err.Error())
		return
	}
	writeRaw(ctx, status, body)
}

func writeRaw(ctx *fasthttp.RequestCtx, status int, body []byte) {
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}

func writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	body, _ := json.Marshal(model.ErrorResponse{Status: status, Message: message})
	writeRaw(ctx, status, body)
}
