package formhttp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-formkit/pkg/form"
	"github.com/goliatone/go-formkit/pkg/renderers/html"
	"github.com/goliatone/go-formkit/pkg/schema"
	"github.com/goliatone/go-formkit/pkg/sections"
)

// FieldErrors is implemented by submit handler errors that carry per-field
// feedback. Keys may be field names or JSON-pointer/dotted paths.
type FieldErrors interface {
	FieldErrors() map[string][]string
}

// Handler serves one form definition.
type Handler struct {
	def    schema.Definition
	cfg    config
	store  *Store
	html   *html.Renderer
	logger *zap.Logger
	router chi.Router
}

// New validates def and builds the router.
func New(def schema.Definition, opts ...Option) (*Handler, error) {
	if _, err := schema.New(def.Schema); err != nil {
		return nil, fmt.Errorf("formhttp: %w", err)
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	h := &Handler{def: def, cfg: cfg, logger: cfg.logger}
	h.store = cfg.store
	if h.store == nil {
		h.store = NewStore(cfg.ttl)
	}
	h.html = cfg.renderer
	if h.html == nil {
		r, err := html.New(html.WithLogger(cfg.logger))
		if err != nil {
			return nil, fmt.Errorf("formhttp: html renderer: %w", err)
		}
		h.html = r
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(h.logRequests)
	r.Use(middleware.Recoverer)
	r.Get("/", h.create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.show)
		r.Post("/fields/{name}/blur", h.blur)
		r.Post("/sections/{name}/toggle", h.toggle)
		r.Post("/submit", h.submitForm)
	})
	h.router = r
	return h, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// Store exposes the session store.
func (h *Handler) Store() *Store {
	return h.store
}

// NewSession creates and stores a session for the handler's definition.
func (h *Handler) NewSession() (*form.Session, error) {
	opts := append([]form.Option{form.WithLogger(h.logger)}, h.cfg.sessionOpts...)
	opts = append(opts, form.WithID(uuid.NewString()))
	sess, err := form.FromDefinition(h.def, opts...)
	if err != nil {
		return nil, err
	}
	h.store.Put(sess)
	return sess, nil
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		}
		if id := chi.URLParamFromCtx(r.Context(), "id"); id != "" {
			fields = append(fields, zap.String("session", id))
		}
		h.logger.Info("http request", fields...)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	sess, err := h.NewSession()
	if err != nil {
		h.logger.Error("create session failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "SESSION_ERROR", "could not create session")
		return
	}
	http.Redirect(w, r, h.sessionPath(sess.ID()), http.StatusSeeOther)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	h.renderPage(w, r, sess, http.StatusOK)
}

type fieldReply struct {
	Name    string `json:"name"`
	Value   any    `json:"value"`
	Error   string `json:"error,omitempty"`
	Touched bool   `json:"touched"`
}

func (h *Handler) blur(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	b, err := sess.Field(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, http.StatusNotFound, "UNKNOWN_FIELD", err.Error())
		return
	}

	raw, err := decodeFieldValue(r, b.Config(), h.cfg.maxUploadBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	switch err := b.OnChange(raw); {
	case errors.Is(err, form.ErrFieldDisabled):
		writeError(w, http.StatusConflict, "FIELD_DISABLED", err.Error())
		return
	case err != nil:
		// Coercion failed: the type error is already recorded and the old
		// value kept, so blur validation would hide it.
	default:
		b.OnBlur()
	}
	writeJSON(w, http.StatusOK, fieldReply{
		Name:    b.Name(),
		Value:   b.Value(),
		Error:   b.Error(),
		Touched: b.Touched(),
	})
}

type sectionReply struct {
	Section string `json:"section"`
	Slug    string `json:"slug"`
	Open    bool   `json:"open"`
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	organizer := sess.Sections()
	name, found := organizer.Lookup(chi.URLParam(r, "name"))
	if !found {
		writeError(w, http.StatusNotFound, "UNKNOWN_SECTION", "unknown section")
		return
	}
	open, err := organizer.Toggle(name)
	if err != nil {
		writeError(w, http.StatusNotFound, "UNKNOWN_SECTION", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sectionReply{Section: name, Slug: sections.Slug(name), Open: open})
}

func (h *Handler) submitForm(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	rejected, err := applySubmission(r, sess, h.cfg.maxUploadBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if len(rejected) > 0 {
		sess.ApplyErrors(rejected)
		h.renderPage(w, r, sess, http.StatusUnprocessableEntity)
		return
	}

	err = sess.Submit(r.Context(), h.submitFunc())
	var verr *form.ValidationError
	var ferr FieldErrors
	switch {
	case err == nil:
		h.renderPage(w, r, sess, http.StatusOK)
	case errors.As(err, &verr):
		h.renderPage(w, r, sess, http.StatusUnprocessableEntity)
	case errors.Is(err, form.ErrSubmitInProgress):
		writeError(w, http.StatusConflict, "SUBMIT_IN_PROGRESS", err.Error())
	case errors.As(err, &ferr):
		sess.ApplyErrors(ferr.FieldErrors())
		h.renderPage(w, r, sess, http.StatusUnprocessableEntity)
	case errors.Is(err, context.DeadlineExceeded):
		sess.ApplyErrors(map[string][]string{"form": {h.cfg.failureMessage}})
		h.renderPage(w, r, sess, http.StatusGatewayTimeout)
	default:
		h.logger.Warn("submit handler failed", zap.String("session", sess.ID()), zap.Error(err))
		sess.ApplyErrors(map[string][]string{"form": {h.cfg.failureMessage}})
		h.renderPage(w, r, sess, http.StatusInternalServerError)
	}
}

func (h *Handler) submitFunc() form.SubmitFunc {
	if h.cfg.submit != nil {
		return h.cfg.submit
	}
	return func(context.Context, map[string]any) error { return nil }
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, sess *form.Session, status int) {
	opts := h.cfg.renderOpts
	opts.Action = h.sessionPath(sess.ID()) + "/submit"
	out, err := h.html.Render(r.Context(), sess.View(), opts)
	if err != nil {
		h.logger.Error("render failed", zap.String("session", sess.ID()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "RENDER_ERROR", "could not render form")
		return
	}
	w.Header().Set("Content-Type", h.html.ContentType())
	w.WriteHeader(status)
	_, _ = w.Write(out)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*form.Session, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusNotFound, "UNKNOWN_SESSION", "unknown session")
		return nil, false
	}
	sess, ok := h.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "UNKNOWN_SESSION", "unknown session")
		return nil, false
	}
	return sess, true
}

func (h *Handler) sessionPath(id string) string {
	return h.cfg.basePath + "/" + id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
		"code":  code,
	})
}

var _ http.Handler = (*Handler)(nil)
