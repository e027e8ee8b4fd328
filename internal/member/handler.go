// internal/member/handler.go
package member

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

// Response bodies.
const (
	MsgRegistered     = "회원 등록 성공"
	MsgUpdated        = "회원 수정 성공"
	MsgMalformedBody  = "요청 형식이 올바르지 않습니다."
	MsgDuplicateEmail = "이미 가입된 이메일입니다."
	MsgNotFound       = "회원을 찾을 수 없습니다."
	MsgRateLimited    = "요청이 너무 많습니다. 잠시 후 다시 시도해 주세요."
	MsgInternal       = "회원 처리 중 오류가 발생했습니다."
)

const (
	// DefaultBaseURL is the site the Location header points at.
	DefaultBaseURL = "http://tryeat.shop"

	maxBodyBytes = 1 << 20
)

// Options controls response details that existing clients may depend on.
type Options struct {
	// BaseURL prefixes the Location header. Defaults to DefaultBaseURL.
	BaseURL string
	// LegacyLocation emits the historical "http:tryeat.shop" style Location,
	// with no "//" and no leading slash on the path.
	LegacyLocation bool
	// LegacyErrors concatenates validation messages with no delimiter.
	LegacyErrors bool
	// MeterProvider records the member.requests counter. Defaults to the
	// global provider installed by telemetry.Setup.
	MeterProvider metric.MeterProvider
}

// ErrorsResponse is the JSON body of a 400 for clients that accept JSON.
type ErrorsResponse struct {
	Errors ValidationErrors `json:"errors"`
}

type operation struct {
	name       string
	call       func(ctx context.Context, form Form) error
	path       string
	legacyPath string
	success    string
}

type Handler struct {
	service   Service
	validator *Validator
	opts      Options
	host      string

	tracer   trace.Tracer
	requests metric.Int64Counter
}

func NewHandler(service Service, opts Options) *Handler {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")

	host := "tryeat.shop"
	if u, err := url.Parse(opts.BaseURL); err == nil && u.Host != "" {
		host = u.Host
	}

	if opts.MeterProvider == nil {
		opts.MeterProvider = otel.GetMeterProvider()
	}

	requests, err := opts.MeterProvider.Meter("tryeat/member").Int64Counter("member.requests",
		metric.WithDescription("Member create/update requests by outcome"))
	if err != nil {
		requests = noop.Int64Counter{}
	}

	return &Handler{
		service:   service,
		validator: NewValidator(),
		opts:      opts,
		host:      host,
		tracer:    otel.Tracer("tryeat/member"),
		requests:  requests,
	}
}

// Routes mounts the member endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api/members", func(r chi.Router) {
		r.Post("/new", h.CreateMember)
		r.Put("/update", h.UpdateMember)
	})
}

// CreateMember handles POST /api/members/new.
func (h *Handler) CreateMember(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, operation{
		name:       "create",
		call:       h.service.Register,
		path:       "/members",
		legacyPath: "",
		success:    MsgRegistered,
	})
}

// UpdateMember handles PUT /api/members/update.
func (h *Handler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, operation{
		name:       "update",
		call:       h.service.Update,
		path:       "/members/update",
		legacyPath: "/members/update",
		success:    MsgUpdated,
	})
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request, op operation) {
	ctx, span := h.tracer.Start(r.Context(), "member."+op.name)
	defer span.End()

	logger := hlog.FromRequest(r).With().Str("operation", op.name).Logger()

	var form Form
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := decodeForm(r.Body, &form); err != nil {
		logger.Info().Err(err).Msg("member request body could not be decoded")
		h.record(ctx, span, op, "malformed")
		writeText(w, http.StatusBadRequest, MsgMalformedBody)
		return
	}

	if errs := h.validator.Validate(form); errs.HasErrors() {
		logger.Info().Strs("fields", fieldNames(errs)).Msg("member validation failed")
		h.record(ctx, span, op, "invalid")
		h.writeValidationErrors(w, r, errs)
		return
	}

	if err := op.call(ctx, form); err != nil {
		status, msg := statusFor(err)
		level := zerolog.WarnLevel
		if status == http.StatusInternalServerError {
			level = zerolog.ErrorLevel
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		logger.WithLevel(level).Err(err).Int("status", status).Str("email", form.Email).Msg("member service failed")
		h.record(ctx, span, op, outcomeFor(status))
		writeText(w, status, msg)
		return
	}

	logger.Info().Str("email", form.Email).Msg("member " + op.name + " succeeded")
	h.record(ctx, span, op, "ok")

	w.Header().Set("Location", h.location(op))
	writeText(w, http.StatusCreated, op.success)
}

// decodeForm reads exactly one JSON object from body.
func decodeForm(body io.Reader, form *Form) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(form); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after form")
	}
	return nil
}

func (h *Handler) record(ctx context.Context, span trace.Span, op operation, outcome string) {
	span.SetAttributes(attribute.String("member.outcome", outcome))
	h.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op.name),
		attribute.String("outcome", outcome),
	))
}

func (h *Handler) location(op operation) string {
	if h.opts.LegacyLocation {
		return (&url.URL{Scheme: "http", Opaque: h.host + op.legacyPath}).String()
	}
	return h.opts.BaseURL + op.path
}

func (h *Handler) writeValidationErrors(w http.ResponseWriter, r *http.Request, errs ValidationErrors) {
	if acceptsJSON(r) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(ErrorsResponse{Errors: errs})
		return
	}

	sep := "\n"
	if h.opts.LegacyErrors {
		sep = ""
	}
	writeText(w, http.StatusBadRequest, errs.Join(sep))
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrDuplicateEmail):
		return http.StatusConflict, MsgDuplicateEmail
	case errors.Is(err, ErrMemberNotFound):
		return http.StatusNotFound, MsgNotFound
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, MsgRateLimited
	default:
		return http.StatusInternalServerError, MsgInternal
	}
}

func outcomeFor(status int) string {
	switch status {
	case http.StatusConflict:
		return "conflict"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusTooManyRequests:
		return "rate_limited"
	default:
		return "error"
	}
}

// acceptsJSON reports whether the Accept header lists application/json with a
// non-zero quality. Wildcards do not count: text stays the default.
func acceptsJSON(r *http.Request) bool {
	for _, v := range r.Header.Values("Accept") {
		for _, part := range strings.Split(v, ",") {
			mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(part))
			if err != nil || mediaType != "application/json" {
				continue
			}
			if q, ok := params["q"]; ok {
				if f, err := strconv.ParseFloat(q, 64); err != nil || f <= 0 {
					continue
				}
			}
			return true
		}
	}
	return false
}

func fieldNames(errs ValidationErrors) []string {
	names := make([]string, 0, len(errs))
	for _, fe := range errs {
		names = append(names, fe.Field)
	}
	return names
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body))
}
