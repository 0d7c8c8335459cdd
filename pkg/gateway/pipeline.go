package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"lentera-hq/gateway/pkg/gateway/middleware"
	"lentera-hq/gateway/pkg/gateway/types"
	"lentera-hq/gateway/pkg/upstream"
)

// maxInboundBodyBytes caps what we are willing to buffer from a caller.
const maxInboundBodyBytes = 1 << 20

// Observer receives per-request measurements. Implemented by the metrics
// collector; a nil Observer disables observation.
type Observer interface {
	ObserveRequest(endpoint, upstreamName, code string, status int, latency time.Duration)
	ObserveSanitized(endpoint, upstreamName string)
	ObserveFailSilent(endpoint string)
}

// AuditEntry is the record kept for every proxied request.
type AuditEntry struct {
	RequestID string
	Endpoint  string
	Upstream  string
	Method    string
	Path      string
	Status    int
	Code      string
	Latency   time.Duration
	At        time.Time
}

// Recorder persists audit entries. Implementations must not block the
// request path; a nil Recorder disables auditing.
type Recorder interface {
	Record(entry AuditEntry)
}

// Executor runs descriptors against upstreams. One Executor serves every
// endpoint; all per-endpoint behavior lives in the Descriptor.
type Executor struct {
	upstreams *upstream.Registry
	sanitizer *Sanitizer
	observer  Observer
	recorder  Recorder
	now       func() time.Time
}

// NewExecutor wires the pipeline. observer and recorder may be nil.
func NewExecutor(upstreams *upstream.Registry, sanitizer *Sanitizer, observer Observer, recorder Recorder) *Executor {
	if sanitizer == nil {
		sanitizer = NewSanitizer()
	}
	return &Executor{
		upstreams: upstreams,
		sanitizer: sanitizer,
		observer:  observer,
		recorder:  recorder,
		now:       time.Now,
	}
}

// Handler exposes a descriptor as an http.HandlerFunc. Every exit path
// produces an envelope; the handler never writes anything else.
func (e *Executor) Handler(d *Descriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := e.now()
		env, status := e.execute(d, r)
		latency := e.now().Sub(start)

		if e.observer != nil {
			e.observer.ObserveRequest(d.Name, d.Upstream, env.Code, status, latency)
		}
		if e.recorder != nil {
			e.recorder.Record(AuditEntry{
				RequestID: middleware.GetRequestID(r.Context()),
				Endpoint:  d.Name,
				Upstream:  d.Upstream,
				Method:    r.Method,
				Path:      r.URL.Path,
				Status:    status,
				Code:      env.Code,
				Latency:   latency,
				At:        start,
			})
		}

		WriteJSON(w, status, env)
	}
}

// execute runs the stages in order: authenticate, validate, build, call,
// normalize, sanitize. The first failing stage short-circuits; nothing is
// sent upstream until the request has fully validated.
func (e *Executor) execute(d *Descriptor, r *http.Request) (*types.Envelope, int) {
	if err := CheckAuth(d, r); err != nil {
		return failureEnvelope(err)
	}

	def, client, err := e.upstreams.Resolve(d.Upstream)
	if err != nil {
		return failureEnvelope(err)
	}

	body, err := e.readBody(d, r)
	if err != nil {
		return failureEnvelope(err)
	}

	if err := CheckBody(d, body); err != nil {
		return failureEnvelope(err)
	}

	coerced, err := CoerceBody(d, body)
	if err != nil {
		return failureEnvelope(err)
	}

	req, err := BuildRequest(d, def, r, routeParams(r), coerced, e.now())
	if err != nil {
		return failureEnvelope(err)
	}

	result, err := client.Do(r.Context(), req, d.Timeout)
	if err != nil {
		if d.FailSilent {
			return e.silentFallback(d), http.StatusOK
		}
		return failureEnvelope(err)
	}

	if d.CoerceBenignFieldError && IsBenignFieldError(result.StatusCode, result.Body) {
		return BenignFieldErrorEnvelope(), http.StatusOK
	}

	parsed, parseErr := ParseBody(result.Body)

	if result.OK() {
		if parseErr != nil {
			if d.FailSilent {
				return e.silentFallback(d), http.StatusOK
			}
			return EnvelopeForParseError(parseErr), http.StatusBadGateway
		}
		env := NormalizeSuccess(d, parsed)
		if sanitized := e.sanitizer.SanitizeEnvelope(env); sanitized != env {
			e.observeSanitized(d)
			env = sanitized
		}
		return env, http.StatusOK
	}

	if d.FailSilent {
		return e.silentFallback(d), http.StatusOK
	}

	env, status := e.sanitizer.SanitizeUpstreamFailure(d, result.StatusCode, result.Body, parsed)
	if status == http.StatusInternalServerError && env.Message == GenericInternalMessage {
		e.observeSanitized(d)
	}
	return env, status
}

// readBody parses the inbound JSON body for descriptors whose upstream
// call carries one. Query-encoded endpoints never read the body.
func (e *Executor) readBody(d *Descriptor, r *http.Request) (map[string]any, error) {
	if d.Encoding == EncodingQuery || r.Body == nil {
		return nil, nil
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxInboundBodyBytes))
	if err != nil {
		return nil, &ValidationError{Fields: map[string][]string{
			"body": {"could not be read"},
		}}
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, &ValidationError{Fields: map[string][]string{
			"body": {"must be a JSON object"},
		}}
	}
	return body, nil
}

// silentFallback is the search-endpoint contract: an empty successful list
// instead of an error, so a broken shipping provider degrades to "no
// results" rather than a failed checkout page.
func (e *Executor) silentFallback(d *Descriptor) *types.Envelope {
	if e.observer != nil {
		e.observer.ObserveFailSilent(d.Name)
	}
	return types.OKList(nil)
}

func (e *Executor) observeSanitized(d *Descriptor) {
	if e.observer != nil {
		e.observer.ObserveSanitized(d.Name, d.Upstream)
	}
}

// failureEnvelope maps a pipeline error to its envelope and HTTP status.
func failureEnvelope(err error) (*types.Envelope, int) {
	env := envelopeForError(err)
	return env, types.HTTPStatus(env.Code)
}

// routeParams collects the chi URL parameters for path expansion.
func routeParams(r *http.Request) map[string]string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return nil
	}
	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, key := range rctx.URLParams.Keys {
		if key == "*" {
			continue
		}
		params[key] = rctx.URLParams.Values[i]
	}
	return params
}
