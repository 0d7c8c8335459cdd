package gateway

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"lentera-hq/gateway/pkg/upstream"
)

// Body encodings an upstream may require.
const (
	// EncodingJSON forwards the inbound body as a JSON object.
	EncodingJSON = "json"

	// EncodingForm re-encodes the body fields as
	// application/x-www-form-urlencoded, for upstreams that predate JSON
	// bodies. Parameter names are forwarded exactly as configured,
	// including case.
	EncodingForm = "form"

	// EncodingQuery sends no body; inbound query parameters are forwarded
	// on the upstream URL.
	EncodingQuery = "query"
)

// Response shapes a descriptor commits to.
const (
	// ShapeList guarantees data is an array, whatever the upstream sent.
	ShapeList = "list"

	// ShapeDetail preserves the upstream object under data, never
	// array-wrapped.
	ShapeDetail = "detail"

	// ShapeRaw relays the recognized success payload without reshaping.
	ShapeRaw = "raw"
)

// Field kinds the inbound validator understands.
const (
	// KindString requires a non-empty string after trimming.
	KindString = "string"

	// KindNumber accepts a JSON number or a numeric string.
	KindNumber = "number"

	// KindInteger is KindNumber plus coercion to an integer in the
	// outbound body (payment amounts).
	KindInteger = "integer"

	// KindPhone requires a string of digits, optionally prefixed with +.
	KindPhone = "phone"
)

// FieldSpec declares one inbound body field the validator checks before
// any network call is spent.
type FieldSpec struct {
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"`
	Required bool   `yaml:"required"`
}

// Descriptor is the per-endpoint configuration record consumed by the
// generic pipeline. Everything that used to vary between the copy-pasted
// route handlers lives here.
type Descriptor struct {
	// Name identifies the endpoint in logs, metrics, and audit records.
	Name string `yaml:"name"`

	// Method and Path define the inbound route (chi pattern, e.g.
	// "/api/finance/order-validation/{id}/approve").
	Method string `yaml:"method"`
	Path   string `yaml:"path"`

	// Upstream names the target service in the upstream registry.
	Upstream string `yaml:"upstream"`

	// UpstreamPath is the outbound path template; {param} placeholders are
	// expanded from the inbound route. Defaults to Path.
	UpstreamPath string `yaml:"upstream_path"`

	// UpstreamMethod overrides the outbound method. Defaults to Method.
	UpstreamMethod string `yaml:"upstream_method"`

	// RequireAuth demands a well-formed inbound bearer token.
	RequireAuth bool `yaml:"require_auth"`

	// Encoding selects the outbound body encoding.
	Encoding string `yaml:"encoding"`

	// Shape selects the response reconciliation policy.
	Shape string `yaml:"shape"`

	// FailSilent swallows network and parse failures into an empty success
	// list. Reserved for search/autocomplete endpoints where the UI treats
	// an empty result and a failed lookup identically.
	FailSilent bool `yaml:"fail_silent"`

	// Timeout bounds the upstream call for this endpoint. Zero inherits
	// the upstream's default.
	Timeout time.Duration `yaml:"timeout"`

	// Fields are the inbound body checks run before the upstream call.
	Fields []FieldSpec `yaml:"fields"`

	// FormParams fixes the outbound form parameter order-insensitive set
	// for EncodingForm endpoints: inbound field name -> outbound parameter
	// name (case preserved exactly as configured).
	FormParams map[string]string `yaml:"form_params"`

	// CoerceBenignFieldError opts this endpoint into the known-upstream-bug
	// workaround: a 500 whose body carries the provider's benign error
	// string is treated as success with a warning. Never enable this for
	// new endpoints; it exists to match one broken upstream write path and
	// goes away when that upstream is fixed.
	CoerceBenignFieldError bool `yaml:"coerce_benign_field_error"`
}

// Validate checks the descriptor for internal consistency.
func (d *Descriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("descriptor name is required")
	}
	switch d.Method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		return fmt.Errorf("descriptor %q: unsupported method %q", d.Name, d.Method)
	}
	if !strings.HasPrefix(d.Path, "/") {
		return fmt.Errorf("descriptor %q: path must start with /", d.Name)
	}
	if d.Upstream == "" {
		return fmt.Errorf("descriptor %q: upstream is required", d.Name)
	}
	switch d.Encoding {
	case EncodingJSON, EncodingForm, EncodingQuery:
	default:
		return fmt.Errorf("descriptor %q: unknown encoding %q", d.Name, d.Encoding)
	}
	switch d.Shape {
	case ShapeList, ShapeDetail, ShapeRaw:
	default:
		return fmt.Errorf("descriptor %q: unknown shape %q", d.Name, d.Shape)
	}
	if d.Encoding == EncodingForm && len(d.FormParams) == 0 {
		return fmt.Errorf("descriptor %q: form encoding requires form_params", d.Name)
	}
	for _, f := range d.Fields {
		if f.Name == "" {
			return fmt.Errorf("descriptor %q: field spec with empty name", d.Name)
		}
		switch f.Kind {
		case KindString, KindNumber, KindInteger, KindPhone:
		default:
			return fmt.Errorf("descriptor %q: field %q has unknown kind %q", d.Name, f.Name, f.Kind)
		}
	}
	return nil
}

// applyDefaults fills derivable fields.
func (d *Descriptor) applyDefaults() {
	if d.UpstreamPath == "" {
		d.UpstreamPath = d.Path
	}
	if d.UpstreamMethod == "" {
		d.UpstreamMethod = d.Method
	}
	if d.Encoding == "" {
		if d.Method == http.MethodGet {
			d.Encoding = EncodingQuery
		} else {
			d.Encoding = EncodingJSON
		}
	}
	if d.Shape == "" {
		d.Shape = ShapeDetail
	}
}

// Registry is the validated descriptor set the server builds routes from.
type Registry struct {
	descriptors []*Descriptor
	byName      map[string]*Descriptor
}

// NewRegistry validates and indexes a descriptor set.
func NewRegistry(descriptors []*Descriptor) (*Registry, error) {
	r := &Registry{byName: make(map[string]*Descriptor, len(descriptors))}

	for _, d := range descriptors {
		d.applyDefaults()
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.byName[d.Name]; dup {
			return nil, fmt.Errorf("duplicate descriptor %q", d.Name)
		}
		r.byName[d.Name] = d
		r.descriptors = append(r.descriptors, d)
	}

	return r, nil
}

// All returns the descriptors in declaration order.
func (r *Registry) All() []*Descriptor {
	return r.descriptors
}

// Get returns a descriptor by name.
func (r *Registry) Get(name string) (*Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// descriptorFile is the YAML document shape for an endpoint file.
type descriptorFile struct {
	Endpoints []*Descriptor `yaml:"endpoints"`
}

// LoadDescriptors reads a YAML endpoint file and returns a validated
// registry. An empty path yields the compiled-in default endpoint set.
func LoadDescriptors(path string) (*Registry, error) {
	if path == "" {
		return NewRegistry(DefaultDescriptors())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read endpoint file %q: %w", path, err)
	}

	var file descriptorFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse endpoint file %q: %w", path, err)
	}
	if len(file.Endpoints) == 0 {
		return nil, fmt.Errorf("endpoint file %q declares no endpoints", path)
	}

	return NewRegistry(file.Endpoints)
}

// DefaultDescriptors is the standard endpoint set the dashboard ships with.
// Deployments with an endpoint file replace it wholesale.
func DefaultDescriptors() []*Descriptor {
	return []*Descriptor{
		{
			Name:        "admin_order_list",
			Method:      http.MethodGet,
			Path:        "/api/admin/order",
			Upstream:    upstream.NameBackend,
			RequireAuth: true,
			Shape:       ShapeList,
		},
		{
			Name:        "admin_order_detail",
			Method:      http.MethodGet,
			Path:        "/api/admin/order/{id}",
			Upstream:    upstream.NameBackend,
			RequireAuth: true,
			Shape:       ShapeDetail,
		},
		{
			Name:        "admin_order_create",
			Method:      http.MethodPost,
			Path:        "/api/admin/order",
			Upstream:    upstream.NameBackend,
			RequireAuth: true,
			Shape:       ShapeDetail,
			Timeout:     30 * time.Second,
			Fields: []FieldSpec{
				{Name: "produk", Kind: KindString, Required: true},
				{Name: "customer_id", Kind: KindNumber, Required: true},
				{Name: "harga", Kind: KindInteger, Required: true},
			},
		},
		{
			Name:        "sales_lead_list",
			Method:      http.MethodGet,
			Path:        "/api/sales/lead",
			Upstream:    upstream.NameBackend,
			RequireAuth: true,
			Shape:       ShapeList,
		},
		{
			Name:        "sales_lead_create",
			Method:      http.MethodPost,
			Path:        "/api/sales/lead",
			Upstream:    upstream.NameBackend,
			RequireAuth: true,
			Shape:       ShapeDetail,
			Fields: []FieldSpec{
				{Name: "nama", Kind: KindString, Required: true},
				{Name: "wa", Kind: KindPhone, Required: true},
			},
		},
		{
			Name:                   "finance_order_approve",
			Method:                 http.MethodPost,
			Path:                   "/api/finance/order-validation/{id}/approve",
			Upstream:               upstream.NameBackend,
			RequireAuth:            true,
			Shape:                  ShapeDetail,
			CoerceBenignFieldError: true,
		},
		{
			Name:         "shipping_cost",
			Method:       http.MethodPost,
			Path:         "/api/shipping/cost",
			Upstream:     upstream.NameShippingV1,
			UpstreamPath: "/starter/cost",
			RequireAuth:  true,
			Encoding:     EncodingForm,
			Shape:        ShapeList,
			Timeout:      30 * time.Second,
			Fields: []FieldSpec{
				{Name: "origin", Kind: KindString, Required: true},
				{Name: "destination", Kind: KindString, Required: true},
				{Name: "weight", Kind: KindNumber, Required: true},
				{Name: "courier", Kind: KindString, Required: true},
			},
			FormParams: map[string]string{
				"origin":      "origin",
				"destination": "destination",
				"weight":      "weight",
				"courier":     "courier",
				"price":       "price",
			},
		},
		{
			Name:         "shipping_city_search",
			Method:       http.MethodGet,
			Path:         "/api/shipping/city",
			Upstream:     upstream.NameShippingV1,
			UpstreamPath: "/starter/city",
			Shape:        ShapeList,
			FailSilent:   true,
			Timeout:      5 * time.Second,
		},
		{
			Name:         "shipping_destination_search",
			Method:       http.MethodGet,
			Path:         "/api/shipping/destination",
			Upstream:     upstream.NameShippingV2,
			UpstreamPath: "/tariff/api/v1/destination/search",
			Shape:        ShapeList,
			FailSilent:   true,
			Timeout:      5 * time.Second,
		},
		{
			Name:         "payment_create",
			Method:       http.MethodPost,
			Path:         "/api/payment",
			Upstream:     upstream.NamePayment,
			UpstreamPath: "/v1/charge",
			RequireAuth:  true,
			Shape:        ShapeDetail,
			Timeout:      30 * time.Second,
			Fields: []FieldSpec{
				{Name: "order_id", Kind: KindString, Required: true},
				{Name: "amount", Kind: KindInteger, Required: true},
			},
		},
		{
			Name:         "otp_send",
			Method:       http.MethodPost,
			Path:         "/api/otp/send",
			Upstream:     upstream.NameMessaging,
			UpstreamPath: "/v1/otp/send",
			RequireAuth:  true,
			Shape:        ShapeDetail,
			Fields: []FieldSpec{
				{Name: "customer_id", Kind: KindNumber, Required: true},
				{Name: "wa", Kind: KindPhone, Required: true},
			},
		},
		{
			Name:         "webinar_create",
			Method:       http.MethodPost,
			Path:         "/api/webinar",
			Upstream:     upstream.NameWebinar,
			UpstreamPath: "/v2/webinars",
			RequireAuth:  true,
			Shape:        ShapeDetail,
			Fields: []FieldSpec{
				{Name: "topic", Kind: KindString, Required: true},
				{Name: "start_time", Kind: KindString, Required: true},
			},
		},
	}
}
