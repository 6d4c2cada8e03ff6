package treats

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const tracerName = "pearls-treats"

const ShopName = "Pearl's Cat Food Treats"

var Treats = []string{
	"Pearl's Fish Bites",
	"Pearl's Vegan Selection",
	"Pearl's Chocolate Dessert",
}

//go:embed templates/page.html.tmpl
var templates embed.FS

var pageTemplate = template.Must(template.ParseFS(templates, "templates/page.html.tmpl"))

// Fragment is the counter section of the page: either the order form with the
// visitor number or the unavailable notice.
type Fragment struct {
	Available bool
	Visitor   int64
	Treats    []string
}

// Document is one rendered page along with what went into it.
type Document struct {
	Topology Topology
	Counter  Fragment
	Body     []byte
}

type banner struct {
	MultiServer bool
	ServerName  string
}

type page struct {
	Shop    string
	Banner  banner
	Counter Fragment
}

type RendererOption func(renderer *Renderer)

func ServerName(name string) RendererOption {
	return func(renderer *Renderer) {
		renderer.serverName = name
	}
}

func Logger(log *zerolog.Logger) RendererOption {
	return func(renderer *Renderer) {
		renderer.log = log
	}
}

type Renderer struct {
	counter    *VisitCounter
	serverName string
	log        *zerolog.Logger
}

func NewRenderer(counter *VisitCounter, options ...RendererOption) *Renderer {
	renderer := &Renderer{counter: counter}
	for _, option := range options {
		option(renderer)
	}
	if renderer.log == nil {
		renderer.log = &log.Logger
	}

	return renderer
}

// RenderCounterSection records the visit. On failure the returned fragment is
// the unavailable notice and the error is a StoreUnavailable.
func (r *Renderer) RenderCounterSection(ctx context.Context) (Fragment, error) {
	visitor, err := r.counter.Visit(ctx)
	if err != nil {
		return Fragment{Available: false}, err
	}

	return Fragment{Available: true, Visitor: visitor, Treats: Treats}, nil
}

// RenderBanner writes the topology banner alone.
func (r *Renderer) RenderBanner(w io.Writer, topology Topology) error {
	return pageTemplate.ExecuteTemplate(w, "banner", r.banner(topology))
}

// Render produces the whole page. Store failures are absorbed into the
// fallback fragment; only template faults are returned.
func (r *Renderer) Render(ctx context.Context, headers http.Header) (*Document, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "render page")
	defer span.End()

	topology := ClassifyTopology(headers)
	span.SetAttributes(attribute.String("page.topology", topology.String()))

	fragment, err := r.RenderCounterSection(ctx)
	if err != nil {
		r.log.Warn().Err(err).Str("topology", topology.String()).Msg("counter store unavailable, rendering fallback")
	}
	span.SetAttributes(attribute.Bool("page.orders_available", fragment.Available))

	var body bytes.Buffer
	if err := pageTemplate.ExecuteTemplate(&body, "page", page{
		Shop:    ShopName,
		Banner:  r.banner(topology),
		Counter: fragment,
	}); err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to render page")
	}

	return &Document{Topology: topology, Counter: fragment, Body: body.Bytes()}, nil
}

func (r *Renderer) banner(topology Topology) banner {
	return banner{MultiServer: topology == MultiServer, ServerName: r.serverName}
}
