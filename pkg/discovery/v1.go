package discovery

import (
	"context"

	"go.uber.org/zap"

	"github.com/geteduroam/discogen/pkg/catalog"
	"github.com/geteduroam/discogen/pkg/logging"
	"github.com/geteduroam/discogen/pkg/models"
)

// GeoPrecision is the number of decimals published for locations.
const GeoPrecision = 3

// V1 generates discovery/v1: a single document with every institution and its profiles.
type V1 struct {
	graph     *catalog.Graph
	builder   *ProfileBuilder
	overrides Overrides
	countries []string
	lang      string
}

// NewV1 returns the version 1 strategy. An empty countries list selects
// every federation in the catalog.
func NewV1(graph *catalog.Graph, builder *ProfileBuilder, overrides Overrides, countries []string, lang string) *V1 {
	return &V1{graph: graph, builder: builder, overrides: overrides, countries: countries, lang: lang}
}

func (g *V1) Version() int {
	return 1
}

func (g *V1) Generate(ctx context.Context, seq int) ([]File, error) {
	doc, err := g.Document(ctx, seq)
	if err != nil {
		return nil, err
	}
	return []File{{Dir: "v1", Base: "discovery", Doc: doc}}, nil
}

// Document builds the version 1 document.
func (g *V1) Document(ctx context.Context, seq int) (models.Document, error) {
	instances := append([]models.Instance(nil), g.overrides.Extra...)

	providers, err := g.graph.ProvidersForCountries(ctx, g.countries, g.lang)
	if err != nil {
		return models.Document{}, err
	}
	log := logging.FromContext(ctx)
	for _, p := range providers {
		if g.overrides.HiddenInstitutions[p.EntityID()] {
			log.Debug("skipping hidden institution", zap.Int("provider", p.EntityID()))
			continue
		}
		profiles, err := g.builder.Build(ctx, p)
		if err != nil {
			return models.Document{}, err
		}
		if len(profiles) == 0 {
			log.Debug("skipping institution without profiles", zap.Int("provider", p.EntityID()))
			continue
		}
		inst, err := instance(ctx, p)
		if err != nil {
			return models.Document{}, err
		}
		inst.Profiles = profiles
		instances = append(instances, inst)
	}
	sortInstances(instances)

	return models.Document{Version: 1, Seq: seq, Instances: instances}, nil
}

func instance(ctx context.Context, p *catalog.Provider) (models.Instance, error) {
	title, err := p.Title(ctx)
	if err != nil {
		return models.Instance{}, err
	}
	country, err := p.Country(ctx)
	if err != nil {
		return models.Instance{}, err
	}
	geo, err := p.RoundedGeo(ctx, GeoPrecision)
	if err != nil {
		return models.Instance{}, err
	}
	return models.Instance{
		Name:    title,
		Country: country,
		CatIDP:  p.EntityID(),
		Geo:     geo,
	}, nil
}
