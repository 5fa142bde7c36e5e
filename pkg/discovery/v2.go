package discovery

import (
	"context"
	"path"
	"strconv"

	"go.uber.org/zap"

	"github.com/geteduroam/discogen/pkg/catalog"
	"github.com/geteduroam/discogen/pkg/logging"
	"github.com/geteduroam/discogen/pkg/models"
)

// V2 generates discovery/v2: per language, an index of institutions and one
// provider file per institution with its profiles.
type V2 struct {
	graph     *catalog.Graph
	builder   *ProfileBuilder
	overrides Overrides
	countries []string
	languages []string
}

// NewV2 returns the version 2 strategy for the given languages.
func NewV2(graph *catalog.Graph, builder *ProfileBuilder, overrides Overrides, countries, languages []string) *V2 {
	return &V2{graph: graph, builder: builder, overrides: overrides, countries: countries, languages: languages}
}

func (g *V2) Version() int {
	return 2
}

func (g *V2) Generate(ctx context.Context, seq int) ([]File, error) {
	var files []File
	for _, lang := range g.languages {
		langFiles, err := g.generateLang(ctx, seq, lang)
		if err != nil {
			return nil, err
		}
		files = append(files, langFiles...)
	}
	return files, nil
}

func providerRef(id int) string {
	return "cat_" + strconv.Itoa(id)
}

func (g *V2) generateLang(ctx context.Context, seq int, lang string) ([]File, error) {
	dir := path.Join("v2", lang)
	index := models.DocumentV2{Version: 2, Seq: seq, Lang: lang, Instances: []models.InstanceV2{}}
	var providerFiles []File

	add := func(ref, name, country string, keywords []string, profiles []models.ProfileEntry) {
		if keywords == nil {
			keywords = []string{}
		}
		index.Instances = append(index.Instances, models.InstanceV2{
			Name:     name,
			Country:  country,
			Keywords: keywords,
			Provider: ref,
		})
		providerFiles = append(providerFiles, File{
			Dir:  dir,
			Base: "provider-" + ref,
			Doc: models.ProviderDocument{
				Version:  2,
				Seq:      seq,
				Lang:     lang,
				Provider: ref,
				Profiles: profiles,
			},
		})
	}

	for _, extra := range g.overrides.Extra {
		add(extra.ID, extra.Name, extra.Country, nil, extra.Profiles)
	}

	providers, err := g.graph.ProvidersForCountries(ctx, g.countries, lang)
	if err != nil {
		return nil, err
	}
	log := logging.FromContext(ctx).With(zap.String("lang", lang))
	for _, p := range providers {
		if g.overrides.HiddenInstitutions[p.EntityID()] {
			continue
		}
		profiles, err := g.builder.Build(ctx, p)
		if err != nil {
			return nil, err
		}
		if len(profiles) == 0 {
			log.Debug("skipping institution without profiles", zap.Int("provider", p.EntityID()))
			continue
		}
		title, err := p.Title(ctx)
		if err != nil {
			return nil, err
		}
		country, err := p.Country(ctx)
		if err != nil {
			return nil, err
		}
		add(providerRef(p.EntityID()), title, country, g.overrides.Keywords[p.EntityID()], profiles)
	}
	sortInstancesV2(index.Instances)

	return append([]File{{Dir: dir, Base: "discovery", Doc: index}}, providerFiles...), nil
}
