package loadtest

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"slices"
	"strconv"

	"github.com/okian/salarycast/internal/domain/columns"
	"github.com/okian/salarycast/internal/domain/profile"
	"github.com/okian/salarycast/internal/domain/types"
	"github.com/okian/salarycast/pkg/logger"
)

// Work years drawn for profiles, inclusive.
const (
	firstWorkYear = 2020
	lastWorkYear  = 2024
)

// Error codes the service returns for deliberately broken profiles.
const (
	codeIncomplete   = "incomplete_profile"
	codeUnresolvable = "unresolvable_label"
	codeUnknown      = "unknown_category"
	codeTypeMismatch = "type_mismatch"
)

// outsideCountries are valid ISO codes tried as unseen categories.
var outsideCountries = []string{"NR", "TV", "PW", "KI", "FJ"}

// fetchCatalog reads the model's feature order and every feature's options.
func fetchCatalog(ctx context.Context, c *client) (*Catalog, error) {
	var info struct {
		ModelName    string   `json:"model_name"`
		FeatureNames []string `json:"feature_names"`
	}
	status, err := c.get(ctx, "/model", &info)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("model endpoint returned status %d", status)
	}

	cat := &Catalog{ModelName: info.ModelName, Model: info.FeatureNames, Options: make(map[string][]types.Category)}
	cat.Features = slices.Clone(info.FeatureNames)
	for _, name := range profile.Required {
		if !slices.Contains(cat.Features, name) {
			cat.Features = append(cat.Features, name)
		}
	}

	for _, name := range cat.Features {
		var resp struct {
			Options []types.Category `json:"options"`
		}
		status, err := c.get(ctx, "/categories/"+name, &resp)
		switch {
		case status == http.StatusNotFound:
			continue
		case err != nil:
			return nil, fmt.Errorf("failed to read categories of %s: %w", name, err)
		case status != http.StatusOK:
			return nil, fmt.Errorf("categories of %s returned status %d", name, status)
		}
		cat.Options[name] = resp.Options
	}
	return cat, nil
}

// generator draws profiles from a catalog.
type generator struct {
	cat *Catalog
	rng *rand.Rand
}

func newGenerator(cat *Catalog, seed uint64) *generator {
	return &generator{cat: cat, rng: rand.New(rand.NewPCG(seed, 1))}
}

// valid returns a profile the service must accept. Categorical values are
// given as codes or display labels at random.
func (g *generator) valid() profile.Profile {
	p := make(profile.Profile, len(g.cat.Features))
	for _, name := range g.cat.Features {
		opts := g.cat.Options[name]
		switch {
		case len(opts) > 0:
			o := opts[g.rng.IntN(len(opts))]
			if g.rng.IntN(2) == 0 {
				p[name] = o.Label
			} else {
				p[name] = o.Code
			}
		case name == columns.WorkYear:
			p[name] = strconv.Itoa(firstWorkYear + g.rng.IntN(lastWorkYear-firstWorkYear+1))
		default:
			p[name] = "0"
		}
	}
	return p
}

// broken returns a profile with one defect chosen by kind and the response
// the service must give for it.
func (g *generator) broken(kind int) Case {
	p := g.valid()
	switch kind % 4 {
	case 0:
		delete(p, profile.Required[g.rng.IntN(len(profile.Required))])
		return Case{Profile: p, WantStatus: http.StatusBadRequest, WantCode: codeIncomplete}
	case 1:
		p[columns.ExperienceLevel] = "Principal"
		return Case{Profile: p, WantStatus: http.StatusUnprocessableEntity, WantCode: codeUnresolvable}
	case 2:
		if code, ok := g.outsideCountry(); ok {
			p[columns.CompanyLocation] = code
			return Case{Profile: p, WantStatus: http.StatusUnprocessableEntity, WantCode: codeUnknown}
		}
		p[columns.CompanyLocation] = "Atlantis"
		return Case{Profile: p, WantStatus: http.StatusUnprocessableEntity, WantCode: codeUnresolvable}
	default:
		if _, coded := g.cat.Options[columns.WorkYear]; coded || !slices.Contains(g.cat.Model, columns.WorkYear) {
			return g.broken(1)
		}
		p[columns.WorkYear] = "soon"
		return Case{Profile: p, WantStatus: http.StatusBadRequest, WantCode: codeTypeMismatch}
	}
}

// outsideCountry finds a real country code the location codec has not seen.
func (g *generator) outsideCountry() (string, bool) {
	opts, ok := g.cat.Options[columns.CompanyLocation]
	if !ok {
		return "", false
	}
	for _, code := range outsideCountries {
		if !slices.ContainsFunc(opts, func(c types.Category) bool { return c.Code == code }) {
			return code, true
		}
	}
	return "", false
}

// generateCases creates n cases, a share of them broken.
func generateCases(ctx context.Context, cfg *Config, cat *Catalog) []Case {
	g := newGenerator(cat, cfg.Seed)
	cases := make([]Case, cfg.NumProfiles)
	broken := 0
	for i := range cases {
		if g.rng.Float64() < cfg.InvalidRatio {
			cases[i] = g.broken(broken)
			broken++
			continue
		}
		cases[i] = Case{Profile: g.valid(), WantStatus: http.StatusOK}
	}
	logger.Get().Info(ctx, "generated profiles",
		logger.Int("count", len(cases)),
		logger.Int("broken", broken),
		logger.Int("features", len(cat.Features)),
	)
	return cases
}
