package countries

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/masingita/countrybot/metrics"
	"github.com/rs/zerolog/log"
)

const (
	DetailsTTL  = 12 * time.Hour
	AllNamesTTL = 24 * time.Hour
)

// Source is a remote country data provider
type Source interface {
	ByName(ctx context.Context, name string) (*APICountry, error)
	AllNames(ctx context.Context) ([]string, error)
}

// Service answers country questions from a remote Source, falling back to
// the local dataset whenever the source fails or does not know the answer.
type Service struct {
	source  Source
	local   map[string]Info
	details *Cache[Info]
	matches *Cache[[]string]
	all     *Cache[[]string]
}

// NewService creates a service. source may be nil, in which case only the
// local dataset is used.
func NewService(source Source, local map[string]Info, matchesTTL time.Duration) *Service {
	if local == nil {
		local = map[string]Info{}
	}
	return &Service{
		source:  source,
		local:   local,
		details: NewCache[Info](DetailsTTL),
		matches: NewCache[[]string](matchesTTL),
		all:     NewCache[[]string](AllNamesTTL),
	}
}

// Info returns everything known about the named country
func (s *Service) Info(ctx context.Context, name string) (Info, bool) {
	key := normalizeName(name)
	if key == "" {
		return Info{}, false
	}
	if info, ok := s.details.Get(key); ok {
		metrics.RecordCountryLookup("info", "cache")
		return info, true
	}

	info, source, ok := s.lookup(ctx, key)
	metrics.RecordCountryLookup("info", source)
	if !ok {
		return Info{}, false
	}
	s.details.Set(key, info)
	metrics.SetCountryCacheEntries("details", s.details.Len())
	return info, true
}

func (s *Service) lookup(ctx context.Context, key string) (Info, string, bool) {
	local, hasLocal := s.local[key]

	if s.source != nil {
		apiCountry, err := s.source.ByName(ctx, key)
		switch {
		case err == nil:
			info := Info{Name: key}
			info.Enrich(apiCountry)
			if hasLocal {
				info.overlayLocal(local)
			}
			return info, "api", true
		case errors.Is(err, ErrNotFound):
			log.Debug().Ctx(ctx).Str("country", key).Msg("Country not known to API")
		default:
			log.Warn().Ctx(ctx).Err(err).Str("country", key).Msg("Failed to fetch country data from API, using local data")
		}
	}

	if hasLocal {
		return local, "local", true
	}
	return Info{}, "miss", false
}

// Property returns a single property of a country as display text
func (s *Service) Property(ctx context.Context, country, property string) string {
	info, ok := s.Info(ctx, country)
	if !ok {
		return "Country not found"
	}

	switch normalizeProperty(property) {
	case "capital":
		return orUnknown(info.Capital)
	case "nationalanimal":
		return orUnknown(info.NationalAnimal)
	case "nationalflower":
		return orUnknown(info.NationalFlower)
	case "nationalbird":
		return orUnknown(info.NationalBird)
	case "population":
		return info.FormattedPopulation
	case "area":
		return info.FormattedArea
	case "region":
		return orUnknown(info.Region)
	case "languages":
		return orUnknown(strings.Join(info.Languages, ", "))
	case "currencies":
		return orUnknown(strings.Join(info.Currencies, ", "))
	default:
		return "Property not available"
	}
}

// WithPrefix lists the lowercase names of countries starting with prefix
func (s *Service) WithPrefix(ctx context.Context, prefix string) []string {
	p := normalizeName(prefix)
	if cached, ok := s.matches.Get(p); ok {
		metrics.RecordCountryLookup("prefix", "cache")
		return slices.Clone(cached)
	}

	source := "api"
	names := filterPrefix(s.remoteNames(ctx), p)
	if len(names) == 0 {
		source = "local"
		names = filterPrefix(s.localNames(), p)
	}
	metrics.RecordCountryLookup("prefix", source)

	if len(names) > 0 {
		s.matches.Set(p, names)
		metrics.SetCountryCacheEntries("matches", s.matches.Len())
	}
	return slices.Clone(names)
}

// All lists the lowercase names of all known countries
func (s *Service) All(ctx context.Context) []string {
	if names := s.remoteNames(ctx); len(names) > 0 {
		return slices.Clone(names)
	}
	metrics.RecordCountryLookup("all", "local")
	return s.localNames()
}

// remoteNames returns the sorted API country list, nil when unavailable
func (s *Service) remoteNames(ctx context.Context) []string {
	if cached, ok := s.all.Get("all"); ok {
		metrics.RecordCountryLookup("all", "cache")
		return cached
	}
	if s.source == nil {
		return nil
	}

	names, err := s.source.AllNames(ctx)
	if err != nil {
		log.Warn().Ctx(ctx).Err(err).Msg("Failed to fetch country list from API")
		return nil
	}
	if len(names) == 0 {
		return nil
	}
	slices.Sort(names)
	names = slices.Compact(names)
	metrics.RecordCountryLookup("all", "api")
	s.all.Set("all", names)
	return names
}

func (s *Service) localNames() []string {
	return slices.Sorted(maps.Keys(s.local))
}

// Format renders a human readable summary of a country
func (s *Service) Format(ctx context.Context, country string, detailed bool) string {
	info, ok := s.Info(ctx, country)
	if !ok {
		return "Country information not available."
	}

	var b strings.Builder
	b.WriteString("Information about " + info.Name + ":\n\n")
	b.WriteString("🏛️ Capital: " + orUnknown(info.Capital) + "\n")

	if detailed {
		if info.Region != "" {
			b.WriteString("🌍 Region: " + info.Region)
			if info.Subregion != "" {
				b.WriteString(" (" + info.Subregion + ")")
			}
			b.WriteString("\n")
		}
		if info.Population > 0 {
			b.WriteString("👥 Population: " + info.FormattedPopulation + "\n")
		}
		if info.Area > 0 {
			b.WriteString("📏 Area: " + info.FormattedArea + "\n")
		}
		if len(info.Languages) > 0 {
			b.WriteString("🗣️ Languages: " + strings.Join(info.Languages, ", ") + "\n")
		}
		if len(info.Currencies) > 0 {
			b.WriteString("💰 Currencies: " + strings.Join(info.Currencies, ", ") + "\n")
		}
	}

	if known(info.NationalAnimal) {
		b.WriteString("🐾 National Animal: " + info.NationalAnimal + "\n")
	}
	if known(info.NationalFlower) {
		b.WriteString("🌸 National Flower: " + info.NationalFlower + "\n")
	}
	if detailed && known(info.NationalBird) {
		b.WriteString("🦜 National Bird: " + info.NationalBird + "\n")
	}

	return b.String()
}

// PurgeExpired drops expired cache entries
func (s *Service) PurgeExpired() int {
	removed := s.details.Purge() + s.matches.Purge() + s.all.Purge()
	metrics.SetCountryCacheEntries("details", s.details.Len())
	metrics.SetCountryCacheEntries("matches", s.matches.Len())
	return removed
}

func filterPrefix(names []string, prefix string) []string {
	var out []string
	for _, name := range names {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	return out
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// normalizeProperty maps "National Animal", "national_animal" and
// "nationalAnimal" to the same key
func normalizeProperty(property string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '_' || r == '-' {
			return -1
		}
		return r
	}, strings.ToLower(property))
}
