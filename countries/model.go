package countries

import (
	"fmt"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Unknown is shown for fields no data source could provide
const Unknown = "Unknown"

// Info is everything known about a country, merged from the external API and
// the local dataset.
type Info struct {
	Name         string            `json:"name"`
	OfficialName string            `json:"official_name,omitempty"`
	Capital      string            `json:"capital,omitempty"`
	Region       string            `json:"region,omitempty"`
	Subregion    string            `json:"subregion,omitempty"`
	Languages    []string          `json:"languages"`
	Currencies   []string          `json:"currencies"`
	Population   int64             `json:"population"`
	Area         float64           `json:"area"`
	FlagURL      string            `json:"flag_url,omitempty"`
	CoatOfArms   map[string]string `json:"coat_of_arms,omitempty"`
	Borders      []string          `json:"borders"`
	Timezones    []string          `json:"timezones"`
	Continents   string            `json:"continents,omitempty"`
	Independent  bool              `json:"independent"`
	UNMember     bool              `json:"un_member"`

	NationalAnimal string `json:"national_animal,omitempty"`
	NationalFlower string `json:"national_flower,omitempty"`
	NationalBird   string `json:"national_bird,omitempty"`
	NationalAnthem string `json:"national_anthem,omitempty"`

	MajorCities                []string `json:"major_cities"`
	TouristAttractions         []string `json:"tourist_attractions"`
	RecommendedVisitingSeasons string   `json:"recommended_visiting_seasons,omitempty"`

	FormattedPopulation string `json:"formatted_population"`
	FormattedArea       string `json:"formatted_area"`
}

// FromBasic returns a minimal copy of basic with Unknown in place of missing
// capital and national symbols.
func FromBasic(basic Info) Info {
	return Info{
		Name:           basic.Name,
		Capital:        orUnknown(basic.Capital),
		NationalAnimal: orUnknown(basic.NationalAnimal),
		NationalFlower: orUnknown(basic.NationalFlower),
	}
}

// Refresh recomputes the display fields
func (i *Info) Refresh() {
	i.FormattedPopulation = FormatPopulation(i.Population)
	i.FormattedArea = FormatArea(i.Area)
}

// overlayLocal copies the fields only the local dataset knows about
func (i *Info) overlayLocal(local Info) {
	i.NationalAnimal = local.NationalAnimal
	i.NationalFlower = local.NationalFlower
	i.NationalBird = local.NationalBird
	i.NationalAnthem = local.NationalAnthem
	i.MajorCities = local.MajorCities
	i.TouristAttractions = local.TouristAttractions
	i.RecommendedVisitingSeasons = local.RecommendedVisitingSeasons
}

var printer = message.NewPrinter(language.English)

// FormatPopulation abbreviates a population count: 950, 12.5K, 59.3M, 1.4B.
func FormatPopulation(population int64) string {
	switch {
	case population < 1000:
		return strconv.FormatInt(population, 10)
	case population < 1_000_000:
		return fmt.Sprintf("%.1fK", float64(population)/1000)
	case population < 1_000_000_000:
		return fmt.Sprintf("%.1fM", float64(population)/1_000_000)
	default:
		return fmt.Sprintf("%.1fB", float64(population)/1_000_000_000)
	}
}

// FormatArea renders an area in square kilometres with thousands separators
func FormatArea(area float64) string {
	if area <= 0 {
		return Unknown
	}
	return printer.Sprintf("%.0f km²", area)
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}

func known(s string) bool {
	return s != "" && s != Unknown
}
