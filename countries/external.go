package countries

import (
	"maps"
	"slices"
	"strings"
)

// APICountry is a country document as returned by the REST Countries v3.1 API
type APICountry struct {
	Name struct {
		Common   string `json:"common"`
		Official string `json:"official"`
	} `json:"name"`
	Capital     []string               `json:"capital"`
	Region      string                 `json:"region"`
	Subregion   string                 `json:"subregion"`
	Languages   map[string]string      `json:"languages"`
	Currencies  map[string]APICurrency `json:"currencies"`
	Population  int64                  `json:"population"`
	Area        float64                `json:"area"`
	Flags       map[string]string      `json:"flags"`
	CoatOfArms  map[string]string      `json:"coatOfArms"`
	Borders     []string               `json:"borders"`
	Timezones   []string               `json:"timezones"`
	Continents  []string               `json:"continents"`
	Independent *bool                  `json:"independent"`
	UNMember    *bool                  `json:"unMember"`
}

// APICurrency is one entry of a country's currencies object
type APICurrency struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// Enrich merges an API document into the info. Fields the document leaves
// empty keep their current value.
func (i *Info) Enrich(c *APICountry) {
	if c == nil {
		return
	}
	if c.Name.Common != "" {
		i.Name = c.Name.Common
	}
	if c.Name.Official != "" {
		i.OfficialName = c.Name.Official
	}
	if len(c.Capital) > 0 && c.Capital[0] != "" {
		i.Capital = c.Capital[0]
	}
	if c.Region != "" {
		i.Region = c.Region
	}
	if c.Subregion != "" {
		i.Subregion = c.Subregion
	}
	if c.Population > 0 {
		i.Population = c.Population
	}
	if c.Area > 0 {
		i.Area = c.Area
	}
	if len(c.Languages) > 0 {
		i.Languages = slices.Sorted(maps.Values(c.Languages))
	}
	if len(c.Currencies) > 0 {
		names := make([]string, 0, len(c.Currencies))
		for code, cur := range c.Currencies {
			if cur.Name == "" {
				names = append(names, code)
				continue
			}
			names = append(names, cur.Name)
		}
		slices.Sort(names)
		i.Currencies = names
	}
	if flag := c.Flags["png"]; flag != "" {
		i.FlagURL = flag
	} else if flag := c.Flags["svg"]; flag != "" {
		i.FlagURL = flag
	}
	if len(c.CoatOfArms) > 0 {
		i.CoatOfArms = c.CoatOfArms
	}
	if len(c.Borders) > 0 {
		i.Borders = c.Borders
	}
	if len(c.Timezones) > 0 {
		i.Timezones = c.Timezones
	}
	if len(c.Continents) > 0 {
		i.Continents = strings.Join(c.Continents, ", ")
	}
	if c.Independent != nil {
		i.Independent = *c.Independent
	}
	if c.UNMember != nil {
		i.UNMember = *c.UNMember
	}
	i.Refresh()
}
