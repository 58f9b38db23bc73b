package countries

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestFormatPopulation(t *testing.T) {
	tests := []struct {
		population int64
		want       string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.0K"},
		{12_500, "12.5K"},
		{59_308_690, "59.3M"},
		{999_999, "1000.0K"},
		{1_402_112_000, "1.4B"},
	}
	for _, tt := range tests {
		if got := FormatPopulation(tt.population); got != tt.want {
			t.Errorf("FormatPopulation(%d) = %q, want %q", tt.population, got, tt.want)
		}
	}
}

func TestFormatArea(t *testing.T) {
	tests := []struct {
		area float64
		want string
	}{
		{0, "Unknown"},
		{-5, "Unknown"},
		{377, "377 km²"},
		{1221037, "1,221,037 km²"},
		{9984670.4, "9,984,670 km²"},
	}
	for _, tt := range tests {
		if got := FormatArea(tt.area); got != tt.want {
			t.Errorf("FormatArea(%v) = %q, want %q", tt.area, got, tt.want)
		}
	}
}

func TestFromBasic(t *testing.T) {
	got := FromBasic(Info{Name: "atlantis", NationalFlower: "Sea rose", Region: "Ocean"})
	want := Info{Name: "atlantis", Capital: Unknown, NationalAnimal: Unknown, NationalFlower: "Sea rose"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FromBasic() = %+v, want %+v", got, want)
	}
}

const southAfricaDocument = `{
	"name": {"common": "South Africa", "official": "Republic of South Africa"},
	"capital": ["Pretoria", "Bloemfontein", "Cape Town"],
	"region": "Africa",
	"subregion": "Southern Africa",
	"languages": {"eng": "English", "afr": "Afrikaans", "zul": "Zulu"},
	"currencies": {"ZAR": {"name": "South African rand", "symbol": "R"}},
	"population": 59308690,
	"area": 1221037.0,
	"flags": {"png": "https://flagcdn.com/w320/za.png", "svg": "https://flagcdn.com/za.svg"},
	"coatOfArms": {"png": "https://mainfacts.com/coa/za.png"},
	"borders": ["BWA", "LSO", "MOZ", "NAM", "SWZ", "ZWE"],
	"timezones": ["UTC+02:00"],
	"continents": ["Africa"],
	"independent": true,
	"unMember": true
}`

func TestEnrich(t *testing.T) {
	var doc APICountry
	if err := json.Unmarshal([]byte(southAfricaDocument), &doc); err != nil {
		t.Fatalf("failed to parse document: %v", err)
	}

	info := Info{Name: "south africa", NationalAnimal: "Springbok"}
	info.Enrich(&doc)

	if info.Name != "South Africa" || info.OfficialName != "Republic of South Africa" {
		t.Errorf("names = %q / %q", info.Name, info.OfficialName)
	}
	if info.Capital != "Pretoria" {
		t.Errorf("Capital = %q, want first capital Pretoria", info.Capital)
	}
	if want := []string{"Afrikaans", "English", "Zulu"}; !reflect.DeepEqual(info.Languages, want) {
		t.Errorf("Languages = %v, want %v", info.Languages, want)
	}
	if want := []string{"South African rand"}; !reflect.DeepEqual(info.Currencies, want) {
		t.Errorf("Currencies = %v, want %v", info.Currencies, want)
	}
	if info.FormattedPopulation != "59.3M" || info.FormattedArea != "1,221,037 km²" {
		t.Errorf("formatted = %q / %q", info.FormattedPopulation, info.FormattedArea)
	}
	if info.FlagURL != "https://flagcdn.com/w320/za.png" {
		t.Errorf("FlagURL = %q", info.FlagURL)
	}
	if !info.Independent || !info.UNMember || info.Continents != "Africa" || len(info.Borders) != 6 {
		t.Errorf("unexpected flags or lists: %+v", info)
	}
	if info.NationalAnimal != "Springbok" {
		t.Errorf("Enrich overwrote NationalAnimal: %q", info.NationalAnimal)
	}
}

func TestEnrichKeepsExistingValues(t *testing.T) {
	info := Info{Name: "x", Capital: "Old", Region: "R", Population: 10}
	info.Enrich(&APICountry{})
	if info.Name != "x" || info.Capital != "Old" || info.Region != "R" || info.Population != 10 {
		t.Errorf("Enrich with empty document changed values: %+v", info)
	}
	info.Enrich(nil)
	if info.Capital != "Old" {
		t.Errorf("Enrich(nil) changed values: %+v", info)
	}
}
