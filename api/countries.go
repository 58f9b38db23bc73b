package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/masingita/countrybot/render"
)

// CountriesResponse is a list of lowercase country names
type CountriesResponse struct {
	Countries []string `json:"countries"`
	Count     int      `json:"count"`
}

// SummaryResponse is the human readable summary of a country
type SummaryResponse struct {
	Country  string `json:"country"`
	Detailed bool   `json:"detailed"`
	Text     string `json:"text"`
	HTML     string `json:"html"`
}

// PropertyResponse is a single property of a country
type PropertyResponse struct {
	Country  string `json:"country"`
	Property string `json:"property"`
	Value    string `json:"value"`
}

const (
	countryNotFound     = "Country not found"
	propertyUnavailable = "Property not available"
)

// ListCountriesHandler lists all countries, or those starting with ?prefix=
// GET /api/public/countries
func ListCountriesHandler(c *gin.Context) {
	ctx := c.Request.Context()

	var names []string
	if prefix := c.Query("prefix"); prefix != "" {
		names = country.WithPrefix(ctx, prefix)
	} else {
		names = country.All(ctx)
	}
	if names == nil {
		names = []string{}
	}

	c.JSON(http.StatusOK, CountriesResponse{Countries: names, Count: len(names)})
}

// CountryHandler returns everything known about a country
// GET /api/public/countries/:name
func CountryHandler(c *gin.Context) {
	info, ok := country.Info(c.Request.Context(), c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: countryNotFound})
		return
	}
	c.JSON(http.StatusOK, info)
}

// CountryPropertyHandler returns a single property of a country, or its
// summary when the property is "summary"
// GET /api/public/countries/:name/:property
func CountryPropertyHandler(c *gin.Context) {
	if c.Param("property") == "summary" {
		summary(c)
		return
	}

	ctx := c.Request.Context()
	name, property := c.Param("name"), c.Param("property")

	value := country.Property(ctx, name, property)
	switch value {
	case countryNotFound, propertyUnavailable:
		c.JSON(http.StatusNotFound, ErrorResponse{Error: value})
		return
	}

	c.JSON(http.StatusOK, PropertyResponse{Country: name, Property: property, Value: value})
}

// summary serves GET /api/public/countries/:name/summary?detailed=true
func summary(c *gin.Context) {
	ctx := c.Request.Context()
	name := c.Param("name")

	if _, ok := country.Info(ctx, name); !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: countryNotFound})
		return
	}

	detailed, _ := strconv.ParseBool(c.Query("detailed"))
	text := country.Format(ctx, name, detailed)
	c.JSON(http.StatusOK, SummaryResponse{
		Country:  name,
		Detailed: detailed,
		Text:     text,
		HTML:     render.MarkdownToHTML(text),
	})
}
