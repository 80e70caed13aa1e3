// Package forms assembles prediction request payloads from user input,
// applying the same defaults the Finvix form ships with.
package forms

import (
	"fmt"
	"strconv"
	"strings"
)

// Categorical defaults for the manual prediction form.
const (
	DefaultCampaignType = "Search Ads"
	DefaultRegion       = "North America"
	DefaultIndustry     = "Retail"
	DefaultCompanySize  = "Small"
)

// DefaultSeasonality is applied when the seasonality factor is blank.
// Unlike the other numeric fields, a blank seasonality means 1.0, not 0.
const DefaultSeasonality = 1.0

// ManualInput holds the manual prediction form fields as entered.
// Numeric fields are kept as strings so blanks stay distinguishable
// from explicit zeroes until payload assembly.
type ManualInput struct {
	AdSpend           string
	Clicks            string
	Impressions       string
	ConversionRate    string
	CTR               string
	CPC               string
	CostPerConversion string
	CAC               string
	CampaignType      string
	Region            string
	Industry          string
	CompanySize       string
	Seasonality       string
}

// NewManualInput returns a form with the categorical defaults applied.
func NewManualInput() ManualInput {
	return ManualInput{
		CampaignType: DefaultCampaignType,
		Region:       DefaultRegion,
		Industry:     DefaultIndustry,
		CompanySize:  DefaultCompanySize,
	}
}

// Positional assembles the 13-element positional payload the backend's
// /predict endpoint expects: eight numeric metrics, four categorical
// fields, then the seasonality factor. Blank numerics become 0;
// blank seasonality becomes 1.0. Unparseable numbers are an error
// rather than a silent zero.
func (m ManualInput) Positional() ([]any, error) {
	numeric := []struct {
		name  string
		value string
	}{
		{"ad spend", m.AdSpend},
		{"clicks", m.Clicks},
		{"impressions", m.Impressions},
		{"conversion rate", m.ConversionRate},
		{"ctr", m.CTR},
		{"cpc", m.CPC},
		{"cost per conversion", m.CostPerConversion},
		{"cac", m.CAC},
	}

	payload := make([]any, 0, 13)
	for _, f := range numeric {
		v, err := parseNumeric(f.name, f.value, 0)
		if err != nil {
			return nil, err
		}
		payload = append(payload, v)
	}

	payload = append(payload,
		defaulted(m.CampaignType, DefaultCampaignType),
		defaulted(m.Region, DefaultRegion),
		defaulted(m.Industry, DefaultIndustry),
		defaulted(m.CompanySize, DefaultCompanySize),
	)

	seasonality, err := parseNumeric("seasonality factor", m.Seasonality, DefaultSeasonality)
	if err != nil {
		return nil, err
	}
	payload = append(payload, seasonality)

	return payload, nil
}

// Clear resets the form to its pristine state: blanks everywhere,
// categorical defaults restored.
func (m *ManualInput) Clear() {
	*m = NewManualInput()
}

func parseNumeric(name, value string, blank float64) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return blank, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: expected a number", name, value)
	}
	return f, nil
}

func defaulted(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}
