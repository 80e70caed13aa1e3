package results

import "fmt"

// ModelType selects which prediction metric(s) a request or response
// concerns. It gates which panels are rendered, identically for the
// manual and upload flows.
type ModelType string

const (
	ModelROI         ModelType = "roi"
	ModelConversions ModelType = "conversions"
	ModelBoth        ModelType = "both"
)

// ParseModelType validates a user-supplied model type string.
func ParseModelType(s string) (ModelType, error) {
	switch ModelType(s) {
	case ModelROI, ModelConversions, ModelBoth:
		return ModelType(s), nil
	default:
		return "", fmt.Errorf("invalid model type %q: must be roi, conversions, or both", s)
	}
}

// ShowROI reports whether ROI panels are rendered for this model type.
func (m ModelType) ShowROI() bool {
	return m == ModelROI || m == ModelBoth
}

// ShowConversions reports whether conversion panels are rendered.
func (m ModelType) ShowConversions() bool {
	return m == ModelConversions || m == ModelBoth
}
