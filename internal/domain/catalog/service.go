package catalog

// Service is one read-only entry of the appraisal service catalog.
type Service struct {
	Name     string `json:"name" yaml:"name"`
	Price    string `json:"price" yaml:"price"`
	Category string `json:"category" yaml:"category"`
	Type     string `json:"type" yaml:"type"`
	Icon     string `json:"icon,omitempty" yaml:"icon"`
}

// ParsedPrice is the numeric value of the service's price label.
func (s Service) ParsedPrice() int64 {
	return ParsePrice(s.Price)
}
