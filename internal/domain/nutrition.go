package domain

// Field identifies one of the nutritional attributes recovered from label text
type Field string

const (
	FieldServingSize   Field = "serving_size"
	FieldEnergy        Field = "energy"
	FieldProtein       Field = "protein"
	FieldCarbohydrates Field = "carbohydrates"
	FieldFiber         Field = "fiber"
	FieldTotalFat      Field = "total_fat"
)

// AllFields lists every field in declaration order
var AllFields = []Field{
	FieldServingSize,
	FieldEnergy,
	FieldProtein,
	FieldCarbohydrates,
	FieldFiber,
	FieldTotalFat,
}

// Measurement is a numeric value with the unit exactly as it was matched (lowercased)
type Measurement struct {
	Value float64 `json:"value" yaml:"value"`
	Unit  string  `json:"unit" yaml:"unit"`
}

// NutritionRecord is the structured result of parsing one block of label text.
// Absent fields are nil and serialize as null; the keys are never omitted.
type NutritionRecord struct {
	ServingSize   *Measurement `json:"servingSize" yaml:"servingSize"`
	Energy        *Measurement `json:"energy" yaml:"energy"`
	Protein       *Measurement `json:"protein" yaml:"protein"`
	Carbohydrates *Measurement `json:"carbohydrates" yaml:"carbohydrates"`
	Fiber         *Measurement `json:"fiber" yaml:"fiber"`
	TotalFat      *Measurement `json:"totalFat" yaml:"totalFat"`
	RawText       string       `json:"rawText" yaml:"rawText"`
	Error         string       `json:"error,omitempty" yaml:"error,omitempty"`
}

// Get returns the measurement stored for field, or nil
func (r *NutritionRecord) Get(field Field) *Measurement {
	switch field {
	case FieldServingSize:
		return r.ServingSize
	case FieldEnergy:
		return r.Energy
	case FieldProtein:
		return r.Protein
	case FieldCarbohydrates:
		return r.Carbohydrates
	case FieldFiber:
		return r.Fiber
	case FieldTotalFat:
		return r.TotalFat
	}
	return nil
}

// Set stores m under field. Unknown fields are ignored.
func (r *NutritionRecord) Set(field Field, m *Measurement) {
	switch field {
	case FieldServingSize:
		r.ServingSize = m
	case FieldEnergy:
		r.Energy = m
	case FieldProtein:
		r.Protein = m
	case FieldCarbohydrates:
		r.Carbohydrates = m
	case FieldFiber:
		r.Fiber = m
	case FieldTotalFat:
		r.TotalFat = m
	}
}

// Found counts the fields that carry a measurement
func (r *NutritionRecord) Found() int {
	n := 0
	for _, f := range AllFields {
		if r.Get(f) != nil {
			n++
		}
	}
	return n
}

// ParseResult is what callers get back for a parse request: the raw text,
// its length in characters and the extracted record
type ParseResult struct {
	RawText    string           `json:"rawText"`
	TextLength int              `json:"textLength"`
	Record     *NutritionRecord `json:"nutritionalData"`
	Cached     bool             `json:"-"`
}
