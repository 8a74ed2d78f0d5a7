package model

// Condition of an item.
type Condition string

// Item conditions.
const (
	ConditionNew  Condition = "new"
	ConditionUsed Condition = "used"
)

// Conditions lists the conditions in display order.
var Conditions = []Condition{ConditionNew, ConditionUsed}

// Valid reports whether c is a known condition.
func (c Condition) Valid() bool {
	return c == ConditionNew || c == ConditionUsed
}

// Label returns the Indonesian label shown next to the radio button.
func (c Condition) Label() string {
	switch c {
	case ConditionNew:
		return "Baru"
	case ConditionUsed:
		return "Bekas"
	default:
		return string(c)
	}
}

// Category of an item.
type Category string

// Item categories.
const (
	CategoryElectronics Category = "Elektronik"
	CategoryHousehold   Category = "Peralatan Rumah"
	CategoryClothing    Category = "Pakaian"
	CategorySports      Category = "Olahraga"
)

// Categories lists the categories in the order the select shows them.
var Categories = []Category{
	CategoryElectronics,
	CategoryHousehold,
	CategoryClothing,
	CategorySports,
}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Multipart form keys.
const (
	FieldName        = "name"
	FieldCondition   = "condition"
	FieldCategory    = "category"
	FieldPrice       = "price"
	FieldDescription = "description"
	FieldImage       = "image"
)

// TextFields lists the non-file keys in the order they are sent.
var TextFields = []string{FieldName, FieldCondition, FieldCategory, FieldPrice, FieldDescription}

// FormState holds the values of the entry form's text inputs.
type FormState struct {
	Name        string
	Condition   Condition
	Category    Category
	Price       string
	Description string
}

// NewFormState returns the values the form starts with.
func NewFormState() FormState {
	return FormState{
		Condition: ConditionNew,
		Category:  CategoryElectronics,
	}
}

// Get returns the value stored under a form key.
func (s FormState) Get(field string) (string, bool) {
	switch field {
	case FieldName:
		return s.Name, true
	case FieldCondition:
		return string(s.Condition), true
	case FieldCategory:
		return string(s.Category), true
	case FieldPrice:
		return s.Price, true
	case FieldDescription:
		return s.Description, true
	}
	return "", false
}

// With returns a copy of s with one field replaced. ok is false for an
// unknown key, in which case s is returned unchanged.
func (s FormState) With(field, value string) (next FormState, ok bool) {
	next = s
	switch field {
	case FieldName:
		next.Name = value
	case FieldCondition:
		next.Condition = Condition(value)
	case FieldCategory:
		next.Category = Category(value)
	case FieldPrice:
		next.Price = value
	case FieldDescription:
		next.Description = value
	default:
		return s, false
	}
	return next, true
}

// ImageFile is a file picked by the user. The form never inspects its bytes.
type ImageFile struct {
	Filename    string
	ContentType string
	Data        []byte
}
