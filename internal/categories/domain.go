package categories

// AttributeType enumerates the supported attribute input kinds.
type AttributeType string

const (
	TypeText   AttributeType = "text"
	TypeNumber AttributeType = "number"
	TypeSelect AttributeType = "select"
)

// Attribute is one field definition inside a category. Dependent select
// attributes carry per-parent-value option sets in OptionsByParent.
type Attribute struct {
	Name            string              `json:"name"`
	Type            AttributeType       `json:"type"`
	Options         []string            `json:"options,omitempty"`
	DependsOn       string              `json:"dependsOn,omitempty"`
	OptionsByParent map[string][]string `json:"optionsByParent,omitempty"`
}

// Category groups stock items and defines their attribute schema.
type Category struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Attributes []Attribute `json:"attributes"`
}

// OptionsFor resolves the option set of a dependent attribute for the given
// parent value. The second return is false when the parent value is unknown;
// callers then degrade to a free-text input instead of failing.
func (a Attribute) OptionsFor(parentValue string) ([]string, bool) {
	if a.DependsOn == "" {
		return a.Options, len(a.Options) > 0
	}
	opts, ok := a.OptionsByParent[parentValue]
	if !ok || len(opts) == 0 {
		return nil, false
	}
	return opts, true
}

// DefaultIDPrefix marks categories written by the bootstrap seed, so an
// already-seeded collection can be recognised from its document ids.
const DefaultIDPrefix = "default-"

// DefaultSet returns the category set seeded into fresh accounts.
func DefaultSet() []Category {
	return []Category{
		{
			ID:   DefaultIDPrefix + "phones",
			Name: "Celulares",
			Attributes: []Attribute{
				{Name: "brand", Type: TypeSelect, Options: []string{"Apple", "Samsung", "Motorola", "Xiaomi"}},
				{Name: "model", Type: TypeSelect, DependsOn: "brand", OptionsByParent: map[string][]string{
					"Apple":    {"iPhone 13", "iPhone 14", "iPhone 15", "iPhone 16"},
					"Samsung":  {"Galaxy S23", "Galaxy S24", "Galaxy A54"},
					"Motorola": {"Moto G84", "Edge 40"},
					"Xiaomi":   {"Redmi Note 13", "Poco X6"},
				}},
				{Name: "storage", Type: TypeSelect, Options: []string{"64GB", "128GB", "256GB", "512GB"}},
				{Name: "battery", Type: TypeNumber},
				{Name: "color", Type: TypeText},
			},
		},
		{
			ID:   DefaultIDPrefix + "computers",
			Name: "Computadoras",
			Attributes: []Attribute{
				{Name: "brand", Type: TypeText},
				{Name: "cpu", Type: TypeText},
				{Name: "ram", Type: TypeSelect, Options: []string{"8GB", "16GB", "32GB", "64GB"}},
				{Name: "storage", Type: TypeText},
			},
		},
		{
			ID:   DefaultIDPrefix + "consoles",
			Name: "Consolas",
			Attributes: []Attribute{
				{Name: "brand", Type: TypeSelect, Options: []string{"Sony", "Microsoft", "Nintendo"}},
				{Name: "model", Type: TypeText},
				{Name: "storage", Type: TypeText},
			},
		},
		{
			ID:   DefaultIDPrefix + "accessories",
			Name: "Accesorios",
			Attributes: []Attribute{
				{Name: "kind", Type: TypeText},
				{Name: "brand", Type: TypeText},
			},
		},
	}
}

// IsSeeded reports whether the given categories contain any default
// document, meaning the bootstrap seed already ran for the account.
func IsSeeded(cats []Category) bool {
	for _, c := range cats {
		if len(c.ID) > len(DefaultIDPrefix) && c.ID[:len(DefaultIDPrefix)] == DefaultIDPrefix {
			return true
		}
	}
	return false
}
