package domain

// PropertySummary is a property joined with its manager.
type PropertySummary struct {
	ID      string
	Name    string
	Address string
	Manager *UserSummary
}

// UnitSummary identifies a unit inside a property.
type UnitSummary struct {
	ID         string
	UnitNumber string
}
