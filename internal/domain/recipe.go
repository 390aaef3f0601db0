package domain

// Recipe is a dish with ordered preparation steps and tutorial videos.
// Recipes are immutable once loaded into a catalog.
type Recipe struct {
	Name      string
	Steps     []string
	VideoURLs []string
}

// RecipeSummary is a lightweight view of a recipe for listing.
type RecipeSummary struct {
	Name   string
	Steps  int
	Videos int
}
