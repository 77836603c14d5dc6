package model

import "github.com/m-mizutani/goerr/v2"

// Category represents one option of the complaint form's category selector
type Category struct {
	Name        string `yaml:"name" json:"name"`                                   // Display name, stored verbatim in records
	Description string `yaml:"description,omitempty" json:"description,omitempty"` // Help text (optional)
}

// Validate validates the category
func (c *Category) Validate() error {
	if c.Name == "" {
		return goerr.New("category name is required")
	}
	return nil
}
