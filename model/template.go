package model

// CategoryTemplate describes the expected spreadsheet layout of one category.
type CategoryTemplate struct {
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	RequiredColumns []string       `json:"required_columns"`
	OptionalColumns []string       `json:"optional_columns"`
	Note            string         `json:"note,omitempty"`
	CommonAccounts  []string       `json:"common_accounts,omitempty"`
	Example         map[string]any `json:"example"`
}

// TemplateInfo is the backend's catalogue of upload templates.
type TemplateInfo struct {
	Templates       map[Category]CategoryTemplate `json:"templates"`
	MinimumRequired []Category                    `json:"minimum_required"`
	Recommended     []Category                    `json:"recommended"`
	FullAnalysis    []Category                    `json:"full_analysis"`
}
