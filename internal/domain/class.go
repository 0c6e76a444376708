package domain

import "fmt"

type Class struct {
	ID      int64   `json:"id"`
	Year    int32   `json:"year"`
	Section string  `json:"section"`
	Track   *string `json:"track"`
}

// Label renders the display form used throughout the school, e.g. "3B" or
// "4A Scienze Applicate".
func (c *Class) Label() string {
	label := fmt.Sprintf("%d%s", c.Year, c.Section)
	if c.Track != nil && *c.Track != "" {
		label += " " + *c.Track
	}
	return label
}

type Subject struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
}
