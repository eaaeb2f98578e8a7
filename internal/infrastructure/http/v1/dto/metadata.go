package dto

import "contalink/internal/metadata"

// ViewSummary is the short form of a table descriptor used in listings.
type ViewSummary struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	TableName string `json:"tableName"`
	Fields    int    `json:"fields"`
	Joins     int    `json:"joins"`
}

// FromDescriptor summarizes d.
func FromDescriptor(d *metadata.TableDescriptor) ViewSummary {
	return ViewSummary{
		Name:      d.Name,
		Title:     d.Title,
		TableName: d.TableName,
		Fields:    len(d.Fields),
		Joins:     len(d.ForeignKeys),
	}
}
