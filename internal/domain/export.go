package domain

// ExportFormat is the file format of an itinerary export.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
	ExportHTML ExportFormat = "html"
)

// ExportRow is a single row of the flat itinerary export.
// For daily itineraries there is one row per activity, with the day fields
// repeated; for guides one row per category item, with the category fields
// repeated. A day or category with no children yields one row with zero
// values for the child fields.
type ExportRow struct {
	// Itinerary fields, repeated on every row.
	ItineraryID string
	Title       string
	Destination string
	Type        string

	// Group fields: the day (daily) or the category (guide).
	GroupNumber int    // day number or category sort order
	GroupDate   string // "2006-01-02", empty when unset or for guides
	GroupTitle  string // day title or category name

	// Entry fields: the activity or the category item.
	EntryTitle string
	Location   string
	StartTime  string
	EndTime    string
	Notes      string
}

// Export is an assembled itinerary together with its flattened rows.
type Export struct {
	Itinerary Itinerary
	Rows      []ExportRow
}
