// export.go implements GET /itineraries/{id}/export.
// The itinerary is returned as a download in one of three formats chosen by
// ?format=: json (default), csv (one flat row per activity or place), or html
// (a printable page with Markdown notes rendered).
package handler

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/oapi-codegen/runtime"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/pkordes/stashport/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"itinerary_id", "title", "destination", "type",
	"group_number", "group_date", "group_title",
	"entry_title", "location", "start_time", "end_time", "notes",
}

var exportContentTypes = map[domain.ExportFormat]string{
	domain.ExportJSON: "application/json",
	domain.ExportCSV:  "text/csv; charset=utf-8",
	domain.ExportHTML: "text/html; charset=utf-8",
}

// ExportItinerary handles GET /itineraries/{id}/export.
func (s *Server) ExportItinerary(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	var requested *domain.ExportFormat
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &requested); err != nil {
		s.writeError(w, r, domain.NewValidationError("invalid format parameter"))
		return
	}
	format := domain.ExportJSON
	if requested != nil && *requested != "" {
		format = *requested
	}
	contentType, ok := exportContentTypes[format]
	if !ok {
		s.writeError(w, r, domain.NewValidationError("format must be one of: json, csv, html"))
		return
	}

	export, err := s.export.Export(r.Context(), viewer(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var body []byte
	switch format {
	case domain.ExportCSV:
		body, err = buildCSV(export.Rows)
	case domain.ExportHTML:
		body, err = buildHTML(export)
	default:
		body, err = json.MarshalIndent(itineraryToResponse(export.Itinerary), "", "  ")
	}
	if err != nil {
		s.writeError(w, r, fmt.Errorf("handler.ExportItinerary: %w", err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", attachment(export.Itinerary.Slug+"."+string(format)))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// buildCSV encodes rows with a header line.
func buildCSV(rows []domain.ExportRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never fails; w.Error reports anything else.
	w.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		w.Write(rowToCSVRecord(r))
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// rowToCSVRecord encodes a domain.ExportRow as a flat string slice.
func rowToCSVRecord(r domain.ExportRow) []string {
	return []string{
		r.ItineraryID,
		r.Title,
		r.Destination,
		r.Type,
		strconv.Itoa(r.GroupNumber),
		r.GroupDate,
		r.GroupTitle,
		r.EntryTitle,
		r.Location,
		r.StartTime,
		r.EndTime,
		r.Notes,
	}
}

// markdown renders descriptions and notes. Raw HTML in the source is escaped.
var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Linkify,
	),
)

func renderMarkdown(src string) (template.HTML, error) {
	if src == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	//nolint:gosec // goldmark output with unsafe rendering disabled
	return template.HTML(buf.String()), nil
}

var exportPage = template.Must(template.New("export").Funcs(template.FuncMap{
	"markdown": renderMarkdown,
	"date": func(d domain.Day) string {
		if d.Date == nil {
			return ""
		}
		return d.Date.Format("Mon 2 Jan 2006")
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body{font-family:system-ui,sans-serif;max-width:46rem;margin:2rem auto;padding:0 1rem;color:#222}
h1{margin-bottom:.2rem}.dest{color:#2a9d8f;margin-top:0}.tags span{margin-right:.6rem;color:#666}
section{border-top:1px solid #ddd;margin-top:1.4rem}li{margin:.4rem 0}.meta{color:#666;font-size:.9rem}
@media print{body{margin:0}}
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{with .Destination}}<p class="dest">{{.}}</p>{{end}}
{{with .Tags}}<p class="tags">{{range .}}<span>#{{.}}</span>{{end}}</p>{{end}}
{{markdown .Description}}
{{if eq .Type "guide"}}{{range .Categories}}
<section>
<h2>{{.Icon}} {{.Name}}</h2>
<ul>{{range .Items}}
<li><strong>{{.Title}}</strong>{{with .Location}} <span class="meta">{{.}}</span>{{end}}{{markdown .Notes}}</li>{{end}}
</ul>
</section>{{end}}
{{else}}{{range .Days}}
<section>
<h2>Day {{.DayNumber}}{{with .Title}}: {{.}}{{end}}</h2>
{{with date .}}<p class="meta">{{.}}</p>{{end}}
<ul>{{range .Activities}}
<li>{{if .StartTime}}<span class="meta">{{.StartTime}}{{with .EndTime}} to {{.}}{{end}}</span> {{end}}<strong>{{.Title}}</strong>{{with .Location}} <span class="meta">{{.}}</span>{{end}}{{markdown .Notes}}</li>{{end}}
</ul>
</section>{{end}}
{{end}}
</body>
</html>
`))

// buildHTML renders the printable page for the export's itinerary.
func buildHTML(export domain.Export) ([]byte, error) {
	var buf bytes.Buffer
	if err := exportPage.Execute(&buf, export.Itinerary); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// attachment builds a Content-Disposition value for a download named filename.
func attachment(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}
