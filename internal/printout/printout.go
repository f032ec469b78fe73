// Package printout renders a resolved birth as an A4 HTML page for printing
// onto pre-printed forms.
package printout

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/tartampluch/go-manse/internal/config"
	"github.com/tartampluch/go-manse/internal/engine"
	"github.com/tartampluch/go-manse/internal/sexagenary"
)

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
@page { size: A4; margin: 0; }
body { margin: 0; padding: 0; width: 210mm; height: 297mm; font-family: 'Malgun Gothic', sans-serif; }
.grid { font-family: 'Malgun Gothic', sans-serif; text-align: center; line-height: 1.2; }
.row { display: flex; justify-content: center; }
.row div { padding: 0 0.1em; }
</style>
</head>
<body>
<div style="position: absolute; top: {{.Layout.BirthDate.Top}}mm; left: {{.Layout.BirthDate.Left}}mm; font-size: {{.Layout.BirthDate.Font}}pt; letter-spacing: 1px;">{{.BirthDate}}</div>
<div class="grid" style="position: absolute; top: {{.Layout.Grid.Top}}mm; left: {{.Layout.Grid.Left}}mm; font-size: {{.Layout.Grid.Font}}pt;">
<div class="row">{{range .Stems}}<div>{{.}}</div>{{end}}</div>
<div class="row">{{range .Branches}}<div>{{.}}</div>{{end}}</div>
</div>
<div style="position: absolute; top: {{.Layout.Info.Top}}mm; left: {{.Layout.Info.Left}}mm; font-size: {{.Layout.Info.Font}}pt;">{{.Info}}</div>
</body>
</html>
`

const pageTitle = "만세력 정보 인쇄"

var page = template.Must(template.New("print").Parse(pageTemplate))

// Page is the data behind one printed sheet.
type Page struct {
	Title     string
	Layout    Layout
	BirthDate string
	Stems     []string
	Branches  []string
	Info      string
}

// NewPage lays rec out for printing. The grid runs hour, day, month, year
// from left to right; the hour column is absent when the hour was omitted.
func NewPage(rec *engine.ResultRecord, layout Layout) Page {
	p := Page{
		Title:     pageTitle,
		Layout:    layout,
		BirthDate: rec.BirthDate + calendarMarker(rec),
	}

	columns := make([]sexagenary.Pillar, 0, 4)
	if rec.Pillars.Hour != nil {
		columns = append(columns, *rec.Pillars.Hour)
	}
	columns = append(columns, rec.Pillars.Day, rec.Pillars.Month, rec.Pillars.Year)
	for _, c := range columns {
		p.Stems = append(p.Stems, c.Stem.Hanja())
		p.Branches = append(p.Branches, c.Branch.Hanja())
	}

	p.Info = InfoLine(rec)
	return p
}

// InfoLine joins the age, the month branch and the blood type, dropping
// empty parts.
func InfoLine(rec *engine.ResultRecord) string {
	parts := []string{
		fmt.Sprintf(config.PrintAgeFormat, rec.Age),
		rec.Pillars.Month.Branch.Hanja(),
		rec.BloodType,
	}
	kept := parts[:0]
	for _, s := range parts {
		if s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, config.PrintInfoSep)
}

func calendarMarker(rec *engine.ResultRecord) string {
	if rec.Calendar.IsLunar() {
		return config.PrintLunarMarker
	}
	return config.PrintSolarMarker
}

// Render writes the print page for rec.
func Render(w io.Writer, rec *engine.ResultRecord, layout Layout) error {
	if err := page.Execute(w, NewPage(rec, layout)); err != nil {
		return fmt.Errorf("%s: %w", config.ErrPrintRender, err)
	}
	return nil
}
