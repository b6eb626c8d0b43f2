package render

import (
	"fmt"
	"html/template"
	"io"
	"regexp"
	"time"

	"calgrid/internal/view"
)

// The page root carries data-ready="true" once rendered; the screenshot
// capture waits for it.
const gridTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; margin: 16px; background: #fff; color: #111; }
h1 { font-size: 20px; margin: 0 0 12px; }
.page { display: grid; gap: 2px; margin-bottom: 16px; }
.head { font-size: 12px; color: #555; border-bottom: 1px solid #ccc; }
.bar { font-size: 13px; padding: 2px 4px; border-radius: 3px; background: #3b82f6; color: #fff;
       white-space: nowrap; overflow: hidden; text-overflow: ellipsis; }
.bar.allday { font-weight: 600; }
.bar.todo { background: #fff; color: #111; border: 1px solid #111; }
.bar.done { text-decoration: line-through; opacity: .5; }
</style>
</head>
<body>
<main id="calgrid" data-kind="{{.Kind}}" data-ready="true">
<h1>{{.Title}}</h1>
{{range .Pages}}
<section class="page" style="grid-template-columns: repeat({{.Columns}}, 1fr)">
{{range $i, $h := .Headers}}<div class="head" style="grid-column: {{inc $i}}; grid-row: 1">{{$h}}</div>
{{end}}{{range .Bars}}<div class="{{.Class}}" style="grid-column: {{.Column}} / span {{.Span}}; grid-row: {{.Row}}{{with .Color}}; background: {{.}}{{end}}" title="{{.Title}}">{{.Summary}}</div>
{{end}}</section>
{{end}}
</main>
</body>
</html>
`

var (
	gridTmpl = template.Must(template.New("grid").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}).Parse(gridTemplate))

	hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
)

type htmlGrid struct {
	Title string
	Kind  view.Kind
	Pages []htmlPage
}

type htmlPage struct {
	Columns int
	Headers []string
	Bars    []htmlBar
}

type htmlBar struct {
	Column  int
	Span    int
	Row     int
	Class   string
	Color   template.CSS
	Summary string
	Title   string
}

// HTML writes snap as a CSS grid page.
func HTML(w io.Writer, snap *view.Snapshot) error {
	data := htmlGrid{
		Title: fmt.Sprintf("%s %s", snap.Kind, snap.RangeStart.Format(time.DateOnly)),
		Kind:  snap.Kind,
	}
	if snap.AllDay != nil {
		data.Pages = append(data.Pages, newHTMLPage(snap.AllDay))
	}
	for i := range snap.Pages {
		data.Pages = append(data.Pages, newHTMLPage(&snap.Pages[i]))
	}
	return gridTmpl.Execute(w, data)
}

func newHTMLPage(p *view.Page) htmlPage {
	out := htmlPage{
		Columns: p.Length,
		Headers: make([]string, p.Length),
	}
	for i := range out.Headers {
		out.Headers[i] = slotLabel(p, i)
	}
	for _, line := range p.Lines {
		for _, e := range line {
			out.Bars = append(out.Bars, newHTMLBar(e))
		}
	}
	return out
}

func newHTMLBar(e view.Entry) htmlBar {
	bar := htmlBar{
		Column:  e.Start + 1,
		Span:    e.Duration,
		Row:     e.Line + 2,
		Class:   "bar",
		Summary: label(e),
	}
	o := e.Occurrence.Payload
	if o == nil {
		return bar
	}
	switch {
	case o.IsTodo():
		bar.Class += " todo"
		if o.Completed {
			bar.Class += " done"
		}
	case o.AllDay:
		bar.Class += " allday"
	}
	if hexColor.MatchString(o.Color) && !o.IsTodo() {
		bar.Color = template.CSS(o.Color)
	}
	bar.Title = o.Summary
	if o.Location != "" {
		bar.Title += " @ " + o.Location
	}
	return bar
}
