package render

import (
	"html/template"
	"io"
)

var directoryHTML = template.Must(template.New("directory").Parse(
	`<table class="directory">
<thead><tr><th>Key ID</th><th>Name</th><th>Department</th><th>Created</th><th></th></tr></thead>
<tbody>
{{- if .Empty}}
<tr><td colspan="5" class="placeholder">{{.Placeholder}}</td></tr>
{{- else}}{{range .Rows}}
<tr data-id="{{.ID}}"><td><span class="key-badge">{{.KeyBadge}}</span></td><td><strong>{{.Name}}</strong></td><td>{{.Department}}</td><td>{{.Created}}</td><td><button type="button" data-action="delete" data-id="{{.ID}}">Delete</button></td></tr>
{{- end}}{{end}}
</tbody>
</table>
`))

var signersHTML = template.Must(template.New("signers").Parse(
	`<select name="key_id">
{{- range .}}
<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>
{{- end}}
</select>
`))

// WriteDirectoryHTML writes d as an HTML table. Delete buttons carry a
// data-action attribute for the embedding page to dispatch on; no script
// is emitted.
func WriteDirectoryHTML(w io.Writer, d Directory) error {
	return directoryHTML.Execute(w, d)
}

// WriteSignersHTML writes the signer selector as an HTML select element.
func WriteSignersHTML(w io.Writer, opts []Option) error {
	return signersHTML.Execute(w, opts)
}
