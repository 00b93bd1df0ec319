package rpc

import (
	"html/template"

	sprig "github.com/go-task/slim-sprig/v3"
)

var listingTemplate = template.Must(template.New("listing").Funcs(sprig.HtmlFuncMap()).Parse(`<!DOCTYPE html>
<html>
<head><title>{{ .Object }}</title></head>
<body>
<h1>{{ .Object }}</h1>
<ul>
{{- range .Functions }}
<li><a href="{{ $.Base }}/{{ . }}">{{ . }}</a></li>
{{- end }}
</ul>
</body>
</html>
`))

var formTemplate = template.Must(template.New("form").Funcs(sprig.HtmlFuncMap()).Parse(`<!DOCTYPE html>
<html>
<head><title>{{ .Object }}.{{ .Method }}</title></head>
<body>
<h1>{{ .Object }}.{{ .Method }}({{ .Args | join ", " }})</h1>
<form method="post" action="{{ .Action }}">
{{- range .Args }}
<label>{{ . }} <input type="text" name="{{ . }}"/></label><br/>
{{- end }}
<input type="submit" value="{{ .Method | title }}"/>
</form>
</body>
</html>
`))

type listingModel struct {
	Object    string              `json:"object"`
	Functions []string            `json:"functions"`
	Args      map[string][]string `json:"args"`
	Base      string              `json:"-"`
}

type usageModel struct {
	Object string   `json:"object"`
	Method string   `json:"method"`
	Args   []string `json:"args"`
	Action string   `json:"-"`
}
