package templates

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	htmpl "html/template"
	"io"
	"reflect"
	"strings"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// Template names
const (
	ResetPassword = "reset_password"
)

// EmailData defines the fields available to templates.
type EmailData struct {
	AppName       string    `json:"AppName"`
	Email         string    `json:"Email"`
	ResetURL      string    `json:"ResetURL"`
	ExpiresAt     time.Time `json:"ExpiresAt"`
	ExpiresAtText string    `json:"ExpiresAtText"`
}

func NewResetPasswordData(appName, email, resetURL string, expiresAt time.Time) EmailData {
	utc := expiresAt.UTC()
	return EmailData{
		AppName:       appName,
		Email:         email,
		ResetURL:      resetURL,
		ExpiresAt:     utc,
		ExpiresAtText: utc.Format("02 January 2006, 15:04 MST"),
	}
}

// ToMap converts EmailData to a map[string]any for EmailJob.Data
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
		return x
	case nil:
		return fallback
	default:
		rv := reflect.ValueOf(value)
		if rv.IsZero() {
			return fallback
		}
		return value
	}
}

var funcs = map[string]any{"default": defaultFn}

// Every file is parsed once; a broken template fails at startup.
var (
	textSet = texttpl.Must(texttpl.New("text").Funcs(funcs).ParseFS(FS, "*.subject.tmpl", "*.text.tmpl"))
	htmlSet = htmpl.Must(htmpl.New("html").Funcs(funcs).ParseFS(FS, "*.html.tmpl"))
)

type executor interface {
	ExecuteTemplate(w io.Writer, name string, data any) error
}

func execute(set executor, file string, data any) (string, error) {
	var buf bytes.Buffer
	if err := set.ExecuteTemplate(&buf, file, data); err != nil {
		return "", fmt.Errorf("render %q: %w", file, err)
	}
	return buf.String(), nil
}

// Render produces the subject, text and html parts of the named email from
// <name>.subject.tmpl, <name>.text.tmpl and <name>.html.tmpl.
func Render(name string, data any) (subject, text, html string, err error) {
	if htmlSet.Lookup(name+".html.tmpl") == nil {
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}
	if subject, err = execute(textSet, name+".subject.tmpl", data); err != nil {
		return "", "", "", err
	}
	if text, err = execute(textSet, name+".text.tmpl", data); err != nil {
		return "", "", "", err
	}
	if html, err = execute(htmlSet, name+".html.tmpl", data); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}
