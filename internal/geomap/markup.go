package geomap

import (
	"errors"
	"slices"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/microcosm-cc/bluemonday"
)

var textPolicy = bluemonday.StrictPolicy()

// ContainerStyle sizes the placeholder element.
type ContainerStyle struct {
	Height string
	Width  string
}

// Placeholder returns the empty container a map is mounted into.
func Placeholder(id string, style ContainerStyle) string {
	var b strings.Builder
	b.WriteString(`<div id="`)
	b.WriteString(textPolicy.Sanitize(id))
	b.WriteString(`" style="height: `)
	b.WriteString(textPolicy.Sanitize(style.Height))
	b.WriteString(`; width: `)
	b.WriteString(textPolicy.Sanitize(style.Width))
	b.WriteString(`"></div>`)
	return b.String()
}

// ErrorMarkup returns the inline red error block. message is sanitised so
// author supplied text cannot inject markup.
func ErrorMarkup(message string) string {
	return `<div style="color: red;">Error: ` + textPolicy.Sanitize(message) + `</div>`
}

// DisplayMessage extracts the human readable part of err. Structured errors
// contribute their message and field issues, not their category prefix.
func DisplayMessage(err error) string {
	if err == nil {
		return ""
	}
	var structured *goerrors.Error
	if !errors.As(err, &structured) {
		return err.Error()
	}
	message := structured.Message
	if len(structured.ValidationErrors) == 0 {
		return message
	}
	fields := slices.Clone(structured.ValidationErrors)
	slices.SortFunc(fields, func(a, b goerrors.FieldError) int {
		return strings.Compare(a.Field, b.Field)
	})
	return message + ": " + goerrors.ValidationErrors(fields).Error()
}
