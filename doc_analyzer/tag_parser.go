package doc_analyzer

import (
	"strings"
	"unicode"

	"github.com/meysamhadeli/odindoc/doc_analyzer/models"
)

const (
	paramTag   = "@param"
	returnTag  = "@return"
	returnsTag = "@returns"
)

// ParseTags splits a stripped comment body into its description, @param
// annotations and @return value.
//
// A @param line is split into at most three whitespace-delimited tokens: the
// tag, the parameter name and the rest of the line as its description. With
// fewer than three tokens the whole line becomes the parameter name. When
// several @return lines are present the last one wins.
func ParseTags(body string) (string, []models.Param, string) {
	var description []string
	var params []models.Param
	var ret string

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, paramTag):
			fields := splitFieldsN(line, 3)
			if len(fields) < 3 {
				params = append(params, models.Param{Name: line})
				continue
			}
			params = append(params, models.Param{Name: fields[1], Description: fields[2]})
		case strings.HasPrefix(line, returnsTag):
			ret = strings.TrimSpace(strings.TrimPrefix(line, returnsTag))
		case strings.HasPrefix(line, returnTag):
			ret = strings.TrimSpace(strings.TrimPrefix(line, returnTag))
		case line != "":
			description = append(description, line)
		}
	}

	return strings.Join(description, " "), params, ret
}

// splitFieldsN splits s around runs of whitespace into at most n fields. The
// last field holds the unsplit remainder of the line.
func splitFieldsN(s string, n int) []string {
	var fields []string
	rest := strings.TrimLeftFunc(s, unicode.IsSpace)
	for rest != "" {
		if len(fields) == n-1 {
			fields = append(fields, rest)
			break
		}
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end < 0 {
			fields = append(fields, rest)
			break
		}
		fields = append(fields, rest[:end])
		rest = strings.TrimLeftFunc(rest[end:], unicode.IsSpace)
	}
	return fields
}
