package doc_analyzer

import (
	"testing"

	"github.com/meysamhadeli/odindoc/doc_analyzer/models"
	"github.com/stretchr/testify/assert"
)

func TestParseTags(t *testing.T) {
	cases := []struct {
		name        string
		body        string
		description string
		params      []models.Param
		ret         string
	}{
		{
			name:        "description only",
			body:        "Adds two numbers.\nSaturates on overflow.",
			description: "Adds two numbers. Saturates on overflow.",
		},
		{
			name:        "params keep their order",
			body:        "@param c third\n@param a first one\n@param b second",
			description: "",
			params: []models.Param{
				{Name: "c", Description: "third"},
				{Name: "a", Description: "first one"},
				{Name: "b", Description: "second"},
			},
		},
		{
			name:   "param with extra spacing keeps rest of line",
			body:   "@param   ptr    pointer to  the buffer",
			params: []models.Param{{Name: "ptr", Description: "pointer to  the buffer"}},
		},
		{
			name:   "short param line becomes the name",
			body:   "@param lonely",
			params: []models.Param{{Name: "@param lonely"}},
		},
		{
			name:   "duplicate params are kept",
			body:   "@param a one\n@param a two",
			params: []models.Param{{Name: "a", Description: "one"}, {Name: "a", Description: "two"}},
		},
		{
			name: "last return wins",
			body: "@return first\n@return   second  ",
			ret:  "second",
		},
		{
			name: "returns alias",
			body: "@returns the sum",
			ret:  "the sum",
		},
		{
			name:        "blank lines do not widen the description",
			body:        "First.\n\n   \nSecond.",
			description: "First. Second.",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			description, params, ret := ParseTags(c.body)
			assert.Equal(t, c.description, description)
			assert.Equal(t, c.params, params)
			assert.Equal(t, c.ret, ret)
		})
	}
}

func TestSplitFieldsN(t *testing.T) {
	assert.Equal(t, []string{"@param", "a", "b c  d"}, splitFieldsN("@param a b c  d", 3))
	assert.Equal(t, []string{"@param", "a"}, splitFieldsN("  @param\ta  ", 3))
	assert.Nil(t, splitFieldsN("   ", 3))
}
