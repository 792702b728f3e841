package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAccepts(t *testing.T) {
	valid := []string{
		`{}`,
		`{"version":1}`,
		`{"version":2,"name":"demo","description":"a bundle"}`,
		`{"version":1,"files":["a.txt","b.txt"]}`,
		`{"custom":"anything","nested":{"ok":true}}`,
	}
	for _, in := range valid {
		assert.NoError(t, Validate([]byte(in)), in)
	}
}

func TestValidateRejects(t *testing.T) {
	invalid := []string{
		`not json`,
		`{"version":`,
		`{"version":0}`,          // below minimum
		`{"version":"1"}`,        // wrong type
		`{"name":123}`,           // wrong type
		`{"files":"not a list"}`, // wrong type
		`[1,2,3]`,                // not an object
		`"just a string"`,
	}
	for _, in := range invalid {
		assert.Error(t, Validate([]byte(in)), in)
	}
}
