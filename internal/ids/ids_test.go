package ids

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormats(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^BK[0-9A-F]{10}$`), NewReference())
	assert.Regexp(t, regexp.MustCompile(`^TK[0-9A-F]{12}$`), NewTicketNumber())
	assert.Regexp(t, regexp.MustCompile(`^TXN[0-9A-F]{16}$`), NewTransactionID())
}

func TestReferencesDiffer(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		ref := NewReference()
		assert.False(t, seen[ref], "duplicate reference %s", ref)
		seen[ref] = true
	}
}
