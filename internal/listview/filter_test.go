package listview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsFold(t *testing.T) {
	tests := []struct {
		haystack string
		needle   string
		want     bool
	}{
		{"Banana", "AN", true},
		{"Banana", "", true},
		{"Grape", "an", false},
		{"Straße", "STRASSE", true},
		{"ÉCLAIR", "éclair", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ContainsFold(tt.haystack, tt.needle), "%q in %q", tt.needle, tt.haystack)
	}
}

func TestFieldsMatchChecksEveryField(t *testing.T) {
	type user struct{ name, email string }
	match := FieldsMatch(func(u user) []string { return []string{u.name, u.email} })

	u := user{name: "Ada Lovelace", email: "ada@shop.example"}
	assert.True(t, match(u, "lovelace"))
	assert.True(t, match(u, "SHOP.example"))
	assert.True(t, match(u, "  ada  "))
	assert.False(t, match(u, "babbage"))
}

func TestFuzzyMatch(t *testing.T) {
	match := FuzzyMatch(func(s string) []string { return []string{s} })

	assert.True(t, match("Whole Wheat Bread", "wwb"))
	assert.True(t, match("Whole Wheat Bread", "BREAD"))
	assert.False(t, match("Whole Wheat Bread", "rice"))
}

func TestDefaultPredicateFallsBackToFormattedValue(t *testing.T) {
	match := DefaultPredicate[int]()
	assert.True(t, match(1234, "23"))
	assert.False(t, match(1234, "5"))
}

func TestApplyExcludeKeepsOrder(t *testing.T) {
	records := []string{"pear", "apple", "peach", "plum"}
	got := Apply(records, "pe", ModeExclude, DefaultPredicate[string]())
	assert.Equal(t, []string{"pear", "peach"}, got)
}
