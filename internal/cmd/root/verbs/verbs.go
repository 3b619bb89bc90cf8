package verbs

const (
	List        = VerbValue("list")
	View        = VerbValue("view")
	Approve     = VerbValue("approve")
	Reject      = VerbValue("reject")
	Delete      = VerbValue("delete")
	Export      = VerbValue("export")
	Collections = VerbValue("collections")
	Themes      = VerbValue("themes")
)

// Empty type to represent the _type_ Verb. Genesis is to support a key in a Context
type VerbKey struct{}

// Verb is a global instance of the VerbKey type
var Verb = VerbKey{}

// Will represent a specific Verb (list, view, approve, delete, etc)
type VerbValue string

func (v VerbValue) String() string {
	return string(v)
}
