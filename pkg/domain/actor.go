package domain

// Actor is a principal who invokes actions.
type Actor struct {
	// Name of the user.
	Name string

	// Sysadmin users are allowed to write Vocabularies and Terms.
	Sysadmin bool
}

// Anonymous is the Actor for requests without credentials.
var Anonymous = Actor{}

func (a Actor) IsAnonymous() bool {
	return a.Name == ""
}
