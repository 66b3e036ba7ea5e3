package trace

// Classifier is a log-declared event classifier.
type Classifier struct {
	Name string `yaml:"name"`
	Keys string `yaml:"keys"`
}

// Extension is a log-declared attribute extension.
type Extension struct {
	Name   string `yaml:"name"`
	Prefix string `yaml:"prefix"`
	URI    string `yaml:"uri"`
}

// OmniScopes holds the declared default attribute sets for the "trace"
// and "event" scopes.
type OmniScopes struct {
	Trace map[string]Value `yaml:"trace"`
	Event map[string]Value `yaml:"event"`
}

// Meta is the dataset metadata harvested from a log before any trace is
// produced. It is attached to the top-level pipeline stage and passed
// through every derived stage unchanged.
type Meta struct {
	Attributes  map[string]Value      `yaml:"attributes"`
	Classifiers map[string]Classifier `yaml:"classifiers"`
	Extensions  map[string]Extension  `yaml:"extensions"`
	Omni        OmniScopes            `yaml:"omni"`
}

// NewMeta returns metadata with all maps allocated.
func NewMeta() *Meta {
	return &Meta{
		Attributes:  make(map[string]Value),
		Classifiers: make(map[string]Classifier),
		Extensions:  make(map[string]Extension),
		Omni: OmniScopes{
			Trace: make(map[string]Value),
			Event: make(map[string]Value),
		},
	}
}
