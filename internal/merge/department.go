package merge

// Department is the metadata of an organizational department (umoor).
type Department struct {
	ID              string `json:"id" yaml:"id" db:"id"`
	Name            string `json:"name" yaml:"name" db:"name"`
	LogoURL         string `json:"logo_url,omitempty" yaml:"logo_url,omitempty" db:"logo_url"`
	OrderPreference int    `json:"order_preference,omitempty" yaml:"order_preference,omitempty" db:"order_preference"`
}

// Lookup resolves department metadata by id. A missing entry is not an error.
type Lookup interface {
	Department(id string) (Department, bool)
}

// Departments is a Lookup backed by a map keyed by department id.
type Departments map[string]Department

// Department implements Lookup.
func (d Departments) Department(id string) (Department, bool) {
	dep, ok := d[id]
	return dep, ok
}

// NewDepartments indexes a list of departments by id. Later entries win.
func NewDepartments(list []Department) Departments {
	out := make(Departments, len(list))
	for _, dep := range list {
		out[dep.ID] = dep
	}
	return out
}

// noDepartments is used when the caller passes a nil Lookup.
type noDepartments struct{}

func (noDepartments) Department(string) (Department, bool) { return Department{}, false }
