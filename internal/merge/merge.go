// Package merge combines a location's publication with the global sections
// of the event's host publication and orders the result by department.
package merge

import (
	"sort"

	"github.com/roboco-io/pubrender/internal/model"
)

// Entry is one section ready for rendering.
type Entry struct {
	Section            model.Section
	ShowDepartmentLogo bool
}

// Group is the set of sections that share a department.
type Group struct {
	DepartmentID    string
	Department      Department // zero value when the department is unknown
	Known           bool
	OrderPreference int
	Global          bool
	Members         []Entry
}

// Result is the ordered output of Merge.
type Result struct {
	Groups []Group
}

// Empty reports whether there is nothing to render.
func (r Result) Empty() bool {
	return len(r.Groups) == 0
}

// Entries flattens the groups into rendering order.
func (r Result) Entries() []Entry {
	var out []Entry
	for _, g := range r.Groups {
		out = append(out, g.Members...)
	}
	return out
}

// Candidates returns the sections that take part in a merge: the host's
// global sections first, then every section of the target. With no host
// only the target's sections are returned.
func Candidates(target model.Publication, host *model.Publication) []model.Section {
	var out []model.Section
	if host != nil {
		for _, s := range host.Sections {
			if s.IsGlobal {
				out = append(out, s)
			}
		}
	}
	return append(out, target.Sections...)
}

// Merge produces the ordered department groups to render for target.
// Groups with a positive order preference come first, ascending; within the
// same preference global groups precede non-global ones; remaining ties keep
// first-seen order. The inputs are not modified.
func Merge(target model.Publication, host *model.Publication, lookup Lookup) Result {
	if lookup == nil {
		lookup = noDepartments{}
	}

	var groups []*Group
	index := make(map[string]int)
	for _, s := range Candidates(target, host) {
		i, ok := index[s.DepartmentID]
		if !ok {
			dep, known := lookup.Department(s.DepartmentID)
			i = len(groups)
			index[s.DepartmentID] = i
			groups = append(groups, &Group{
				DepartmentID:    s.DepartmentID,
				Department:      dep,
				Known:           known,
				OrderPreference: dep.OrderPreference,
				Global:          s.IsGlobal,
			})
		}
		g := groups[i]
		g.Members = append(g.Members, Entry{
			Section:            withDepartment(s.Clone(), g),
			ShowDepartmentLogo: len(g.Members) == 0,
		})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return less(groups[i], groups[j])
	})

	out := Result{Groups: make([]Group, 0, len(groups))}
	for _, g := range groups {
		out.Groups = append(out.Groups, *g)
	}
	return out
}

// withDepartment fills a section's missing department name and logo from
// the department metadata.
func withDepartment(s model.Section, g *Group) model.Section {
	if !g.Known {
		return s
	}
	if s.DepartmentName == "" {
		s.DepartmentName = g.Department.Name
	}
	if s.DepartmentLogo.IsZero() {
		s.DepartmentLogo = model.ParseLogo(g.Department.LogoURL)
	}
	return s
}

// less orders positive preferences first (ascending), then global groups.
// Zero and negative preferences share the trailing bucket.
func less(a, b *Group) bool {
	ap, bp := a.OrderPreference > 0, b.OrderPreference > 0
	if ap != bp {
		return ap
	}
	if ap && a.OrderPreference != b.OrderPreference {
		return a.OrderPreference < b.OrderPreference
	}
	if a.Global != b.Global {
		return a.Global
	}
	return false
}
