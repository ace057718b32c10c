package notify

// Section is one headed block of a report.
type Section struct {
	Heading string
	Lines   []string
}

type Report struct {
	Title    string
	Sections []Section
}

// Add appends a section. Sections with no heading and no lines are dropped.
func (r *Report) Add(heading string, lines ...string) {
	if heading == "" && len(lines) == 0 {
		return
	}
	r.Sections = append(r.Sections, Section{Heading: heading, Lines: lines})
}

func (r Report) IsEmpty() bool {
	return len(r.Sections) == 0
}
