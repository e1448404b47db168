package mockhttp

var (
	SortRules  = sortRules
	EnvVarName = envVarName
)

// Tracker

func (t *Tracker) Attach(r *Rule) error {
	return t.attach(r, 0)
}

// Rule

func (r *Rule) Seq() uint64 {
	return r.seq
}
