package typeparser

// EnumMember is one label of an enum together with its resolved value.
type EnumMember struct {
	Label string `json:"label" yaml:"label"`
	Value int    `json:"value" yaml:"value"`
}

// LabelOf returns the label whose value is v.
func LabelOf(members []EnumMember, v int64) (string, bool) {
	for _, m := range members {
		if int64(m.Value) == v {
			return m.Label, true
		}
	}
	return "", false
}
