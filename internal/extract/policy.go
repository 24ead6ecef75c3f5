package extract

// Policy holds the literal tokens the FCCdb uses to encode decisions and
// missing data. One Policy is shared by every extractor of a run.
type Policy struct {
	Yes       string
	No        string
	NotListed string
	Valid     string
}

// DefaultPolicy returns the tokens used by the published FCCdb workbook.
func DefaultPolicy() Policy {
	return Policy{
		Yes:       "yes",
		No:        "no",
		NotListed: "not listed",
		Valid:     "valid",
	}
}
