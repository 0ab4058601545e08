package types

// ExtractResult is the outcome of one item-data-extractor invocation:
// nothing, a single record, or several records. The tagged form avoids
// "object or array" runtime inspection at the call site.
type ExtractResult struct {
	records []*Record
}

// Empty returns a result carrying no records.
func Empty() ExtractResult {
	return ExtractResult{}
}

// One returns a result carrying a single record. A nil record is
// equivalent to Empty.
func One(r *Record) ExtractResult {
	if r == nil {
		return ExtractResult{}
	}
	return ExtractResult{records: []*Record{r}}
}

// Many returns a result carrying several records. Nil entries are dropped.
func Many(rs ...*Record) ExtractResult {
	out := make([]*Record, 0, len(rs))
	for _, r := range rs {
		if r != nil {
			out = append(out, r)
		}
	}
	return ExtractResult{records: out}
}

// Records returns the carried records. May be empty.
func (e ExtractResult) Records() []*Record {
	return e.records
}

// IsEmpty returns true if the result carries no records.
func (e ExtractResult) IsEmpty() bool {
	return len(e.records) == 0
}
