package projections

import "context"

// GetRecordsResult carries the raw records keyed by date, then student.
type GetRecordsResult struct {
	Records map[string]map[string]string
}

// GetRecordsDeps holds dependencies for GetRecords.
type GetRecordsDeps struct {
	Store RecordsStore
}

// QueryGetRecords returns the full attendance map exactly as stored.
// PRE: none
// POST: Records is never nil
func QueryGetRecords(ctx context.Context, deps GetRecordsDeps) (GetRecordsResult, error) {
	records, err := deps.Store.ListRecords(ctx)
	if err != nil {
		return GetRecordsResult{}, err
	}
	if records == nil {
		records = map[string]map[string]string{}
	}
	return GetRecordsResult{Records: records}, nil
}
