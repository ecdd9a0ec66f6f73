package bulkupload

import "errors"

var (
	ErrBatchNotFound     = errors.New("upload batch not found")
	ErrNotOwner          = errors.New("you do not own this upload batch")
	ErrAlreadyProcessing = errors.New("batch is already being processed")
	ErrEmptyFile         = errors.New("file contains no data rows")
	ErrMissingHeader     = errors.New("file has no header row")
	ErrRowLimit          = errors.New("row count exceeds the current plan limit")
)
