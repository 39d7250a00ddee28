package dataset

import "errors"

// Domain-specific errors for the dataset package.
var (
	ErrUnsupportedFormat = errors.New("unsupported file format, please upload a CSV or Excel file")
	ErrSizeLimitExceeded = errors.New("file size exceeds the upload limit")
	ErrEmptyData         = errors.New("the uploaded file has no parsable data")
)
