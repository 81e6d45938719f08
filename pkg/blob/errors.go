package blob

import "errors"

var (
	ErrInvalidConfig      = errors.New("blob: invalid configuration")
	ErrFailedToLoadConfig = errors.New("blob: failed to load AWS config")
	ErrInvalidKey         = errors.New("blob: invalid object key")
	ErrObjectNotFound     = errors.New("blob: object not found")
	ErrNotAnImage         = errors.New("blob: content is not a supported image")
	ErrObjectTooLarge     = errors.New("blob: object exceeds maximum allowed size")
	ErrUploadFailed       = errors.New("blob: upload failed")
	ErrDeleteFailed       = errors.New("blob: delete failed")
	ErrPresignFailed      = errors.New("blob: failed to presign URL")
)
