// internal/app/system/limits/limits.go
package limits

// Request body size limits. Handlers wrap r.Body with http.MaxBytesReader
// using these values; the image and video limits can be raised in config.
const (
	// MaxJSONBody is the limit for ordinary JSON request bodies
	// (course fields, lessons, questions, progress marks).
	MaxJSONBody = 1 << 20 // 1 MB

	// DefaultMaxImageBytes bounds a base64 image upload body. Base64 inflates
	// the payload by about a third, so the decoded image is smaller.
	DefaultMaxImageBytes = 10 << 20 // 10 MB

	// DefaultMaxVideoBytes bounds a multipart video upload.
	DefaultMaxVideoBytes = 500 << 20 // 500 MB

	// MultipartMemory is how much of a multipart form is held in memory
	// before parts spill to temporary files.
	MultipartMemory = 32 << 20 // 32 MB
)
