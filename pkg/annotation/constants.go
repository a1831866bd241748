package annotation

const (
	// DefaultAnnotationFile is the canonical annotation file kept in every
	// image folder.
	DefaultAnnotationFile = "annotations.json"

	// DefaultIndent is the number of spaces used when pretty printing the
	// annotation file.
	DefaultIndent = 4

	// FieldImage is the canonical record key for the image filename.
	FieldImage = "image"
	// FieldFilename is the legacy record key for the image filename. It is
	// accepted on read and never written.
	FieldFilename = "filename"
	// FieldAnnotations is the record key holding the label list.
	FieldAnnotations = "annotations"
)

// ImageExtensions is the allow-list of image file extensions recognized by a
// folder scan. Matching is case-insensitive.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp"}
