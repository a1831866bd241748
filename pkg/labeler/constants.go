package labeler

const (
	DefaultAppName = "labeler"

	// LocalConfigFile is the folder-local override read next to the images.
	LocalConfigFile = ".labeler.yaml"
)
