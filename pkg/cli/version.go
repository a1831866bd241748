package cli

// Version may be overridden at build-time with
// -ldflags "-X github.com/jlrickert/labeler/pkg/cli.Version=..."
var Version = "dev"
