package versioning

// Set at build time through -ldflags "-X".
var (
	Commit    string
	Branch    string
	BuildTime string
	Version   = "dev"
)
