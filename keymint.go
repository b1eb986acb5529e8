package keymint

var (
	VERSION = "dev"
	COMMIT  = "unknown"
)
