package libship

var (
	name    = "libship"
	version = "1.0.0"
	commit  = "dev"
	date    = "unknown"
)
