package version

var (
	Current   = Version{0, 1, 0, ""}
	Copyright = "Copyright (C) the lsmachine contributors"
	Hash      = "0000000000000000000000000000000000000000"
)
