package dynload

const (
	testLib = "msvcrt.dll"
	testExt = ".dll"
)
