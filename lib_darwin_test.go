package dynload

const (
	testLib = "/usr/lib/libSystem.B.dylib"
	testExt = ".dylib"
)
