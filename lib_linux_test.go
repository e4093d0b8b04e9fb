package dynload

const (
	testLib = "libc.so.6"
	testExt = ".so"
)
