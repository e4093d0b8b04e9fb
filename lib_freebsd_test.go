package dynload

const (
	testLib = "libc.so.7"
	testExt = ".so"
)
