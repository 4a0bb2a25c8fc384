//go:build !linux && !darwin

package platform

// CopyFile falls back to read/write on other unix platforms.
func CopyFile(params CopyParams) (CopyResult, error) {
	return CopyReadWrite(params)
}
