//go:build darwin

package platform

// CopyFile uses read/write on macOS. clonefile(2) cannot target an
// already-open staging file, so there is nothing faster to try.
func CopyFile(params CopyParams) (CopyResult, error) {
	preallocate(params.Dst, params.Size)
	return CopyReadWrite(params)
}
