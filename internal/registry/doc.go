// Package registry persists which agent versions are installed and which one
// is selected.
//
// The registry is three flat files: the version list under
// ROOT/versions/versions, the global default in ROOT/config.json, and a
// .localrc marker in the working directory. Every mutation reads the whole
// file, edits it in memory and replaces it with a temp-file-then-rename, so a
// crash leaves either the old or the new content on disk.
//
// The default and local pins may name a version that is not installed. The
// CLI warns when it writes such a pin and when it resolves one, and uninstall
// clears only the global default, so references can dangle until the version
// is installed again.
//
// There is no locking across processes. Within one process
// install.Lifecycle serializes its own store and config writes; two bap
// processes mutating the same file concurrently can interleave, and the last
// rename wins. bap is a single-user CLI and accepts that.
package registry
