package types

// ChangeSet records the renames performed by one rename pass as a mapping
// from new file name to original file name. Keys are names that existed on
// disk when the pass finished; the map is the only state needed to reverse
// the pass.
type ChangeSet map[string]string
