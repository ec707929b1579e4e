// Package formats provides readers and writers for the mesh, rig and cache files.
package formats

// Note: OBJ meshes are implemented in obj.go
// Note: rig YAML is implemented in rig.go
// Note: the distance cache (.mtx) is implemented in mtx.go
// Note: the displacement stream is implemented in disp.go
