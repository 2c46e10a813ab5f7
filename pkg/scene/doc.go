// Package scene defines the scene description produced by evaluating a
// polymesh script. A Scene is an immutable DAG of primitive shapes,
// transforms, groups and boolean combinations. Each evaluation builds a
// new Scene; nothing mutates one after evaluation returns.
package scene
